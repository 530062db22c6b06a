package git

import "time"

// CommitInfo describes the commit rule files were synced from.
type CommitInfo struct {
	SHA        string    `json:"sha"`
	Author     string    `json:"author"`
	Email      string    `json:"email"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
	Branch     string    `json:"branch"`
	Repository string    `json:"repository"`
}

// PullResult is the outcome of one pull.
type PullResult struct {
	FromSHA string
	ToSHA   string

	// ChangedFiles are repository-relative paths added, modified or
	// deleted between FromSHA and ToSHA.
	ChangedFiles []string
}

// HadChanges reports whether the pull moved HEAD.
func (r *PullResult) HadChanges() bool {
	return r.FromSHA != r.ToSHA
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

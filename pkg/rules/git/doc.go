// Package git syncs rule files from a git repository.
//
// A Repository clones the configured branch into a local directory and pulls
// new commits. The rule directory inside the clone is then resolved like any
// local rule path:
//
//	repo, err := git.NewRepository(cfg.Rules.Git, logger)
//	if err != nil {
//		return err
//	}
//	if _, err := repo.Sync(ctx); err != nil {
//		return err
//	}
//	files, err := rules.Discover([]string{repo.RulesPath()}, cfg.Rules.Extensions)
//
// In watch mode a Poller pulls on an interval and reports the rule files
// touched by new commits, including deleted ones.
//
// Authentication supports HTTPS tokens, SSH keys and anonymous access.
package git

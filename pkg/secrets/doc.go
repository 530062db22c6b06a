// Package secrets resolves ${secret:name} references in credential settings.
//
// A Resolver asks its providers in order. EnvProvider maps a name such as
// "rules-token" to SATURN_SECRET_RULES_TOKEN; FileProvider reads a file of
// that name from a directory, the way Kubernetes mounts secrets. Secret
// files must not be readable by group or others.
//
//	r, err := secrets.FromConfig(cfg.Secrets)
//	if err != nil {
//		return err
//	}
//	token, err := r.Resolve(ctx, cfg.Rules.Git.Auth.Token)
//
// Values are never logged. Names are redacted in debug logs.
package secrets

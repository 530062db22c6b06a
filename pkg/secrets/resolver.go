package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"mercator-hq/saturn/pkg/config"
)

var refPattern = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

// Resolver looks secrets up across providers in order and remembers values
// it has found.
type Resolver struct {
	providers []Provider

	mu    sync.Mutex
	cache map[string]string
}

// NewResolver creates a resolver over providers.
func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{
		providers: providers,
		cache:     make(map[string]string),
	}
}

// FromConfig creates a resolver with the environment provider and, when
// cfg.Dir is set, the file provider.
func FromConfig(cfg config.SecretsConfig) (*Resolver, error) {
	providers := []Provider{NewEnvProvider(cfg.EnvPrefix)}
	if cfg.Dir != "" {
		fp, err := NewFileProvider(cfg.Dir)
		if err != nil {
			return nil, err
		}
		providers = append(providers, fp)
	}
	return NewResolver(providers...), nil
}

// Get returns the first value any provider has for name. Errors other than
// ErrNotFound stop the search.
func (r *Resolver) Get(ctx context.Context, name string) (string, error) {
	r.mu.Lock()
	value, ok := r.cache[name]
	r.mu.Unlock()
	if ok {
		return value, nil
	}

	for _, p := range r.providers {
		value, err := p.Get(ctx, name)
		if errors.Is(err, ErrNotFound) {
			slog.Debug("secret not in provider", "provider", p.Name(), "name", redact(name))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("provider %s: %w", p.Name(), err)
		}

		r.mu.Lock()
		r.cache[name] = value
		r.mu.Unlock()
		return value, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Resolve replaces every ${secret:name} in s. Strings without references
// are returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, s string) (string, error) {
	var errs []error
	out := refPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := refPattern.FindStringSubmatch(ref)[1]
		value, err := r.Get(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return ref
		}
		return value
	})
	if len(errs) > 0 {
		return "", fmt.Errorf("failed to resolve secret references: %w", errors.Join(errs...))
	}
	return out, nil
}

// ResolveGitAuth resolves references in the credential fields of auth.
func (r *Resolver) ResolveGitAuth(ctx context.Context, auth *config.GitAuthConfig) error {
	for _, field := range []*string{&auth.Token, &auth.SSHKeyPath, &auth.SSHKeyPassphrase} {
		value, err := r.Resolve(ctx, *field)
		if err != nil {
			return err
		}
		*field = value
	}
	return nil
}

// redact keeps the first and last two characters of name.
func redact(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}

package config

import "time"

// Config is the root configuration structure for Saturn.
// It contains the inputs of a resolution run (model, operator catalogues,
// rule files), resolver behaviour, run history, and telemetry settings.
type Config struct {
	// Model locates the business model that rules are resolved against.
	Model ModelConfig `yaml:"model"`

	// Operators lists the operator catalogues available to rules.
	Operators OperatorsConfig `yaml:"operators"`

	// Rules contains rule file discovery, parsing limits, and watch mode.
	Rules RulesConfig `yaml:"rules"`

	// Resolver contains settings for the semantic resolver.
	Resolver ResolverConfig `yaml:"resolver"`

	// History contains configuration for resolution run history including
	// backend selection and retention.
	History HistoryConfig `yaml:"history"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Secrets configures where ${secret:name} references in credentials
	// are looked up.
	Secrets SecretsConfig `yaml:"secrets"`
}

// SecretsConfig configures secret lookup. Environment variables are tried
// before files.
type SecretsConfig struct {
	// EnvPrefix is prepended to the upper-cased secret name, with hyphens
	// turned into underscores, to form the environment variable.
	// Default: "SATURN_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir holds one file per secret, named after the secret. Files must
	// be mode 0600 or 0400. Empty disables file secrets.
	Dir string `yaml:"dir"`
}

// ModelConfig locates the business model.
type ModelConfig struct {
	// Path is the YAML model document.
	// Default: "./model.yaml"
	Path string `yaml:"path"`
}

// OperatorsConfig lists operator catalogues.
type OperatorsConfig struct {
	// Catalogues are YAML catalogue files in priority order. When two
	// catalogues define the same operator the earlier one wins.
	Catalogues []string `yaml:"catalogues"`
}

// RulesConfig contains rule file settings.
type RulesConfig struct {
	// Paths are rule files or directories. Directories are scanned for files
	// with one of Extensions.
	// Default: ["./rules"]
	Paths []string `yaml:"paths"`

	// Extensions are the file extensions treated as rule files.
	// Default: [".yaml", ".yml"]
	Extensions []string `yaml:"extensions"`

	// Watch enables re-resolution when rule files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is how long the watcher waits for further changes before
	// re-resolving.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`

	// MaxFileSize is the largest rule file accepted, in bytes.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxDepth bounds expression and action nesting.
	// Default: 64
	MaxDepth int `yaml:"max_depth"`

	// Git syncs rule files from a remote repository.
	Git GitConfig `yaml:"git"`
}

// GitConfig configures a git repository as the source of rule files. When
// enabled, the repository's rule directory replaces rules.paths.
type GitConfig struct {
	// Enabled turns on git sync.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository is the clone URL (https, ssh or a local path).
	Repository string `yaml:"repository"`

	// Branch is the branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// Path is the rule directory inside the repository.
	// Default: "" (repository root)
	Path string `yaml:"path"`

	// LocalPath is where the repository is cloned.
	// Default: "data/rules-repo"
	LocalPath string `yaml:"local_path"`

	// Depth limits clone history. Zero clones everything.
	Depth int `yaml:"depth"`

	// CleanOnStart removes an existing clone before cloning again.
	CleanOnStart bool `yaml:"clean_on_start"`

	// PollInterval is how often watch mode pulls.
	// Default: 30s
	PollInterval time.Duration `yaml:"poll_interval"`

	// Timeout bounds each clone or pull.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// Auth contains repository credentials.
	Auth GitAuthConfig `yaml:"auth"`
}

// GitAuthConfig contains git credentials.
type GitAuthConfig struct {
	// Type selects the method.
	// Options: "none", "token", "ssh"
	// Default: "none"
	Type string `yaml:"type"`

	// Token is an HTTPS access token, used with type "token". May be a
	// ${secret:name} reference.
	Token string `yaml:"token"`

	// SSHKeyPath is a private key file, used with type "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase decrypts SSHKeyPath when it is encrypted.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// ResolverConfig contains resolver settings.
type ResolverConfig struct {
	// FailOnError makes commands exit non-zero when any diagnostic is
	// reported.
	// Default: false
	FailOnError bool `yaml:"fail_on_error"`

	// DisableCleanup turns off the back-reference cleanup pass.
	// Default: false
	DisableCleanup bool `yaml:"disable_cleanup"`
}

// HistoryConfig contains configuration for resolution run history.
type HistoryConfig struct {
	// Enabled controls whether runs are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend specifies the storage backend.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains pruning configuration.
	Retention RetentionConfig `yaml:"retention"`

	// ListLimit is the number of runs returned when no limit is given.
	// Default: 20
	ListLimit int `yaml:"list_limit"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the database file.
	// Default: "data/history.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (modernc.org/sqlite, pure Go), "sqlite3" (mattn/go-sqlite3, cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`

	// BusyTimeout is how long a writer waits on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains history pruning configuration.
type RetentionConfig struct {
	// Days is how long runs are kept. Zero keeps runs forever.
	// Default: 30
	Days int `yaml:"days"`

	// PruneSchedule is a standard five-field cron expression.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource adds file:line to log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Address is the listen address of the metrics endpoint in watch mode.
	// Default: "127.0.0.1:9464"
	Address string `yaml:"address"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "saturn"
	Namespace string `yaml:"namespace"`

	// DurationBuckets are histogram buckets for resolution duration in seconds.
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "saturn"
	ServiceName string `yaml:"service_name"`

	// Sampler selects the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is used by the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// Package config provides configuration management for Saturn.
//
// Configuration is read from YAML, completed with defaults, overridden from
// the environment, and validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("saturn.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SATURN_SECTION_FIELD:
//
//   - SATURN_MODEL_PATH overrides model.path
//   - SATURN_OPERATORS_CATALOGUES overrides operators.catalogues (comma separated)
//   - SATURN_HISTORY_SQLITE_DRIVER overrides history.sqlite.driver
//   - SATURN_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	model:
//	  path: ./model.yaml
//	operators:
//	  catalogues: [./operators/builtins.yaml]
//	rules:
//	  paths: [./rules]
//	  watch: true
//	history:
//	  enabled: true
//	  backend: sqlite
//	  sqlite:
//	    path: data/history.db
//	    driver: sqlite
//	  retention:
//	    days: 30
//	    prune_schedule: "0 3 * * *"
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	  metrics:
//	    enabled: true
//
// Validation collects every problem into a ValidationError.
package config

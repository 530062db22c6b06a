// Package logging builds the slog loggers used across Saturn.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRunID(ctx, runID)
//	ctx = logging.WithRuleFile(ctx, "rules/trade.yaml")
//	logger.InfoContext(ctx, "resolution finished", "errors", 0)
//	// {"level":"INFO","msg":"resolution finished","errors":0,"run_id":"...","rule_file":"rules/trade.yaml"}
//
// Loggers from New read the run ID, rule file and declaration from the
// context of every *Context call. FromContext attaches the same fields to
// any other logger.
package logging

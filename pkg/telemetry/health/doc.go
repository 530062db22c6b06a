// Package health serves liveness and readiness probes for watch mode.
//
// Components register a CheckFunc on a Checker; Mount exposes:
//
//	/health   liveness, always 200 while the process runs
//	/ready    readiness, 503 when any check fails
//	/version  build information
package health

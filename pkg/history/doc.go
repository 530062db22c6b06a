// Package history records resolution runs.
//
// The engine stores a Run for every rule file it resolves: a UUID, timing,
// declaration counts and a copy of each diagnostic. Runs are kept in a
// Storage backend (see package storage) and pruned on a cron schedule by
// package retention.
package history

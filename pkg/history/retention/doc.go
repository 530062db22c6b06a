// Package retention prunes old runs from history storage.
//
// A Pruner deletes runs that started more than the configured number of
// days ago; a Scheduler runs it on a cron schedule while watch mode is
// active. Setting the retention days to zero keeps runs forever.
package retention

// Package watcher re-triggers resolution when rule files change.
//
// A FileWatcher registers every configured rule file and directory with
// fsnotify, including subdirectories created later. Events are filtered by
// extension and batched by a Debouncer, so an editor writing a file several
// times, or a checkout touching many files, produces one callback listing
// every changed file.
package watcher

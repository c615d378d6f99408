// Package daemon keeps a landscape website up to date: Watcher rebuilds when
// local inputs change and Scheduler rebuilds on a cron schedule. Both run
// builds through a Runner, which never lets two builds overlap.
package daemon

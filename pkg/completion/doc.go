/*
Package completion delivers the answers of completed sessions to a
ports.CompletionSink.

The Notifier is fire-and-forget: the sink runs on its own goroutine with a
bounded timeout, failures are logged and never returned to the caller, and each
session is delivered at most once.
*/
package completion

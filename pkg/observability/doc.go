/*
Package observability provides monitoring for the stepper.

It binds Prometheus metrics and structured logging to the engine's lifecycle
hooks and to completion delivery results.
*/
package observability

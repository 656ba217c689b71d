// Package cli wires the hosting stack behind the stepper commands: logger,
// engine, session manager, completion sink and metrics, built from config.
package cli

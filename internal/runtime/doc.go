// Package runtime implements the stepper state machine: a pure transition
// function over domain.FormState plus an Engine that adds logging and
// lifecycle hooks around it.
package runtime

/*
Package domain contains the core models of the stepper engine.

It defines the question catalog entries, the answers collected for them, the
validation verdict of the current step and the immutable form state snapshot
that the state machine produces. The package is kept pure and free of I/O so
that every driver (terminal, HTTP, MCP) can share it.

# Key Entities

  - Question: a closed sum type (YesNo, Text, Phone, Textarea) sharing Base fields.
  - ValidationResult: valid, invalid-untouched or invalid with a reason.
  - FormState: current step, answers, completion flag, validation and transition marker.
  - Action: the five inputs accepted by the state machine.
  - Submission: the final answers handed to a completion sink.
*/
package domain

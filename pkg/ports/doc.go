/*
Package ports defines the driven ports (interfaces) of the stepper.

These interfaces decouple session hosting and completion handling from
concrete backends.

# Key Interfaces

  - SessionStore: holds the live FormState of each hosted session.
  - CompletionSink: receives the answers of a completed session, once.
  - SubmissionReader: looks up stored submissions; used by contract tests
    and by operators inspecting a sink.
*/
package ports

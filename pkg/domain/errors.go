package domain

import "errors"

// ErrOutOfRange is returned when a step index falls outside the catalog.
var ErrOutOfRange = errors.New("step index out of range")

// ErrUnknownAction is returned for an action outside the closed set.
var ErrUnknownAction = errors.New("unknown action")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSubmissionNotFound is returned when a sink has no submission with the given ID.
var ErrSubmissionNotFound = errors.New("submission not found")

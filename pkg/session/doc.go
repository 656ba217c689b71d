/*
Package session hosts survey sessions.

A Manager owns the live FormState of every session through a
ports.SessionStore, serializes actions on the same session with ref-counted
locks, and hands completed forms to a completion.Notifier exactly once.
*/
package session

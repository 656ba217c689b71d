// Package middleware wraps completion sinks.
//
// NewPIIMiddleware masks answers such as phone numbers before they reach a
// sink. NewEncryptionMiddleware seals the answers so a durable sink only ever
// stores ciphertext. Both keep Get working when the wrapped sink supports it.
package middleware

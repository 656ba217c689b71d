/*
Package validation holds the per-question-type answer rules.

Every function is pure: it maps a raw answer and the rule parameters to a
domain.ValidationResult and never fails. An invalid answer is data, not an
error.
*/
package validation

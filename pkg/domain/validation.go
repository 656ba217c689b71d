package domain

import "encoding/json"

// ValidationResult is the verdict for the current step.
//
// It is a three-way signal: Valid, invalid with an empty Message (the step
// has not been attempted yet) and invalid with a Message (attempted and
// rejected). Drivers must not show an error for the untouched case.
type ValidationResult struct {
	Valid   bool
	Message string
}

// Valid is the verdict for an accepted answer.
func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid is the verdict for a rejected answer.
func Invalid(msg string) ValidationResult {
	return ValidationResult{Valid: false, Message: msg}
}

// Untouched is the verdict for a step without an answer yet.
func Untouched() ValidationResult {
	return ValidationResult{}
}

// IsUntouched reports the invalid-without-reason state.
func (v ValidationResult) IsUntouched() bool {
	return !v.Valid && v.Message == ""
}

type validationJSON struct {
	IsValid      bool    `json:"isValid"`
	ErrorMessage *string `json:"errorMessage"`
}

// MarshalJSON encodes an absent message as null.
func (v ValidationResult) MarshalJSON() ([]byte, error) {
	out := validationJSON{IsValid: v.Valid}
	if v.Message != "" {
		msg := v.Message
		out.ErrorMessage = &msg
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the encoding produced by MarshalJSON.
func (v *ValidationResult) UnmarshalJSON(data []byte) error {
	var in validationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	v.Valid = in.IsValid
	v.Message = ""
	if in.ErrorMessage != nil {
		v.Message = *in.ErrorMessage
	}
	return nil
}

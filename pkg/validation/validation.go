package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/steltz/stepper/pkg/domain"
)

// Messages returned by the rules.
const (
	MsgSelectionRequired = "Please select an option"
	MsgSelectYesOrNo     = "Please select Yes or No"
	MsgFieldRequired     = "This field is required"
	MsgPhoneRequired     = "Phone number is required"
	MsgPhoneFormat       = "Please enter a valid phone number"
	MsgPhoneDigits       = "Phone number must have at least 10 digits"
)

// MinPhoneDigits is the minimum number of digits of a phone answer.
const MinPhoneDigits = 10

// phonePattern accepts an optional leading '+', optional parenthesized groups
// and space, hyphen or dot separators: (555) 123-4567, 555-123-4567,
// 5551234567, +1 555 123 4567.
var phonePattern = regexp.MustCompile(`^[+]?[(]?[0-9]{1,3}[)]?[-\s.]?[(]?[0-9]{1,4}[)]?[-\s.]?[0-9]{1,4}[-\s.]?[0-9]{1,9}$`)

// Bounds are optional length limits. Zero means unset.
type Bounds struct {
	Min int
	Max int
}

// ValidateYesNo accepts exactly "Yes" or "No" (case-sensitive).
func ValidateYesNo(value string) domain.ValidationResult {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return domain.Invalid(MsgSelectionRequired)
	}
	if trimmed != domain.YesNoOptions[0] && trimmed != domain.YesNoOptions[1] {
		return domain.Invalid(MsgSelectYesOrNo)
	}
	return domain.Valid()
}

// ValidateText checks a non-blank answer against optional length bounds.
// Only the trimmed length counts, measured in characters.
func ValidateText(value string, b Bounds) domain.ValidationResult {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return domain.Invalid(MsgFieldRequired)
	}
	n := utf8.RuneCountInString(trimmed)
	if b.Min > 0 && n < b.Min {
		return domain.Invalid(fmt.Sprintf("Must be at least %d characters", b.Min))
	}
	if b.Max > 0 && n > b.Max {
		return domain.Invalid(fmt.Sprintf("Must be no more than %d characters", b.Max))
	}
	return domain.Valid()
}

// ValidateTextarea applies the text rule; bounds are only enforced when set.
func ValidateTextarea(value string, b Bounds) domain.ValidationResult {
	return ValidateText(value, b)
}

// ValidatePhone checks the phone shape and then the digit count.
func ValidatePhone(value string) domain.ValidationResult {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return domain.Invalid(MsgPhoneRequired)
	}
	if !phonePattern.MatchString(trimmed) {
		return domain.Invalid(MsgPhoneFormat)
	}
	if countDigits(trimmed) < MinPhoneDigits {
		return domain.Invalid(MsgPhoneDigits)
	}
	return domain.Valid()
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// ValidateAnswer dispatches on the question variant.
func ValidateAnswer(value string, q domain.Question) domain.ValidationResult {
	switch q := q.(type) {
	case domain.YesNoQuestion:
		return ValidateYesNo(value)
	case domain.TextQuestion:
		return ValidateText(value, Bounds{Min: q.MinLength, Max: q.MaxLength})
	case domain.PhoneQuestion:
		return ValidatePhone(value)
	case domain.TextareaQuestion:
		return ValidateTextarea(value, Bounds{Min: q.MinLength, Max: q.MaxLength})
	default:
		domain.MustBeExhaustive(q)
		return domain.ValidationResult{}
	}
}

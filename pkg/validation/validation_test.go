package validation_test

import (
	"strings"
	"testing"

	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/validation"
	"github.com/stretchr/testify/assert"
)

func TestValidateYesNo(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		valid   bool
		message string
	}{
		{name: "Yes", input: "Yes", valid: true},
		{name: "No", input: "No", valid: true},
		{name: "Surrounding whitespace", input: "  No \n", valid: true},
		{name: "Wrong case", input: "yes", message: validation.MsgSelectYesOrNo},
		{name: "Other text", input: "Maybe", message: validation.MsgSelectYesOrNo},
		{name: "Empty", input: "", message: validation.MsgSelectionRequired},
		{name: "Blank", input: "   ", message: validation.MsgSelectionRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validation.ValidateYesNo(tt.input)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		bounds  validation.Bounds
		valid   bool
		message string
	}{
		{name: "No bounds", input: "x", valid: true},
		{name: "Below minimum", input: "hi", bounds: validation.Bounds{Min: 3}, message: "Must be at least 3 characters"},
		{name: "Within bounds", input: "hello", bounds: validation.Bounds{Min: 3, Max: 10}, valid: true},
		{name: "Above maximum", input: "hello world", bounds: validation.Bounds{Max: 5}, message: "Must be no more than 5 characters"},
		{name: "Whitespace does not count", input: "  hi  ", bounds: validation.Bounds{Min: 3}, message: "Must be at least 3 characters"},
		{name: "Trimmed fits maximum", input: "   abc   ", bounds: validation.Bounds{Max: 3}, valid: true},
		{name: "Multibyte counted as characters", input: "ñandú", bounds: validation.Bounds{Max: 5}, valid: true},
		{name: "Empty", input: "", message: validation.MsgFieldRequired},
		{name: "Blank", input: "\t ", bounds: validation.Bounds{Min: 1}, message: validation.MsgFieldRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validation.ValidateText(tt.input, tt.bounds)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestValidatePhone(t *testing.T) {
	accepted := []string{
		"(555) 123-4567",
		"555-123-4567",
		"5551234567",
		"+1 555 123 4567",
		"555.123.4567",
		" 555-123-4567 ",
	}
	for _, in := range accepted {
		t.Run("accepts "+in, func(t *testing.T) {
			assert.Equal(t, domain.Valid(), validation.ValidatePhone(in))
		})
	}

	rejected := []struct {
		input   string
		message string
	}{
		{input: "", message: validation.MsgPhoneRequired},
		{input: "123", message: validation.MsgPhoneFormat},
		{input: "abcdefghij", message: validation.MsgPhoneFormat},
		{input: "555-123", message: validation.MsgPhoneDigits},
		{input: "555_123_4567", message: validation.MsgPhoneFormat},
	}
	for _, tt := range rejected {
		t.Run("rejects "+tt.input, func(t *testing.T) {
			res := validation.ValidatePhone(tt.input)
			assert.False(t, res.Valid)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestValidateTextarea(t *testing.T) {
	assert.True(t, validation.ValidateTextarea(strings.Repeat("a", 500), validation.Bounds{}).Valid)
	assert.Equal(t, validation.MsgFieldRequired, validation.ValidateTextarea(" \n ", validation.Bounds{}).Message)
	assert.False(t, validation.ValidateTextarea("ab", validation.Bounds{Min: 3}).Valid)
}

func sampleQuestions() map[domain.QuestionKind]domain.Question {
	return map[domain.QuestionKind]domain.Question{
		domain.KindYesNo:    domain.YesNoQuestion{Base: domain.Base{ID: "yn", Position: 1, Required: true}},
		domain.KindText:     domain.TextQuestion{Base: domain.Base{ID: "t", Position: 2, Required: true}, MinLength: 3, MaxLength: 10},
		domain.KindPhone:    domain.PhoneQuestion{Base: domain.Base{ID: "p", Position: 3, Required: true}},
		domain.KindTextarea: domain.TextareaQuestion{Base: domain.Base{ID: "ta", Position: 4, Required: true}},
	}
}

func TestValidateAnswer_EmptyIsAlwaysInvalid(t *testing.T) {
	samples := sampleQuestions()
	for _, kind := range domain.Kinds() {
		q, ok := samples[kind]
		if !assert.True(t, ok, "no sample question for kind %s", kind) {
			continue
		}
		t.Run(string(kind), func(t *testing.T) {
			res := validation.ValidateAnswer("", q)
			assert.False(t, res.Valid)
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestValidateAnswer_Dispatch(t *testing.T) {
	samples := sampleQuestions()

	assert.True(t, validation.ValidateAnswer("Yes", samples[domain.KindYesNo]).Valid)
	assert.Equal(t, "Must be at least 3 characters", validation.ValidateAnswer("hi", samples[domain.KindText]).Message)
	assert.True(t, validation.ValidateAnswer("hello", samples[domain.KindText]).Valid)
	assert.True(t, validation.ValidateAnswer("555-123-4567", samples[domain.KindPhone]).Valid)
	assert.True(t, validation.ValidateAnswer("Oak, cherry, a long finish", samples[domain.KindTextarea]).Valid)
}

func TestValidateAnswer_Idempotent(t *testing.T) {
	q := sampleQuestions()[domain.KindPhone]
	first := validation.ValidateAnswer("555-123", q)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, validation.ValidateAnswer("555-123", q))
	}
}

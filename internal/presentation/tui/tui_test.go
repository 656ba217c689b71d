package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
	assert.GreaterOrEqual(t, strings.Count(buf.String(), "\n"), 8)
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(40)
	out, err := render("What is your **name**?")
	require.NoError(t, err)
	assert.Contains(t, out, "name")
	assert.False(t, strings.HasPrefix(out, "\n"))
}

func TestCompletion(t *testing.T) {
	out := Completion("Thank you!", "Your responses have been submitted.")
	assert.Contains(t, out, "Thank you!")
	assert.True(t, strings.HasSuffix(out, "Your responses have been submitted."))
}

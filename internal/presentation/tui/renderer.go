package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders question markdown using
// glamour. Leading and trailing blank lines glamour adds are trimmed so
// prompts stay compact.
func NewRenderer(width int) func(string) (string, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)

	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		out, rerr := r.Render(markdown)
		if rerr != nil {
			return markdown, rerr
		}
		return strings.Trim(out, "\n"), nil
	}
}

package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the stepper banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"     _                             ", "#818cf8"},
		{" ___| |_ ___ _ __  _ __   ___ _ __ ", "#a78bfa"},
		{"/ __| __/ _ \\ '_ \\| '_ \\ / _ \\ '__|", "#c084fc"},
		{"\\__ \\ ||  __/ |_) | |_) |  __/ |   ", "#e879f9"},
		{"|___/\\__\\___| .__/| .__/ \\___|_|   ", "#f472b6"},
		{"            |_|   |_|              ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}

// Completion styles the end-of-survey message.
func Completion(title, message string) string {
	p := termenv.ColorProfile()
	return termenv.String(title).Bold().Foreground(p.Color("#22c55e")).String() + "\n" + message
}

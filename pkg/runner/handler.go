package runner

import (
	"context"
	"strings"

	"github.com/steltz/stepper/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between line-oriented and interactive prompt modes.
type IOHandler interface {
	// Output presents the current question, progress and visible error.
	Output(ctx context.Context, view domain.View) error

	// Input reads the user's response to the question in view.
	Input(ctx context.Context, view domain.View) (string, error)

	// SystemOutput presents a meta-message to the user (e.g. status updates).
	// This is distinct from question rendering.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms question text before it is printed.
// This allows Markdown to ANSI rendering without coupling the runner to a TUI library.
type ContentRenderer func(string) (string, error)

// Terminal commands understood while answering.
const (
	CommandBack = ":back"
	CommandQuit = ":quit"
)

// CommandKind classifies a line of user input.
type CommandKind int

const (
	CommandAnswer CommandKind = iota
	CommandGoBack
	CommandExit
)

// Command is a parsed line of user input.
type Command struct {
	Kind  CommandKind
	Value string
}

// ParseCommand maps raw input to a command. Anything that is not a known
// command is an answer, kept verbatim.
func ParseCommand(input string) Command {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case CommandBack:
		return Command{Kind: CommandGoBack}
	case CommandQuit, ":q", ":exit":
		return Command{Kind: CommandExit}
	}
	return Command{Kind: CommandAnswer, Value: input}
}

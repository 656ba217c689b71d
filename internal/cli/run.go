package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/steltz/stepper"
	"github.com/steltz/stepper/internal/presentation/tui"
	"github.com/steltz/stepper/pkg/runner"
)

// RunOptions controls an interactive survey in the terminal.
type RunOptions struct {
	In  io.Reader
	Out io.Writer

	// Plain forces the line-oriented handler even on a terminal.
	Plain bool
	// Quiet suppresses the banner.
	Quiet bool
}

// IsTerminal reports whether r is attached to a terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RunSurvey runs one survey session against the stack's session manager.
// Interruptions and early exits are not errors.
func RunSurvey(ctx context.Context, s *Stack, opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	interactive := IsTerminal(opts.In)
	if !opts.Quiet {
		tui.PrintBanner(opts.Out, stepper.Version)
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(s.Logger),
		runner.WithTransitionDuration(s.Config.Transition.Duration),
	}

	var handler runner.IOHandler
	switch {
	case interactive && !opts.Plain:
		sh := runner.NewSurveyHandler(opts.Out)
		sh.Renderer = tui.NewRenderer(80)
		handler = sh
		runnerOpts = append(runnerOpts, runner.WithCompletionFormat(tui.Completion))
	case interactive:
		handler = runner.NewTextHandler(opts.In, opts.Out, runner.WithTextHandlerRenderer(tui.NewRenderer(80)))
		runnerOpts = append(runnerOpts, runner.WithCompletionFormat(tui.Completion))
	default:
		handler = runner.NewTextHandler(opts.In, opts.Out)
	}
	runnerOpts = append(runnerOpts, runner.WithInputHandler(handler))

	res, err := runner.NewRunner(runnerOpts...).Run(ctx, s.Sessions)
	s.Logger.Info("survey finished",
		"session_id", res.SessionID,
		"complete", res.State.IsComplete,
		"quit", res.Quit,
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("survey failed: %w", err)
	}
	return nil
}

/*
Package runner implements the terminal presentation driver of the stepper.

It acts as the bridge between a hosted session and a person at a terminal.
The runner renders each question through a pluggable IOHandler, turns what
the user types into exactly one action per interaction, and plays the
transition sequence (wait, then ClearTransition) after every step change.

# Key Components

  - Runner: the interaction loop over a Host (usually a session.Manager).
  - IOHandler: decouples how questions are shown and answers are read.
  - TextHandler: line-oriented handler for pipes and plain terminals.
  - SurveyHandler: interactive prompts (select, input, multiline) built on survey/v2.
  - Sequencer: the timed transition/completion signals consumed by presentation.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithTransitionDuration(300*time.Millisecond),
	)

	state, err := r.Run(ctx, manager)

While answering, ":back" returns to the previous question and ":quit" leaves
the survey.
*/
package runner

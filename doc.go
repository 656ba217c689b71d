/*
Package stepper is a multi-step survey engine.

It presents a fixed catalog of questions one at a time, validates each answer
against the rules of its question type, and tracks navigation and completion
in an immutable FormState. The engine performs no I/O: drivers (terminal,
HTTP, MCP) dispatch actions and render the resulting state, and a session
manager hands completed forms to a completion sink.

# Usage

	eng, err := stepper.New("") // built-in catalog
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state := eng.Start(ctx)

	state, _ = eng.Dispatch(ctx, state, domain.SetAnswer{Value: "Under the door"})
	if state.Validation.Valid {
		state, _ = eng.Dispatch(ctx, state, domain.Next{})
	}

	view, _ := eng.View(state)
	fmt.Println(view.Progress, view.Question.Text)

# Actions

Exactly five actions drive the machine: SetAnswer, Next, Back, Submit and
ClearTransition. Validation failures are data, carried in
FormState.Validation, never errors. A freshly visited question with no answer
is "untouched": invalid, but without a message.

# Catalog Sources

New accepts a YAML/JSON catalog file, a directory of question documents
(read with Loam), or an empty string for the built-in catalog.
*/
package stepper

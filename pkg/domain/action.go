package domain

import (
	"fmt"
	"strings"
)

// ActionType names an Action on the wire (HTTP, MCP, logs).
type ActionType string

const (
	ActionSetAnswer       ActionType = "set_answer"
	ActionNext            ActionType = "next"
	ActionBack            ActionType = "back"
	ActionSubmit          ActionType = "submit"
	ActionClearTransition ActionType = "clear_transition"
)

// Action is one input of the state machine. The set is closed.
type Action interface {
	Type() ActionType
	action()
}

// SetAnswer stores Value for the current question and revalidates it.
type SetAnswer struct {
	Value string
}

// Next moves to the following question.
type Next struct{}

// Back moves to the previous question.
type Back struct{}

// Submit completes the form when the last answer is valid.
type Submit struct{}

// ClearTransition acknowledges the transition marker.
type ClearTransition struct{}

func (SetAnswer) Type() ActionType       { return ActionSetAnswer }
func (Next) Type() ActionType            { return ActionNext }
func (Back) Type() ActionType            { return ActionBack }
func (Submit) Type() ActionType          { return ActionSubmit }
func (ClearTransition) Type() ActionType { return ActionClearTransition }

func (SetAnswer) action()       {}
func (Next) action()            {}
func (Back) action()            {}
func (Submit) action()          {}
func (ClearTransition) action() {}

// ParseAction builds an Action from its wire name. value is only used by
// set_answer.
func ParseAction(name string, value string) (Action, error) {
	switch ActionType(strings.ToLower(strings.TrimSpace(name))) {
	case ActionSetAnswer:
		return SetAnswer{Value: value}, nil
	case ActionNext:
		return Next{}, nil
	case ActionBack:
		return Back{}, nil
	case ActionSubmit:
		return Submit{}, nil
	case ActionClearTransition:
		return ClearTransition{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
}

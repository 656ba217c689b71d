package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/steltz/stepper/pkg/domain"
)

// ErrAborted signals the user aborted a prompt (e.g., Ctrl+C).
var ErrAborted = errors.New("runner: aborted")

// Labels of the navigation entries appended to a select prompt.
const (
	OptionBack = "« Back"
	OptionQuit = "Quit"
)

// InputConfig configures a single line prompt.
type InputConfig struct {
	Message string
	Default string
	Help    string
}

// SelectConfig configures a single choice prompt.
type SelectConfig struct {
	Message string
	Options []string
	Default string
	Help    string
}

// TextAreaConfig configures a multi-line prompt.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver abstracts the terminal prompt library so the handler can be
// tested without a real terminal.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Select(ctx context.Context, cfg SelectConfig) (string, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
}

// SurveyHandler implements IOHandler with interactive prompts: a select list
// for yes/no questions, an editor for textareas and a line input otherwise.
type SurveyHandler struct {
	Driver   PromptDriver
	Writer   io.Writer
	Renderer ContentRenderer
}

// NewSurveyHandler creates an interactive handler writing status lines to w.
func NewSurveyHandler(w io.Writer) *SurveyHandler {
	if w == nil {
		w = os.Stdout
	}
	return &SurveyHandler{Driver: surveyDriver{}, Writer: w}
}

func (h *SurveyHandler) Output(ctx context.Context, view domain.View) error {
	fmt.Fprintf(h.Writer, "\nQuestion %s\n", view.Progress)
	if view.Error != "" {
		fmt.Fprintf(h.Writer, "! %s\n", view.Error)
	}
	return nil
}

func (h *SurveyHandler) Input(ctx context.Context, view domain.View) (string, error) {
	q := view.Question
	message := q.Text
	if h.Renderer != nil {
		if rendered, err := h.Renderer(message); err == nil {
			message = rendered
		}
	}
	help := "type :back for the previous question, :quit to leave"

	switch q.Type {
	case domain.KindYesNo:
		options := append([]string(nil), q.Options...)
		if view.CanGoBack {
			options = append(options, OptionBack)
		}
		options = append(options, OptionQuit)

		choice, err := h.Driver.Select(ctx, SelectConfig{
			Message: message,
			Options: options,
			Default: view.CurrentAnswer,
		})
		if err != nil {
			return "", err
		}
		switch choice {
		case OptionBack:
			return CommandBack, nil
		case OptionQuit:
			return CommandQuit, nil
		}
		return choice, nil

	case domain.KindTextarea:
		return h.Driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: view.CurrentAnswer,
			Help:    help,
		})

	default:
		if q.Placeholder != "" {
			help = fmt.Sprintf("e.g. %s; %s", q.Placeholder, help)
		}
		return h.Driver.Input(ctx, InputConfig{
			Message: message,
			Default: view.CurrentAnswer,
			Help:    help,
		})
	}
}

func (h *SurveyHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "\n%s\n", msg)
	return err
}

type surveyDriver struct{}

func (surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(sanitizeValidator)); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyDriver) Select(ctx context.Context, cfg SelectConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Select{
		Message: cfg.Message,
		Options: cfg.Options,
		Help:    cfg.Help,
	}
	for _, o := range cfg.Options {
		if o == cfg.Default {
			prompt.Default = cfg.Default
		}
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Multiline{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(sanitizeValidator)); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

// sanitizeValidator rejects input the runner would refuse anyway, so the
// prompt can ask again in place.
func sanitizeValidator(ans interface{}) error {
	s, ok := ans.(string)
	if !ok {
		return nil
	}
	_, err := SanitizeInput(s)
	return err
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

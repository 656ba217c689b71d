package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/steltz/stepper/pkg/domain"
	"gopkg.in/yaml.v3"
)

// QuestionSpec is the declarative form of a question, as found in catalog
// files and document frontmatter. Keys may be written in snake_case or
// camelCase.
type QuestionSpec struct {
	ID          string `json:"id" mapstructure:"id"`
	Type        string `json:"type" mapstructure:"type"`
	Text        string `json:"text" mapstructure:"text"`
	Position    int    `json:"position" mapstructure:"position"`
	Required    *bool  `json:"required" mapstructure:"required"`
	Placeholder string `json:"placeholder" mapstructure:"placeholder"`
	MinLength   int    `json:"min_length" mapstructure:"min_length"`
	MaxLength   int    `json:"max_length" mapstructure:"max_length"`
	InputMode   string `json:"input_mode" mapstructure:"input_mode"`
	Rows        int    `json:"rows" mapstructure:"rows"`
}

// Question builds the domain variant named by Type.
func (s QuestionSpec) Question() (domain.Question, error) {
	required := true
	if s.Required != nil {
		required = *s.Required
	}
	base := domain.Base{
		ID:       strings.TrimSpace(s.ID),
		Text:     strings.TrimSpace(s.Text),
		Position: s.Position,
		Required: required,
	}

	switch domain.QuestionKind(strings.ToLower(strings.TrimSpace(s.Type))) {
	case domain.KindYesNo, "yesno", "yes_no":
		return domain.YesNoQuestion{Base: base}, nil
	case domain.KindText, "":
		return domain.TextQuestion{
			Base:        base,
			Placeholder: s.Placeholder,
			MinLength:   s.MinLength,
			MaxLength:   s.MaxLength,
			InputMode:   domain.InputMode(s.InputMode),
		}, nil
	case domain.KindPhone:
		return domain.PhoneQuestion{Base: base, Placeholder: s.Placeholder}, nil
	case domain.KindTextarea:
		return domain.TextareaQuestion{
			Base:        base,
			Placeholder: s.Placeholder,
			Rows:        s.Rows,
			MinLength:   s.MinLength,
			MaxLength:   s.MaxLength,
		}, nil
	default:
		return nil, fmt.Errorf("question %q: unknown type %q", s.ID, s.Type)
	}
}

// FromSpecs builds a catalog. Specs without a position are numbered by their
// order in the list.
func FromSpecs(specs []QuestionSpec) (*Catalog, error) {
	questions := make([]domain.Question, 0, len(specs))
	for i, s := range specs {
		if s.Position == 0 {
			s.Position = i + 1
		}
		q, err := s.Question()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
		questions = append(questions, q)
	}
	return New(questions...)
}

type document struct {
	Questions []map[string]any `yaml:"questions"`
}

// Decode parses a YAML or JSON catalog document of the form
//
//	questions:
//	  - id: phone
//	    type: phone
//	    text: Cell Phone Number
func Decode(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	specs := make([]QuestionSpec, 0, len(doc.Questions))
	for i, raw := range doc.Questions {
		spec, err := DecodeSpec(raw)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		specs = append(specs, spec)
	}
	return FromSpecs(specs)
}

// DecodeSpec converts a generic map (YAML, JSON or frontmatter) into a QuestionSpec.
func DecodeSpec(raw map[string]any) (QuestionSpec, error) {
	var spec QuestionSpec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &spec,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		},
	})
	if err != nil {
		return spec, err
	}
	if err := dec.Decode(raw); err != nil {
		return spec, fmt.Errorf("failed to decode question: %w", err)
	}
	return spec, nil
}

func normalizeKey(k string) string {
	k = strings.ReplaceAll(k, "_", "")
	k = strings.ReplaceAll(k, "-", "")
	return strings.ToLower(k)
}

// LoadFile reads a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

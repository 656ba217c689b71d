package graph

import (
	"fmt"
	"strings"

	"github.com/steltz/stepper/pkg/domain"
)

// Overlay contains session data to visualize on the flowchart.
type Overlay struct {
	Answered []string
	Current  string
}

// GenerateMermaid produces a Mermaid flowchart of the survey. Questions are
// chained in display order between a start and a submit node, with dotted
// back edges. Shapes follow the question kind:
// - yes/no: {Rhombus}
// - text and phone: [/Parallelogram/]
// - textarea: [[Subroutine]]
func GenerateMermaid(questions []domain.QuestionView, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    start((\"start\"))\n")

	prev := "start"
	for i, q := range questions {
		safeID := sanitizeMermaidID(q.ID)

		opener, closer := "[", "]"
		switch q.Type {
		case domain.KindYesNo:
			opener, closer = "{", "}"
		case domain.KindText, domain.KindPhone:
			opener, closer = "[/", "/]"
		case domain.KindTextarea:
			opener, closer = "[[", "]]"
		}

		label := escapeLabel(q.Text)
		if label == "" {
			label = q.ID
		}
		fmt.Fprintf(&sb, "    %s%s\"%d. %s\"%s\n", safeID, opener, i+1, label, closer)
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, safeID)
		if i > 0 {
			fmt.Fprintf(&sb, "    %s -. back .-> %s\n", safeID, prev)
		}
		prev = safeID
	}
	sb.WriteString("    submit((\"submit\"))\n")
	fmt.Fprintf(&sb, "    %s --> submit\n", prev)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef answered fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Answered {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s answered;\n", safeID)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	// Mermaid reserves these as keywords.
	switch s {
	case "start", "submit", "end", "graph":
		s = "q_" + s
	}
	return s
}

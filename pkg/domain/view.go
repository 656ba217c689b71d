package domain

import "fmt"

// Progress is the 1-based position shown to the user.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

func (p Progress) String() string {
	return fmt.Sprintf("%d of %d", p.Current, p.Total)
}

// View is the read-only presentation model of a FormState.
type View struct {
	State         FormState    `json:"state"`
	Question      QuestionView `json:"question"`
	CurrentAnswer string       `json:"current_answer"`
	Progress      Progress     `json:"progress"`
	IsLast        bool         `json:"is_last"`
	CanGoNext     bool         `json:"can_go_next"`
	CanGoBack     bool         `json:"can_go_back"`
	CanSubmit     bool         `json:"can_submit"`
	Error         string       `json:"error,omitempty"`
}

package domain

import (
	"strings"
	"time"
)

// Importance is the user-assigned priority tier of a task.
type Importance string

const (
	ImportanceNone     Importance = "none"
	ImportanceLow      Importance = "low"
	ImportanceMedium   Importance = "medium"
	ImportanceHigh     Importance = "high"
	ImportanceCritical Importance = "critical"
)

// Importances lists every tier in ascending order.
var Importances = []Importance{
	ImportanceNone,
	ImportanceLow,
	ImportanceMedium,
	ImportanceHigh,
	ImportanceCritical,
}

// Subjects are the category labels offered by the task form. Subject stays free text.
var Subjects = []string{
	"Mathematics",
	"Science",
	"English",
	"History",
	"Computer Science",
	"Art",
	"Music",
	"Physical Education",
	"Other",
}

// ParseImportance accepts a tier label case-insensitively. Empty input means none.
func ParseImportance(value string) (Importance, bool) {
	v := Importance(strings.ToLower(strings.TrimSpace(value)))
	if v == "" {
		return ImportanceNone, true
	}
	for _, imp := range Importances {
		if v == imp {
			return imp, true
		}
	}
	return "", false
}

// CoerceSuggestedImportance maps free-form model output onto a tier.
// Anything outside the closed label set becomes medium.
func CoerceSuggestedImportance(raw string) Importance {
	v := Importance(strings.ToLower(strings.TrimSpace(raw)))
	for _, imp := range Importances {
		if v == imp {
			return imp
		}
	}
	return ImportanceMedium
}

func (i Importance) IsValid() bool {
	_, ok := ParseImportance(string(i))
	return ok
}

// Task represents a single item on the user's list.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Importance  Importance `json:"importance"`
	Subject     string     `json:"subject,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	Rank        int        `json:"rank"`
}

// Input returns the form values that would reproduce the task's editable fields.
func (t Task) Input() TaskInput {
	return TaskInput{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     cloneTime(t.DueDate),
		Importance:  t.Importance,
		Subject:     t.Subject,
	}
}

// TaskInput carries form values for creating or editing a task.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Importance  Importance `json:"importance"`
	Subject     string     `json:"subject"`
}

// Validate rejects input that cannot produce a task.
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrBlankTitle
	}
	if !in.Importance.IsValid() {
		return ErrInvalidImportance
	}
	return nil
}

func (in TaskInput) normalize() TaskInput {
	out := in
	out.Importance, _ = ParseImportance(string(in.Importance))
	if strings.TrimSpace(out.Description) == "" {
		out.Description = ""
	}
	if strings.TrimSpace(out.Subject) == "" {
		out.Subject = ""
	}
	out.DueDate = cloneTime(in.DueDate)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

package transport

import (
	"strings"
	"time"

	"github.com/fastygo/taskwise/domain"
)

// TaskRequest carries the task form. DueDate accepts RFC3339 or a plain
// YYYY-MM-DD date, which is read as midnight UTC.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Importance  string `json:"importance"`
	Subject     string `json:"subject"`
}

// Input converts the request into form values, rejecting unknown
// importance labels and unparseable dates.
func (r TaskRequest) Input() (domain.TaskInput, error) {
	imp, ok := domain.ParseImportance(r.Importance)
	if !ok {
		return domain.TaskInput{}, domain.ErrInvalidImportance
	}
	due, err := ParseDueDate(r.DueDate)
	if err != nil {
		return domain.TaskInput{}, err
	}
	in := domain.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		DueDate:     due,
		Importance:  imp,
		Subject:     r.Subject,
	}
	if err := in.Validate(); err != nil {
		return domain.TaskInput{}, err
	}
	return in, nil
}

// ParseDueDate returns nil for an empty value.
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, nil
		}
	}
	return nil, domain.NewError(domain.ErrCodeInvalid, "dueDate must be RFC3339 or YYYY-MM-DD")
}

type SuggestionRequest struct {
	Kind    string `json:"kind"`
	Context string `json:"context"`
}

// PriorityRequest asks for an importance label for a task that does not exist yet.
type PriorityRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
	DueDate     string `json:"dueDate"`
	Context     string `json:"context"`
}

func (r PriorityRequest) Query() (domain.PriorityQuery, error) {
	if strings.TrimSpace(r.Title) == "" {
		return domain.PriorityQuery{}, domain.ErrBlankTitle
	}
	due, err := ParseDueDate(r.DueDate)
	if err != nil {
		return domain.PriorityQuery{}, err
	}
	return domain.PriorityQuery{
		Title:       r.Title,
		Description: r.Description,
		Subject:     r.Subject,
		DueDate:     due,
		UserContext: r.Context,
	}, nil
}

type RewriteRequest struct {
	Action      string `json:"action"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
	DueDate     string `json:"dueDate"`
}

func (r RewriteRequest) Query() (domain.RewriteQuery, error) {
	kind, err := domain.ParseSuggestionKind(r.Action)
	if err != nil || kind == domain.SuggestPriority {
		return domain.RewriteQuery{}, domain.ErrUnknownSuggestion
	}
	if strings.TrimSpace(r.Title) == "" {
		return domain.RewriteQuery{}, domain.ErrBlankTitle
	}
	due, err := ParseDueDate(r.DueDate)
	if err != nil {
		return domain.RewriteQuery{}, err
	}
	return domain.RewriteQuery{
		Action:      kind,
		Title:       r.Title,
		Description: r.Description,
		Subject:     r.Subject,
		DueDate:     due,
	}, nil
}

type CredentialRequest struct {
	APIKey string `json:"apiKey"`
}

package domain

import "time"

// SuggestionKind selects what the AI collaborator is asked to produce.
type SuggestionKind string

const (
	SuggestPriority            SuggestionKind = "priority"
	SuggestOptimizeTitle       SuggestionKind = "optimize-title"
	SuggestOptimizeDescription SuggestionKind = "optimize-description"
	SuggestGenerateDescription SuggestionKind = "generate-description"
)

func ParseSuggestionKind(value string) (SuggestionKind, error) {
	switch k := SuggestionKind(value); k {
	case SuggestPriority, SuggestOptimizeTitle, SuggestOptimizeDescription, SuggestGenerateDescription:
		return k, nil
	}
	return "", ErrUnknownSuggestion
}

// PriorityQuery is the context sent when asking for an importance label.
type PriorityQuery struct {
	Title       string
	Description string
	Subject     string
	DueDate     *time.Time
	UserContext string
	Now         time.Time
}

// RewriteQuery asks for a rewritten title or description.
type RewriteQuery struct {
	Action      SuggestionKind
	Title       string
	Description string
	Subject     string
	DueDate     *time.Time
}

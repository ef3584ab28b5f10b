package usecase

import (
	"context"

	"github.com/fastygo/taskwise/domain"
)

// Suggester abstracts the AI collaborator so use cases stay provider-agnostic.
// SuggestPriority returns the raw label; callers coerce it to an Importance.
type Suggester interface {
	SuggestPriority(ctx context.Context, q domain.PriorityQuery) (string, error)
	Rewrite(ctx context.Context, q domain.RewriteQuery) (string, error)
}

package repository

import (
	"context"

	"github.com/fastygo/taskwise/domain"
)

// TaskStore persists the whole task collection as one unit.
// Load returns an empty slice and a nil error when nothing has been saved yet.
type TaskStore interface {
	Save(ctx context.Context, tasks []domain.Task) error
	Load(ctx context.Context) ([]domain.Task, error)
	Ping(ctx context.Context) error
}

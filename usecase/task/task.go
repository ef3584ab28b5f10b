package task

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskwise/domain"
	"github.com/fastygo/taskwise/repository"
	"github.com/fastygo/taskwise/usecase"
)

// Clock supplies the current time to the ranking engine.
type Clock func() time.Time

type Option func(*UseCase)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock Clock) Option {
	return func(uc *UseCase) {
		if clock != nil {
			uc.clock = clock
		}
	}
}

// UseCase owns the in-memory task collection. Every mutation runs to completion
// under mu, re-orders the collection and persists it.
type UseCase struct {
	store     repository.TaskStore
	suggester usecase.Suggester
	clock     Clock
	logger    *zap.Logger

	mu       sync.Mutex
	tasks    []domain.Task
	dirty    bool
	sessions map[string]*editSession

	baseCtx   context.Context
	cancelAll context.CancelFunc
}

func New(store repository.TaskStore, suggester usecase.Suggester, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	uc := &UseCase{
		store:     store,
		suggester: suggester,
		clock:     time.Now,
		logger:    logger,
		tasks:     []domain.Task{},
		sessions:  make(map[string]*editSession),
		baseCtx:   baseCtx,
		cancelAll: cancel,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Load replaces the collection with the stored one. A failed load leaves the
// board empty; the error is logged and also returned for callers that care.
func (uc *UseCase) Load(ctx context.Context) ([]domain.Task, error) {
	var (
		tasks []domain.Task
		err   error
	)
	if uc.store != nil {
		tasks, err = uc.store.Load(ctx)
	}
	if err != nil {
		uc.logger.Error("failed to load tasks, starting empty", zap.Error(err))
		tasks = nil
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.tasks = domain.OrderTasks(tasks, uc.clock())
	uc.dirty = false
	uc.logger.Info("tasks loaded", zap.Int("count", len(uc.tasks)))
	return cloneTasks(uc.tasks), err
}

// List returns the collection ranked against the current time.
func (uc *UseCase) List() []domain.Task {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.tasks = domain.OrderTasks(uc.tasks, uc.clock())
	return cloneTasks(uc.tasks)
}

func (uc *UseCase) Get(id string) (domain.Task, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	idx := domain.FindTask(uc.tasks, id)
	if idx < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	t := uc.tasks[idx]
	t.Rank = domain.ComputeRank(t, uc.clock())
	return t, nil
}

func (uc *UseCase) Create(ctx context.Context, in domain.TaskInput) (domain.Task, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := uc.clock()
	created, err := domain.CreateTask(in, now)
	if err != nil {
		return domain.Task{}, err
	}
	uc.tasks = domain.OrderTasks(append(uc.tasks, created), now)
	uc.persistLocked(ctx, "create")
	uc.logger.Debug("task created", zap.String("task_id", created.ID), zap.Int("rank", created.Rank))
	return created, nil
}

func (uc *UseCase) Update(ctx context.Context, id string, in domain.TaskInput) (domain.Task, error) {
	if err := in.Validate(); err != nil {
		return domain.Task{}, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	idx := domain.FindTask(uc.tasks, id)
	if idx < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	updated := uc.replaceLocked(idx, in)
	uc.persistLocked(ctx, "update")
	return updated, nil
}

func (uc *UseCase) Toggle(ctx context.Context, id string) (domain.Task, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	idx := domain.FindTask(uc.tasks, id)
	if idx < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	toggled := domain.ToggleComplete(uc.tasks[idx])
	uc.tasks[idx] = toggled
	uc.tasks = domain.OrderTasks(uc.tasks, uc.clock())
	uc.persistLocked(ctx, "toggle")
	return toggled, nil
}

// Delete removes the task and discards any edit session still targeting it.
// Deleting an unknown id is a no-op.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.closeSessionsForLocked(id)
	if domain.FindTask(uc.tasks, id) < 0 {
		return nil
	}
	uc.tasks = domain.OrderTasks(domain.DeleteTask(uc.tasks, id), uc.clock())
	uc.persistLocked(ctx, "delete")
	return nil
}

// Flush retries a save that failed earlier. It is a no-op when nothing is pending.
func (uc *UseCase) Flush(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if !uc.dirty || uc.store == nil {
		return nil
	}
	if err := uc.store.Save(ctx, uc.tasks); err != nil {
		return err
	}
	uc.dirty = false
	uc.logger.Info("pending task changes saved", zap.Int("count", len(uc.tasks)))
	return nil
}

// Dirty reports whether the in-memory collection has unsaved changes.
func (uc *UseCase) Dirty() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.dirty
}

// Close cancels every pending suggestion and closes all edit sessions.
func (uc *UseCase) Close() {
	uc.mu.Lock()
	for id, s := range uc.sessions {
		s.cancel()
		delete(uc.sessions, id)
	}
	uc.mu.Unlock()
	uc.cancelAll()
}

func (uc *UseCase) replaceLocked(idx int, in domain.TaskInput) domain.Task {
	now := uc.clock()
	updated := domain.UpdateTask(uc.tasks[idx], in, now)
	uc.tasks[idx] = updated
	uc.tasks = domain.OrderTasks(uc.tasks, now)
	return updated
}

// persistLocked saves the collection. A failure keeps the in-memory state
// authoritative and marks it dirty for Flush.
func (uc *UseCase) persistLocked(ctx context.Context, operation string) {
	if uc.store == nil {
		return
	}
	if err := uc.store.Save(ctx, uc.tasks); err != nil {
		uc.dirty = true
		uc.logger.Error("failed to save tasks", zap.String("operation", operation), zap.Error(err))
		return
	}
	uc.dirty = false
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	return out
}

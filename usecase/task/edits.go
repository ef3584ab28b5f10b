package task

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskwise/domain"
)

const resolveSaveTimeout = 5 * time.Second

// OutcomeStatus describes how a suggestion request ended.
type OutcomeStatus string

const (
	OutcomePending   OutcomeStatus = "pending"
	OutcomeApplied   OutcomeStatus = "applied"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeDiscarded OutcomeStatus = "discarded"
)

type Outcome struct {
	Kind   domain.SuggestionKind `json:"kind"`
	Status OutcomeStatus         `json:"status"`
	Value  string                `json:"value,omitempty"`
	Error  string                `json:"error,omitempty"`
	Task   *domain.Task          `json:"task,omitempty"`

	err error
}

// Err returns the failure cause for OutcomeFailed.
func (o Outcome) Err() error { return o.err }

// EditSession is a read-only view of an open edit session.
type EditSession struct {
	ID       string    `json:"id"`
	TaskID   string    `json:"taskId"`
	OpenedAt time.Time `json:"openedAt"`
	Pending  int       `json:"pending"`
	Last     *Outcome  `json:"lastOutcome,omitempty"`
}

type editSession struct {
	id       string
	taskID   string
	openedAt time.Time
	last     *Outcome
	pending  map[*Pending]struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

func (s *editSession) view() EditSession {
	v := EditSession{
		ID:       s.id,
		TaskID:   s.taskID,
		OpenedAt: s.openedAt,
		Pending:  len(s.pending),
	}
	if s.last != nil {
		last := *s.last
		v.Last = &last
	}
	return v
}

// Pending is a cancellable in-flight suggestion bound to one edit session.
type Pending struct {
	SessionID string
	TaskID    string
	Kind      domain.SuggestionKind

	done    chan struct{}
	once    sync.Once
	ctx     context.Context
	cancel  context.CancelFunc
	outcome Outcome
}

// Done is closed once the outcome is known.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Outcome returns the final outcome, or a pending one while still running.
func (p *Pending) Outcome() Outcome {
	select {
	case <-p.done:
		return p.outcome
	default:
		return Outcome{Kind: p.Kind, Status: OutcomePending}
	}
}

// Cancel aborts the request. The outcome becomes discarded.
func (p *Pending) Cancel() { p.cancel() }

func (p *Pending) finish(o Outcome) {
	p.once.Do(func() {
		p.outcome = o
		close(p.done)
	})
}

// OpenEdit starts an edit session for an existing task.
func (uc *UseCase) OpenEdit(taskID string) (EditSession, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if domain.FindTask(uc.tasks, taskID) < 0 {
		return EditSession{}, domain.ErrTaskNotFound
	}
	ctx, cancel := context.WithCancel(uc.baseCtx)
	s := &editSession{
		id:       uuid.NewString(),
		taskID:   taskID,
		openedAt: uc.clock(),
		pending:  make(map[*Pending]struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	uc.sessions[s.id] = s
	return s.view(), nil
}

func (uc *UseCase) Edit(sessionID string) (EditSession, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	s, ok := uc.sessions[sessionID]
	if !ok {
		return EditSession{}, domain.ErrEditSessionNotFound
	}
	return s.view(), nil
}

// CloseEdit ends a session. Suggestions still in flight are discarded.
func (uc *UseCase) CloseEdit(sessionID string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	s, ok := uc.sessions[sessionID]
	if !ok {
		return domain.ErrEditSessionNotFound
	}
	delete(uc.sessions, sessionID)
	s.cancel()
	return nil
}

func (uc *UseCase) closeSessionsForLocked(taskID string) {
	for id, s := range uc.sessions {
		if s.taskID == taskID {
			delete(uc.sessions, id)
			s.cancel()
		}
	}
}

// RequestSuggestion asks the AI collaborator for a suggestion about the
// session's task. The result is applied only if the session is still open
// and the task still exists when the answer arrives.
func (uc *UseCase) RequestSuggestion(sessionID string, kind domain.SuggestionKind, userContext string) (*Pending, error) {
	if uc.suggester == nil {
		return nil, domain.ErrSuggestionsDisabled
	}
	if _, err := domain.ParseSuggestionKind(string(kind)); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	s, ok := uc.sessions[sessionID]
	if !ok {
		return nil, domain.ErrEditSessionNotFound
	}
	idx := domain.FindTask(uc.tasks, s.taskID)
	if idx < 0 {
		return nil, domain.ErrTaskNotFound
	}
	target := uc.tasks[idx]
	now := uc.clock()

	ctx, cancel := context.WithCancel(s.ctx)
	p := &Pending{
		SessionID: s.id,
		TaskID:    s.taskID,
		Kind:      kind,
		done:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.pending[p] = struct{}{}
	s.last = &Outcome{Kind: kind, Status: OutcomePending}

	go func() {
		defer cancel()
		value, err := uc.callSuggester(ctx, kind, target, userContext, now)
		uc.resolve(p, value, err)
	}()
	return p, nil
}

func (uc *UseCase) callSuggester(ctx context.Context, kind domain.SuggestionKind, t domain.Task, userContext string, now time.Time) (string, error) {
	if kind == domain.SuggestPriority {
		return uc.suggester.SuggestPriority(ctx, domain.PriorityQuery{
			Title:       t.Title,
			Description: t.Description,
			Subject:     t.Subject,
			DueDate:     t.DueDate,
			UserContext: userContext,
			Now:         now,
		})
	}
	return uc.suggester.Rewrite(ctx, domain.RewriteQuery{
		Action:      kind,
		Title:       t.Title,
		Description: t.Description,
		Subject:     t.Subject,
		DueDate:     t.DueDate,
	})
}

func (uc *UseCase) resolve(p *Pending, value string, callErr error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	s, open := uc.sessions[p.SessionID]
	if open {
		delete(s.pending, p)
	}
	outcome := Outcome{Kind: p.Kind, Value: value}
	idx := domain.FindTask(uc.tasks, p.TaskID)

	switch {
	case !open || idx < 0:
		outcome.Status = OutcomeDiscarded
	case p.ctx.Err() != nil, errors.Is(callErr, context.Canceled):
		// A suggester may finish after cancellation without noticing it.
		outcome.Status = OutcomeDiscarded
	case callErr != nil:
		outcome.Status = OutcomeFailed
		outcome.err = callErr
	default:
		in, err := applySuggestion(uc.tasks[idx].Input(), p.Kind, value)
		if err != nil {
			outcome.Status = OutcomeFailed
			outcome.err = err
			break
		}
		updated := uc.replaceLocked(idx, in)
		ctx, cancel := context.WithTimeout(context.Background(), resolveSaveTimeout)
		uc.persistLocked(ctx, "suggestion")
		cancel()
		outcome.Status = OutcomeApplied
		outcome.Value = suggestedValue(updated, p.Kind)
		outcome.Task = &updated
	}
	if outcome.err != nil {
		outcome.Error = outcome.err.Error()
		uc.logger.Warn("suggestion failed",
			zap.String("kind", string(p.Kind)),
			zap.String("task_id", p.TaskID),
			zap.Error(outcome.err),
		)
	}
	if open {
		last := outcome
		s.last = &last
	}
	p.finish(outcome)
}

func applySuggestion(in domain.TaskInput, kind domain.SuggestionKind, value string) (domain.TaskInput, error) {
	if kind == domain.SuggestPriority {
		in.Importance = domain.CoerceSuggestedImportance(value)
		return in, nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return in, domain.ErrBlankSuggestion
	}
	if kind == domain.SuggestOptimizeTitle {
		in.Title = value
	} else {
		in.Description = value
	}
	return in, nil
}

func suggestedValue(t domain.Task, kind domain.SuggestionKind) string {
	switch kind {
	case domain.SuggestPriority:
		return string(t.Importance)
	case domain.SuggestOptimizeTitle:
		return t.Title
	default:
		return t.Description
	}
}

// SuggestPriority serves the new-task form: no session, no task, just the
// coerced label.
func (uc *UseCase) SuggestPriority(ctx context.Context, q domain.PriorityQuery) (domain.Importance, error) {
	if uc.suggester == nil {
		return "", domain.ErrSuggestionsDisabled
	}
	if q.Now.IsZero() {
		q.Now = uc.clock()
	}
	raw, err := uc.suggester.SuggestPriority(ctx, q)
	if err != nil {
		return "", err
	}
	return domain.CoerceSuggestedImportance(raw), nil
}

// SuggestRewrite returns a rewritten title or description without touching
// the collection.
func (uc *UseCase) SuggestRewrite(ctx context.Context, q domain.RewriteQuery) (string, error) {
	if uc.suggester == nil {
		return "", domain.ErrSuggestionsDisabled
	}
	if q.Action == domain.SuggestPriority {
		return "", domain.ErrUnknownSuggestion
	}
	out, err := uc.suggester.Rewrite(ctx, q)
	if err != nil {
		return "", err
	}
	if out = strings.TrimSpace(out); out == "" {
		return "", domain.ErrBlankSuggestion
	}
	return out, nil
}

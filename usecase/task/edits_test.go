package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fastygo/taskwise/domain"
)

type fakeSuggester struct {
	mu       sync.Mutex
	label    string
	rewrite  string
	err      error
	release  chan struct{}
	obeyCtx  bool
	priority []domain.PriorityQuery
	rewrites []domain.RewriteQuery
}

func (f *fakeSuggester) wait(ctx context.Context) error {
	if f.release == nil {
		return nil
	}
	if f.obeyCtx {
		select {
		case <-f.release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	<-f.release
	return nil
}

func (f *fakeSuggester) SuggestPriority(ctx context.Context, q domain.PriorityQuery) (string, error) {
	f.mu.Lock()
	f.priority = append(f.priority, q)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	return f.label, f.err
}

func (f *fakeSuggester) Rewrite(ctx context.Context, q domain.RewriteQuery) (string, error) {
	f.mu.Lock()
	f.rewrites = append(f.rewrites, q)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	return f.rewrite, f.err
}

func awaitOutcome(t *testing.T, p *Pending) Outcome {
	t.Helper()
	select {
	case <-p.Done():
		return p.Outcome()
	case <-time.After(2 * time.Second):
		t.Fatalf("suggestion did not resolve")
		return Outcome{}
	}
}

func openTask(t *testing.T, uc *UseCase, in domain.TaskInput) (domain.Task, EditSession) {
	t.Helper()
	created, err := uc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	session, err := uc.OpenEdit(created.ID)
	if err != nil {
		t.Fatalf("OpenEdit: %v", err)
	}
	return created, session
}

func TestRequestSuggestion_AppliesPriority(t *testing.T) {
	store := &memStore{}
	sugg := &fakeSuggester{label: "critical"}
	uc := newBoard(t, store, sugg)

	created, session := openTask(t, uc, domain.TaskInput{Title: "Final exam", Subject: "History", DueDate: due(2)})
	p, err := uc.RequestSuggestion(session.ID, domain.SuggestPriority, "worth 40%")
	if err != nil {
		t.Fatalf("RequestSuggestion: %v", err)
	}
	out := awaitOutcome(t, p)
	if out.Status != OutcomeApplied || out.Value != "critical" {
		t.Fatalf("outcome = %+v", out)
	}

	got, _ := uc.Get(created.ID)
	if got.Importance != domain.ImportanceCritical || got.Rank != 40+50+5 {
		t.Fatalf("task = %+v", got)
	}
	if saved := store.snapshot(); saved[0].Importance != domain.ImportanceCritical {
		t.Fatalf("applied suggestion was not persisted")
	}

	q := sugg.priority[0]
	if q.Title != "Final exam" || q.UserContext != "worth 40%" || !q.Now.Equal(refNow) {
		t.Fatalf("query = %+v", q)
	}

	view, err := uc.Edit(session.ID)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if view.Pending != 0 || view.Last == nil || view.Last.Status != OutcomeApplied {
		t.Fatalf("session = %+v", view)
	}
}

func TestRequestSuggestion_CoercesUnknownLabel(t *testing.T) {
	uc := newBoard(t, &memStore{}, &fakeSuggester{label: "urgent"})

	created, session := openTask(t, uc, domain.TaskInput{Title: "x", Importance: domain.ImportanceLow})
	p, err := uc.RequestSuggestion(session.ID, domain.SuggestPriority, "")
	if err != nil {
		t.Fatalf("RequestSuggestion: %v", err)
	}
	if out := awaitOutcome(t, p); out.Status != OutcomeApplied {
		t.Fatalf("outcome = %+v", out)
	}
	got, _ := uc.Get(created.ID)
	if got.Importance != domain.ImportanceMedium {
		t.Fatalf("importance = %q, want medium", got.Importance)
	}
}

func TestRequestSuggestion_Rewrites(t *testing.T) {
	cases := []struct {
		kind  domain.SuggestionKind
		check func(domain.Task) bool
	}{
		{domain.SuggestOptimizeTitle, func(t domain.Task) bool { return t.Title == "better" && t.Description == "old desc" }},
		{domain.SuggestOptimizeDescription, func(t domain.Task) bool { return t.Title == "old" && t.Description == "better" }},
		{domain.SuggestGenerateDescription, func(t domain.Task) bool { return t.Description == "better" }},
	}
	for _, tc := range cases {
		uc := newBoard(t, &memStore{}, &fakeSuggester{rewrite: " better "})
		created, session := openTask(t, uc, domain.TaskInput{Title: "old", Description: "old desc"})

		p, err := uc.RequestSuggestion(session.ID, tc.kind, "")
		if err != nil {
			t.Fatalf("%s: %v", tc.kind, err)
		}
		if out := awaitOutcome(t, p); out.Status != OutcomeApplied {
			t.Fatalf("%s: outcome = %+v", tc.kind, out)
		}
		got, _ := uc.Get(created.ID)
		if !tc.check(got) {
			t.Fatalf("%s: task = %+v", tc.kind, got)
		}
	}
}

func TestRequestSuggestion_BlankRewriteFails(t *testing.T) {
	uc := newBoard(t, &memStore{}, &fakeSuggester{rewrite: "   "})
	created, session := openTask(t, uc, domain.TaskInput{Title: "keep me"})

	p, _ := uc.RequestSuggestion(session.ID, domain.SuggestOptimizeTitle, "")
	out := awaitOutcome(t, p)
	if out.Status != OutcomeFailed || !errors.Is(out.Err(), domain.ErrBlankSuggestion) {
		t.Fatalf("outcome = %+v", out)
	}
	if got, _ := uc.Get(created.ID); got.Title != "keep me" {
		t.Fatalf("title changed to %q", got.Title)
	}
}

func TestRequestSuggestion_UpstreamFailureLeavesTask(t *testing.T) {
	uc := newBoard(t, &memStore{}, &fakeSuggester{err: domain.ErrCredentialMissing})
	created, session := openTask(t, uc, domain.TaskInput{Title: "x", Importance: domain.ImportanceLow})

	p, _ := uc.RequestSuggestion(session.ID, domain.SuggestPriority, "")
	out := awaitOutcome(t, p)
	if out.Status != OutcomeFailed || !errors.Is(out.Err(), domain.ErrCredentialMissing) || out.Error == "" {
		t.Fatalf("outcome = %+v", out)
	}
	if got, _ := uc.Get(created.ID); got.Importance != domain.ImportanceLow {
		t.Fatalf("importance changed to %q", got.Importance)
	}
}

func TestRequestSuggestion_DiscardedAfterDelete(t *testing.T) {
	store := &memStore{}
	sugg := &fakeSuggester{label: "critical", release: make(chan struct{})}
	uc := newBoard(t, store, sugg)
	ctx := context.Background()

	created, session := openTask(t, uc, domain.TaskInput{Title: "doomed"})
	p, err := uc.RequestSuggestion(session.ID, domain.SuggestPriority, "")
	if err != nil {
		t.Fatalf("RequestSuggestion: %v", err)
	}
	if out := p.Outcome(); out.Status != OutcomePending {
		t.Fatalf("outcome before resolve = %+v", out)
	}

	if err := uc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	saves := store.saves
	close(sugg.release)

	if out := awaitOutcome(t, p); out.Status != OutcomeDiscarded {
		t.Fatalf("outcome = %+v, want discarded", out)
	}
	if len(uc.List()) != 0 {
		t.Fatalf("deleted task came back")
	}
	if store.saves != saves {
		t.Fatalf("discarded suggestion must not save")
	}
	if _, err := uc.Edit(session.ID); !errors.Is(err, domain.ErrEditSessionNotFound) {
		t.Fatalf("session should be closed with its task, err = %v", err)
	}
}

func TestRequestSuggestion_DiscardedAfterClose(t *testing.T) {
	sugg := &fakeSuggester{label: "high", release: make(chan struct{}), obeyCtx: true}
	uc := newBoard(t, &memStore{}, sugg)

	created, session := openTask(t, uc, domain.TaskInput{Title: "x", Importance: domain.ImportanceLow})
	p, _ := uc.RequestSuggestion(session.ID, domain.SuggestPriority, "")
	if err := uc.CloseEdit(session.ID); err != nil {
		t.Fatalf("CloseEdit: %v", err)
	}
	if out := awaitOutcome(t, p); out.Status != OutcomeDiscarded {
		t.Fatalf("outcome = %+v", out)
	}
	if got, _ := uc.Get(created.ID); got.Importance != domain.ImportanceLow {
		t.Fatalf("closed session must not apply, importance = %q", got.Importance)
	}
	if err := uc.CloseEdit(session.ID); !errors.Is(err, domain.ErrEditSessionNotFound) {
		t.Fatalf("second close err = %v", err)
	}
}

func TestPending_Cancel(t *testing.T) {
	sugg := &fakeSuggester{label: "high", release: make(chan struct{}), obeyCtx: true}
	uc := newBoard(t, &memStore{}, sugg)

	_, session := openTask(t, uc, domain.TaskInput{Title: "x"})
	p, _ := uc.RequestSuggestion(session.ID, domain.SuggestPriority, "")
	p.Cancel()
	if out := awaitOutcome(t, p); out.Status != OutcomeDiscarded {
		t.Fatalf("outcome = %+v", out)
	}
	if _, err := uc.Edit(session.ID); err != nil {
		t.Fatalf("cancel must keep the session open: %v", err)
	}
}

func TestPending_CancelDiscardsLateAnswer(t *testing.T) {
	store := &memStore{}
	sugg := &fakeSuggester{label: "critical", release: make(chan struct{})}
	uc := newBoard(t, store, sugg)

	created, session := openTask(t, uc, domain.TaskInput{Title: "x", Importance: domain.ImportanceLow})
	p, err := uc.RequestSuggestion(session.ID, domain.SuggestPriority, "")
	if err != nil {
		t.Fatalf("RequestSuggestion: %v", err)
	}
	saves := store.saves
	p.Cancel()
	close(sugg.release)

	if out := awaitOutcome(t, p); out.Status != OutcomeDiscarded {
		t.Fatalf("outcome = %+v, want discarded", out)
	}
	if got, _ := uc.Get(created.ID); got.Importance != domain.ImportanceLow {
		t.Fatalf("canceled suggestion applied, importance = %q", got.Importance)
	}
	if store.saves != saves {
		t.Fatalf("canceled suggestion must not save")
	}
}

func TestRequestSuggestion_Errors(t *testing.T) {
	uc := newBoard(t, &memStore{}, &fakeSuggester{})
	_, session := openTask(t, uc, domain.TaskInput{Title: "x"})

	if _, err := uc.RequestSuggestion("nope", domain.SuggestPriority, ""); !errors.Is(err, domain.ErrEditSessionNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := uc.RequestSuggestion(session.ID, "translate", ""); !errors.Is(err, domain.ErrUnknownSuggestion) {
		t.Fatalf("err = %v", err)
	}
	if _, err := uc.OpenEdit("missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("err = %v", err)
	}

	offline := newBoard(t, &memStore{}, nil)
	if _, err := offline.RequestSuggestion(session.ID, domain.SuggestPriority, ""); !errors.Is(err, domain.ErrSuggestionsDisabled) {
		t.Fatalf("err = %v", err)
	}
}

func TestSuggestPriority_Stateless(t *testing.T) {
	sugg := &fakeSuggester{label: "HIGH "}
	uc := newBoard(t, &memStore{}, sugg)

	got, err := uc.SuggestPriority(context.Background(), domain.PriorityQuery{Title: "Essay"})
	if err != nil {
		t.Fatalf("SuggestPriority: %v", err)
	}
	if got != domain.ImportanceHigh {
		t.Fatalf("got %q, want high", got)
	}
	if !sugg.priority[0].Now.Equal(refNow) {
		t.Fatalf("query should default Now to the board clock")
	}

	sugg.label = "whatever"
	if got, _ := uc.SuggestPriority(context.Background(), domain.PriorityQuery{Title: "Essay"}); got != domain.ImportanceMedium {
		t.Fatalf("got %q, want medium", got)
	}
	if len(uc.List()) != 0 {
		t.Fatalf("stateless suggestion must not touch the board")
	}
}

func TestSuggestRewrite(t *testing.T) {
	uc := newBoard(t, &memStore{}, &fakeSuggester{rewrite: " Tidy title "})
	out, err := uc.SuggestRewrite(context.Background(), domain.RewriteQuery{Action: domain.SuggestOptimizeTitle, Title: "tidy"})
	if err != nil || out != "Tidy title" {
		t.Fatalf("out = %q, err = %v", out, err)
	}
	if _, err := uc.SuggestRewrite(context.Background(), domain.RewriteQuery{Action: domain.SuggestPriority}); !errors.Is(err, domain.ErrUnknownSuggestion) {
		t.Fatalf("err = %v", err)
	}
}

package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fastygo/taskwise/domain"
)

var refNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type memStore struct {
	mu      sync.Mutex
	saved   []domain.Task
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) Save(ctx context.Context, tasks []domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.saved = append([]domain.Task(nil), tasks...)
	return nil
}

func (m *memStore) Load(ctx context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]domain.Task(nil), m.saved...), nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) snapshot() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Task(nil), m.saved...)
}

func (m *memStore) setSaveErr(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

func newBoard(t *testing.T, store *memStore, suggester *fakeSuggester) *UseCase {
	t.Helper()
	var uc *UseCase
	if suggester == nil {
		uc = New(store, nil, nil, WithClock(func() time.Time { return refNow }))
	} else {
		uc = New(store, suggester, nil, WithClock(func() time.Time { return refNow }))
	}
	t.Cleanup(uc.Close)
	return uc
}

func due(days int) *time.Time {
	d := refNow.Add(time.Duration(days) * 24 * time.Hour)
	return &d
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func assertTitles(t *testing.T, got []domain.Task, want ...string) {
	t.Helper()
	g := titles(got)
	if len(g) != len(want) {
		t.Fatalf("titles = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("titles = %v, want %v", g, want)
		}
	}
}

func TestCreate_OrdersAndPersists(t *testing.T) {
	store := &memStore{}
	uc := newBoard(t, store, nil)
	ctx := context.Background()

	if _, err := uc.Create(ctx, domain.TaskInput{Title: "Read chapter", Importance: domain.ImportanceLow}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	created, err := uc.Create(ctx, domain.TaskInput{Title: "Exam", Importance: domain.ImportanceCritical, DueDate: due(0)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Rank != 80+50+5 {
		t.Fatalf("rank = %d, want 135", created.Rank)
	}

	assertTitles(t, uc.List(), "Exam", "Read chapter")
	assertTitles(t, store.snapshot(), "Exam", "Read chapter")
	if store.saves != 2 {
		t.Fatalf("saves = %d, want 2", store.saves)
	}
}

func TestCreate_RejectsBlankTitle(t *testing.T) {
	store := &memStore{}
	uc := newBoard(t, store, nil)

	if _, err := uc.Create(context.Background(), domain.TaskInput{Title: "   "}); !errors.Is(err, domain.ErrBlankTitle) {
		t.Fatalf("err = %v, want ErrBlankTitle", err)
	}
	if len(uc.List()) != 0 || store.saves != 0 {
		t.Fatalf("invalid input must not change the board")
	}
}

func TestToggle_MovesCompletedLast(t *testing.T) {
	uc := newBoard(t, &memStore{}, nil)
	ctx := context.Background()

	top, _ := uc.Create(ctx, domain.TaskInput{Title: "top", Importance: domain.ImportanceCritical})
	_, _ = uc.Create(ctx, domain.TaskInput{Title: "bottom"})

	toggled, err := uc.Toggle(ctx, top.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !toggled.Completed {
		t.Fatalf("task should be completed")
	}
	assertTitles(t, uc.List(), "bottom", "top")

	if _, err := uc.Toggle(ctx, "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestUpdate_PreservesIdentity(t *testing.T) {
	uc := newBoard(t, &memStore{}, nil)
	ctx := context.Background()

	orig, _ := uc.Create(ctx, domain.TaskInput{Title: "draft"})
	updated, err := uc.Update(ctx, orig.ID, domain.TaskInput{Title: "final", Importance: domain.ImportanceHigh})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != orig.ID || !updated.CreatedAt.Equal(orig.CreatedAt) {
		t.Fatalf("identity changed: %+v", updated)
	}
	if updated.Rank != 35+5 {
		t.Fatalf("rank = %d, want 40", updated.Rank)
	}
	if _, err := uc.Update(ctx, "missing", domain.TaskInput{Title: "x"}); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := uc.Update(ctx, orig.ID, domain.TaskInput{Title: ""}); !errors.Is(err, domain.ErrBlankTitle) {
		t.Fatalf("err = %v", err)
	}
}

func TestDelete_UnknownIDIsNoop(t *testing.T) {
	store := &memStore{}
	uc := newBoard(t, store, nil)
	ctx := context.Background()

	_, _ = uc.Create(ctx, domain.TaskInput{Title: "keep"})
	saves := store.saves
	if err := uc.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.saves != saves {
		t.Fatalf("no-op delete should not save")
	}
	assertTitles(t, uc.List(), "keep")
}

func TestLoad_FailureStartsEmpty(t *testing.T) {
	store := &memStore{loadErr: errors.New("corrupt")}
	uc := newBoard(t, store, nil)

	tasks, err := uc.Load(context.Background())
	if err == nil {
		t.Fatalf("expected load error to be reported")
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("tasks = %v, want empty", tasks)
	}
}

func TestLoad_RecomputesStoredRanks(t *testing.T) {
	store := &memStore{saved: []domain.Task{
		{ID: "a", Title: "stale", Importance: domain.ImportanceNone, CreatedAt: refNow.Add(-72 * time.Hour), Rank: 999},
		{ID: "b", Title: "urgent", Importance: domain.ImportanceHigh, DueDate: due(-1), CreatedAt: refNow.Add(-72 * time.Hour)},
	}}
	uc := newBoard(t, store, nil)

	tasks, err := uc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertTitles(t, tasks, "urgent", "stale")
	if tasks[1].Rank != 0 {
		t.Fatalf("stale rank = %d, want 0", tasks[1].Rank)
	}
}

func TestSaveFailure_MarksDirtyUntilFlush(t *testing.T) {
	store := &memStore{saveErr: errors.New("disk full")}
	uc := newBoard(t, store, nil)
	ctx := context.Background()

	created, err := uc.Create(ctx, domain.TaskInput{Title: "survives"})
	if err != nil {
		t.Fatalf("Create should succeed in memory: %v", err)
	}
	if !uc.Dirty() {
		t.Fatalf("board should be dirty after failed save")
	}
	if err := uc.Flush(ctx); err == nil {
		t.Fatalf("Flush should report the store error")
	}

	store.setSaveErr(nil)
	if err := uc.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if uc.Dirty() {
		t.Fatalf("board should be clean after flush")
	}
	saved := store.snapshot()
	if len(saved) != 1 || saved[0].ID != created.ID {
		t.Fatalf("saved = %+v", saved)
	}
	if err := uc.Flush(ctx); err != nil || store.saves != 1 {
		t.Fatalf("clean flush should not save again (saves=%d, err=%v)", store.saves, err)
	}
}

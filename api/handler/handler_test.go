package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/taskwise/domain"
	"github.com/fastygo/taskwise/internal/infrastructure/monitor"
	taskUC "github.com/fastygo/taskwise/usecase/task"
)

var refNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type memStore struct {
	mu    sync.Mutex
	tasks []domain.Task
}

func (m *memStore) Save(ctx context.Context, tasks []domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append([]domain.Task(nil), tasks...)
	return nil
}

func (m *memStore) Load(ctx context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Task(nil), m.tasks...), nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

type stubSuggester struct {
	label string
	text  string
	err   error
}

func (s stubSuggester) SuggestPriority(ctx context.Context, q domain.PriorityQuery) (string, error) {
	return s.label, s.err
}

func (s stubSuggester) Rewrite(ctx context.Context, q domain.RewriteQuery) (string, error) {
	return s.text, s.err
}

type memCreds struct {
	key string
}

func (m *memCreds) APIKey(ctx context.Context) (string, error) {
	if m.key == "" {
		return "", domain.ErrCredentialMissing
	}
	return m.key, nil
}

func (m *memCreds) SetAPIKey(ctx context.Context, key string) error {
	if key == "" {
		return domain.NewError(domain.ErrCodeInvalid, "api key must not be blank")
	}
	m.key = key
	return nil
}

func (m *memCreds) ClearAPIKey(ctx context.Context) error {
	m.key = ""
	return nil
}

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  interface{}     `json:"error"`
	Meta   json.RawMessage `json:"meta"`
}

func newUseCase(t *testing.T, s stubSuggester) *taskUC.UseCase {
	t.Helper()
	uc := taskUC.New(&memStore{}, s, nil, taskUC.WithClock(func() time.Time { return refNow }))
	t.Cleanup(uc.Close)
	return uc
}

func call(t *testing.T, h fasthttp.RequestHandler, body string, params map[string]string, query string) (int, envelope) {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/test?" + query)
	if body != "" {
		ctx.Request.Header.SetMethod(fasthttp.MethodPost)
		ctx.Request.SetBodyString(body)
	}
	for k, v := range params {
		ctx.SetUserValue(k, v)
	}
	h(&ctx)

	var env envelope
	if len(ctx.Response.Body()) > 0 {
		if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
			t.Fatalf("decode response %q: %v", ctx.Response.Body(), err)
		}
	}
	return ctx.Response.StatusCode(), env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func TestTaskHandler_CRUD(t *testing.T) {
	h := NewTaskHandler(newUseCase(t, stubSuggester{}), nil, nil)

	status, env := call(t, h.CreateTask, `{"title":"Read","importance":"low"}`, nil, "")
	if status != http.StatusCreated {
		t.Fatalf("create status = %d (%+v)", status, env)
	}
	var low domain.Task
	decodeData(t, env, &low)

	status, env = call(t, h.CreateTask, `{"title":"Exam","importance":"critical","dueDate":"2026-03-10T12:00:00Z"}`, nil, "")
	if status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	var exam domain.Task
	decodeData(t, env, &exam)
	if exam.Rank != 135 {
		t.Fatalf("rank = %d, want 135", exam.Rank)
	}

	status, env = call(t, h.GetTasks, "", nil, "")
	var listed []domain.Task
	decodeData(t, env, &listed)
	if status != http.StatusOK || len(listed) != 2 || listed[0].ID != exam.ID {
		t.Fatalf("list = %d %+v", status, listed)
	}

	status, _ = call(t, h.ToggleTask, "", map[string]string{"id": exam.ID}, "")
	if status != http.StatusOK {
		t.Fatalf("toggle status = %d", status)
	}
	_, env = call(t, h.GetTasks, "", nil, "status=active")
	decodeData(t, env, &listed)
	if len(listed) != 1 || listed[0].ID != low.ID {
		t.Fatalf("active = %+v", listed)
	}

	status, env = call(t, h.UpdateTask, `{"title":"Read more","importance":"medium"}`, map[string]string{"id": low.ID}, "")
	var updated domain.Task
	decodeData(t, env, &updated)
	if status != http.StatusOK || updated.Title != "Read more" || updated.ID != low.ID {
		t.Fatalf("update = %d %+v", status, updated)
	}

	status, _ = call(t, h.DeleteTask, "", map[string]string{"id": low.ID}, "")
	if status != http.StatusNoContent {
		t.Fatalf("delete status = %d", status)
	}
	status, env = call(t, h.GetTask, "", map[string]string{"id": low.ID}, "")
	if status != http.StatusNotFound || env.Code != string(domain.ErrCodeNotFound) {
		t.Fatalf("get deleted = %d %s", status, env.Code)
	}
}

func TestTaskHandler_Validation(t *testing.T) {
	h := NewTaskHandler(newUseCase(t, stubSuggester{}), nil, nil)

	cases := []struct {
		name string
		body string
	}{
		{"blank title", `{"title":"  "}`},
		{"bad importance", `{"title":"x","importance":"urgent"}`},
		{"bad date", `{"title":"x","dueDate":"soon"}`},
		{"not json", `{`},
	}
	for _, tc := range cases {
		status, env := call(t, h.CreateTask, tc.body, nil, "")
		if status != http.StatusBadRequest || env.Code != string(domain.ErrCodeInvalid) {
			t.Fatalf("%s: status = %d code = %s", tc.name, status, env.Code)
		}
	}
	if status, _ := call(t, h.UpdateTask, `{"title":"x"}`, nil, ""); status != http.StatusBadRequest {
		t.Fatalf("missing id: status = %d", status)
	}
	if status, _ := call(t, h.GetTasks, "", nil, "status=archived"); status != http.StatusBadRequest {
		t.Fatalf("bad filter: status = %d", status)
	}
}

func TestEditHandler_SuggestAndWait(t *testing.T) {
	uc := newUseCase(t, stubSuggester{label: "urgent"})
	created, err := uc.Create(context.Background(), domain.TaskInput{Title: "Essay", Importance: domain.ImportanceLow})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h := NewEditHandler(uc, nil, nil)

	status, env := call(t, h.Open, "", map[string]string{"id": created.ID}, "")
	if status != http.StatusCreated {
		t.Fatalf("open status = %d", status)
	}
	var session taskUC.EditSession
	decodeData(t, env, &session)

	status, env = call(t, h.Suggest, `{"kind":"priority"}`, map[string]string{"session": session.ID}, "wait=true")
	if status != http.StatusOK {
		t.Fatalf("suggest status = %d (%+v)", status, env)
	}
	var outcome taskUC.Outcome
	decodeData(t, env, &outcome)
	if outcome.Status != taskUC.OutcomeApplied || outcome.Task == nil || outcome.Task.Importance != domain.ImportanceMedium {
		t.Fatalf("outcome = %+v", outcome)
	}

	status, env = call(t, h.Suggest, `{"kind":"translate"}`, map[string]string{"session": session.ID}, "")
	if status != http.StatusBadRequest {
		t.Fatalf("unknown kind status = %d", status)
	}

	if status, _ := call(t, h.Close, "", map[string]string{"session": session.ID}, ""); status != http.StatusNoContent {
		t.Fatalf("close status = %d", status)
	}
	if status, _ := call(t, h.Get, "", map[string]string{"session": session.ID}, ""); status != http.StatusNotFound {
		t.Fatalf("closed session status = %d", status)
	}
}

func TestEditHandler_FailedSuggestion(t *testing.T) {
	uc := newUseCase(t, stubSuggester{err: domain.ErrCredentialMissing})
	created, _ := uc.Create(context.Background(), domain.TaskInput{Title: "Essay"})
	session, _ := uc.OpenEdit(created.ID)
	h := NewEditHandler(uc, nil, nil)

	status, env := call(t, h.Suggest, `{"kind":"optimize-title"}`, map[string]string{"session": session.ID}, "wait=true")
	if status != http.StatusPreconditionRequired || env.Code != string(domain.ErrCodeCredentialMissing) {
		t.Fatalf("status = %d code = %s", status, env.Code)
	}
}

func TestSuggestionHandler(t *testing.T) {
	h := NewSuggestionHandler(newUseCase(t, stubSuggester{label: "critical", text: "Essay draft"}), nil, nil)

	status, env := call(t, h.Priority, `{"title":"Final exam","dueDate":"2026-03-11"}`, nil, "")
	var pr struct {
		Importance string `json:"importance"`
	}
	decodeData(t, env, &pr)
	if status != http.StatusOK || pr.Importance != "critical" {
		t.Fatalf("priority = %d %+v", status, pr)
	}

	status, env = call(t, h.Rewrite, `{"action":"optimize-title","title":"essay drft"}`, nil, "")
	var rr struct {
		Text string `json:"text"`
	}
	decodeData(t, env, &rr)
	if status != http.StatusOK || rr.Text != "Essay draft" {
		t.Fatalf("rewrite = %d %+v", status, rr)
	}

	if status, _ := call(t, h.Priority, `{"title":""}`, nil, ""); status != http.StatusBadRequest {
		t.Fatalf("blank title status = %d", status)
	}
}

func TestSuggestionHandler_UpstreamError(t *testing.T) {
	upstream := domain.WrapError(domain.ErrCodeUpstream, "gemini request failed", errors.New("503"))
	h := NewSuggestionHandler(newUseCase(t, stubSuggester{err: upstream}), nil, nil)

	status, env := call(t, h.Priority, `{"title":"x"}`, nil, "")
	if status != http.StatusBadGateway || env.Code != string(domain.ErrCodeUpstream) {
		t.Fatalf("status = %d code = %s", status, env.Code)
	}
}

func TestSettingsHandler(t *testing.T) {
	creds := &memCreds{}
	h := NewSettingsHandler(creds, nil, nil)

	var cs struct {
		Configured bool `json:"configured"`
	}
	_, env := call(t, h.GetCredential, "", nil, "")
	decodeData(t, env, &cs)
	if cs.Configured {
		t.Fatalf("credential should start unconfigured")
	}

	if status, _ := call(t, h.PutCredential, `{"apiKey":"k-1"}`, nil, ""); status != http.StatusOK {
		t.Fatalf("put status = %d", status)
	}
	if creds.key != "k-1" {
		t.Fatalf("key = %q", creds.key)
	}
	status, env := call(t, h.GetCredential, "", nil, "")
	decodeData(t, env, &cs)
	if status != http.StatusOK || !cs.Configured {
		t.Fatalf("get after put = %d %+v", status, cs)
	}
	if status, _ := call(t, h.PutCredential, `{"apiKey":""}`, nil, ""); status != http.StatusBadRequest {
		t.Fatalf("blank key status = %d", status)
	}
	if status, _ := call(t, h.DeleteCredential, "", nil, ""); status != http.StatusNoContent || creds.key != "" {
		t.Fatalf("delete status = %d key = %q", status, creds.key)
	}
}

type fixedStatus monitor.Status

func (f fixedStatus) GetStatus() monitor.Status { return monitor.Status(f) }

func TestHealthHandler(t *testing.T) {
	healthy := fixedStatus{Components: map[string]monitor.ComponentStatus{
		"store": {Online: true, Required: true},
		"redis": {Online: false, Required: false, Error: "disabled"},
	}}
	h := NewHealthHandler(healthy, nil, nil, nil)
	if status, env := call(t, h.Check, "", nil, ""); status != http.StatusOK || env.Status != "success" {
		t.Fatalf("optional component must not degrade health: %d", status)
	}

	degraded := fixedStatus{Components: map[string]monitor.ComponentStatus{
		"store": {Online: false, Required: true, Error: "closed"},
	}}
	h = NewHealthHandler(degraded, nil, nil, nil)
	if status, env := call(t, h.Check, "", nil, ""); status != http.StatusServiceUnavailable || env.Code != "DEGRADED" {
		t.Fatalf("status = %d code = %s", status, env.Code)
	}
}

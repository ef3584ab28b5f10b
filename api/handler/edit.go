package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskwise/api/transport"
	"github.com/fastygo/taskwise/domain"
	"github.com/fastygo/taskwise/pkg/httpcontext"
	taskUC "github.com/fastygo/taskwise/usecase/task"
)

// EditHandler exposes edit sessions and the suggestions requested within them.
type EditHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewEditHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *EditHandler {
	return &EditHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Open edit session
// @Tags edits
// @Router /api/v1/tasks/{id}/edits [post]
func (h *EditHandler) Open(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "id")
	if !ok {
		return
	}
	session, err := h.uc.OpenEdit(id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, session)
}

// @Summary Edit session state, including the last suggestion outcome
// @Tags edits
// @Router /api/v1/edits/{session} [get]
func (h *EditHandler) Get(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "session")
	if !ok {
		return
	}
	session, err := h.uc.Edit(id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, session)
}

// @Summary Close edit session
// @Tags edits
// @Router /api/v1/edits/{session} [delete]
func (h *EditHandler) Close(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "session")
	if !ok {
		return
	}
	if err := h.uc.CloseEdit(id); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Request a suggestion
// @Description Answers 202 with a pending outcome; with ?wait=true blocks until resolved.
// @Tags edits
// @Router /api/v1/edits/{session}/suggestions [post]
func (h *EditHandler) Suggest(ctx *fasthttp.RequestCtx) {
	id, ok := h.pathParam(ctx, "session")
	if !ok {
		return
	}
	var req transport.SuggestionRequest
	if !h.decode(ctx, &req) {
		return
	}
	kind, err := domain.ParseSuggestionKind(req.Kind)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	pending, err := h.uc.RequestSuggestion(id, kind, req.Context)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if !ctx.QueryArgs().GetBool("wait") {
		h.respondSuccess(ctx, http.StatusAccepted, pending.Outcome())
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	select {
	case <-pending.Done():
	case <-stdCtx.Done():
		h.respondSuccess(ctx, http.StatusAccepted, pending.Outcome())
		return
	}

	outcome := pending.Outcome()
	if outcome.Status == taskUC.OutcomeFailed {
		status, code := mapError(outcome.Err())
		h.respondJSON(ctx, status, transport.NewError(code, outcome.Error, outcome))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, outcome)
}

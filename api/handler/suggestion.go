package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskwise/api/transport"
	"github.com/fastygo/taskwise/pkg/httpcontext"
	taskUC "github.com/fastygo/taskwise/usecase/task"
)

// SuggestionHandler serves the new-task form, where no task exists yet.
type SuggestionHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewSuggestionHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Suggest importance for a draft task
// @Tags suggestions
// @Router /api/v1/suggestions/priority [post]
func (h *SuggestionHandler) Priority(ctx *fasthttp.RequestCtx) {
	var req transport.PriorityRequest
	if !h.decode(ctx, &req) {
		return
	}
	q, err := req.Query()
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	imp, err := h.uc.SuggestPriority(stdCtx, q)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.PriorityResponse{Importance: string(imp)})
}

// @Summary Rewrite a draft title or description
// @Tags suggestions
// @Router /api/v1/suggestions/rewrite [post]
func (h *SuggestionHandler) Rewrite(ctx *fasthttp.RequestCtx) {
	var req transport.RewriteRequest
	if !h.decode(ctx, &req) {
		return
	}
	q, err := req.Query()
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	text, err := h.uc.SuggestRewrite(stdCtx, q)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.RewriteResponse{Action: string(q.Action), Text: text})
}

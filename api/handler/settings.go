package handler

import (
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskwise/api/transport"
	"github.com/fastygo/taskwise/domain"
	"github.com/fastygo/taskwise/pkg/httpcontext"
	"github.com/fastygo/taskwise/repository"
)

// SettingsHandler manages the AI credential. The key itself is never returned.
type SettingsHandler struct {
	baseHandler
	creds repository.CredentialStore
}

func NewSettingsHandler(creds repository.CredentialStore, adapter *httpcontext.Adapter, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		creds:       creds,
	}
}

// @Summary Credential status
// @Tags settings
// @Router /api/v1/settings/credential [get]
func (h *SettingsHandler) GetCredential(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	_, err := h.creds.APIKey(stdCtx)
	if err != nil && !errors.Is(err, domain.ErrCredentialMissing) {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.CredentialStatus{Configured: err == nil})
}

// @Summary Store credential
// @Tags settings
// @Router /api/v1/settings/credential [put]
func (h *SettingsHandler) PutCredential(ctx *fasthttp.RequestCtx) {
	var req transport.CredentialRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.creds.SetAPIKey(stdCtx, req.APIKey); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.CredentialStatus{Configured: true})
}

// @Summary Clear credential
// @Tags settings
// @Router /api/v1/settings/credential [delete]
func (h *SettingsHandler) DeleteCredential(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.creds.ClearAPIKey(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

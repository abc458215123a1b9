package handlers

import (
	"net/http"

	"github.com/ledgergate/ledgergate/internal/httpx"
)

type FlushHandler struct {
	Lists ListSource
}

func NewFlushHandler(src ListSource) *FlushHandler {
	return &FlushHandler{Lists: src}
}

// ServeHTTP drops the cached lists. Unlike every other cache interaction this
// one reports failure, because the delete is the whole point of the call.
func (h *FlushHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Lists.Flush(r.Context()); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to flush list cache", httpx.SafeErrMsg(err))
		return
	}
	httpx.WriteOK(w, "list cache flushed")
}

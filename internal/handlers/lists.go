package handlers

import (
	"context"
	"net/http"

	"github.com/ledgergate/ledgergate/internal/httpx"
	"github.com/ledgergate/ledgergate/internal/lists"
)

// ListSource is what the lists endpoints need from the list cache.
type ListSource interface {
	Get(ctx context.Context) (lists.Payload, error)
	Flush(ctx context.Context) error
}

type ListsHandler struct {
	Lists ListSource
}

func NewListsHandler(src ListSource) *ListsHandler {
	return &ListsHandler{Lists: src}
}

func (h *ListsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := h.Lists.Get(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load lists", httpx.SafeErrMsg(err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

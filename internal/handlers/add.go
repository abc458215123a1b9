package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ledgergate/ledgergate/internal/httpx"
	"github.com/ledgergate/ledgergate/internal/ledger"
)

// RowAppender is what /add needs from the spreadsheet gateway.
type RowAppender interface {
	AppendRow(ctx context.Context, cells []any) error
}

type AddHandler struct {
	Sheet RowAppender
}

func NewAddHandler(sheet RowAppender) *AddHandler {
	return &AddHandler{Sheet: sheet}
}

// ServeHTTP records one transaction. The write path hard-fails on any
// backend error; a row either landed or it did not, and the client decides
// whether to retry.
func (h *AddHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var tx ledger.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body", httpx.SafeErrMsg(err))
		return
	}
	if err := tx.Validate(); err != nil {
		var ve *ledger.ValidationError
		if errors.As(err, &ve) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid request", ve.Error())
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, "invalid request", httpx.SafeErrMsg(err))
		return
	}

	if err := h.Sheet.AppendRow(r.Context(), tx.Cells()); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to record transaction", httpx.SafeErrMsg(err))
		return
	}
	httpx.WriteOK(w, "transaction recorded")
}

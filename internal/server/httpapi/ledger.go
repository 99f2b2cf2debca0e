package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/ledger"
)

// submitLedgerRecord appends a binding to the chain gateway. The response is
// a receipt with the transaction hash; a fileId that is already bound
// answers 409 and leaves the existing binding untouched.
func (h *Handler) submitLedgerRecord(w http.ResponseWriter, r *http.Request) {
	var rec ledger.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rec.FileID == "" || rec.Recipient == "" || rec.FileURL == "" {
		writeError(w, http.StatusBadRequest, "fileId, recipient and fileUrl are required")
		return
	}

	receipt, err := h.ledger.Submit(r.Context(), rec)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateRecord):
			writeError(w, http.StatusConflict, "file id already used")
		case errors.Is(err, common.ErrRejectedTransaction):
			writeError(w, http.StatusBadGateway, "transaction rejected")
		default:
			h.logger.Error(r.Context(), "ledger submission failed", "error", err.Error())
			writeError(w, http.StatusInternalServerError, "submission failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) lookupLedgerRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.ledger.Lookup(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		h.logger.Error(r.Context(), "ledger lookup failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swisscoin/ledger/internal/service"
)

func (h *handlers) handleCreateSettlement(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req settlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := service.CreateSettlementInput{
		ViewerID:       viewer,
		OtherID:        req.OtherID,
		CurrencyCode:   req.CurrencyCode,
		Note:           req.Note,
		GroupID:        req.GroupID,
		SubscriptionID: req.SubscriptionID,
	}
	if req.Amount != "" {
		amount, err := parseAmount("amount", req.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		in.Amount = &amount
	}
	if req.Date != nil {
		in.Date = *req.Date
	}

	st, err := h.settlements.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settlementDTO(st))
}

// handleSettleAll clears every outstanding balance the viewer has, one
// settlement per counterpart per currency, committed as one batch. The
// body is optional; it only carries a date or note for the records.
func (h *handlers) handleSettleAll(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req settleAllRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	in := service.SettleAllInput{ViewerID: viewer, Note: req.Note}
	if req.Date != nil {
		in.Date = *req.Date
	}

	sts, err := h.settlements.SettleAll(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settlementsDTO(sts))
}

func (h *handlers) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sts, err := h.settlements.List(r.Context(), q.Get("viewer"), q.Get("other"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementsDTO(sts))
}

func (h *handlers) handleGetSettlement(w http.ResponseWriter, r *http.Request) {
	st, err := h.settlements.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementDTO(st))
}

func (h *handlers) handleDeleteSettlement(w http.ResponseWriter, r *http.Request) {
	if err := h.settlements.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

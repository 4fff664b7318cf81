package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleHomeSummary serves the home-screen rollup: what the viewer is
// owed, what they owe, and who is behind each number. Served from the
// precomputed snapshot when one is fresh.
func (h *handlers) handleHomeSummary(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.balances.HomeSummary(r.Context(), viewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, homeSummaryDTO(summary))
}

func (h *handlers) handlePersonBalance(w http.ResponseWriter, r *http.Request) {
	viewer, err := viewerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	balance, err := h.balances.PersonBalance(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceDTO(balance))
}

func (h *handlers) handleGroupBalances(w http.ResponseWriter, r *http.Request) {
	members, err := h.balances.GroupBalances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memberBalancesDTO(members))
}

func (h *handlers) handleSubscriptionBalances(w http.ResponseWriter, r *http.Request) {
	members, err := h.balances.SubscriptionBalances(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memberBalancesDTO(members))
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *handlers) handleCreateParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.participants.Create(r.Context(), req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, participantDTO(p))
}

func (h *handlers) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	ps, err := h.participants.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]participantResponse, len(ps))
	for i, p := range ps {
		out[i] = participantDTO(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) handleGetParticipant(w http.ResponseWriter, r *http.Request) {
	p, err := h.participants.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participantDTO(p))
}

// handleDeleteParticipant refuses with a conflict while any transaction
// or settlement still references the participant.
func (h *handlers) handleDeleteParticipant(w http.ResponseWriter, r *http.Request) {
	if err := h.participants.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swisscoin/ledger/internal/service"
)

func (h *handlers) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	g, err := h.groups.Create(r.Context(), service.CreateGroupInput{
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, groupDTO(g))
}

func (h *handlers) handleListGroups(w http.ResponseWriter, r *http.Request) {
	gs, err := h.groups.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]groupResponse, len(gs))
	for i, g := range gs {
		out[i] = groupDTO(g)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.groups.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groupDTO(g))
}

func (h *handlers) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

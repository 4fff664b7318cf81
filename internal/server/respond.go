package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/swisscoin/ledger/internal/ledger"
	"github.com/swisscoin/ledger/internal/service"
	"github.com/swisscoin/ledger/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps the engine's sentinel errors onto status codes. Bad
// inputs read as 400, missing records as 404, asking the impossible
// (settling a settled pair, deleting a referenced participant) as 409.
// Anything unrecognized is a 500 with the detail kept out of the body.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, ledger.ErrInvalidSplitInput),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrNoOutstandingBalance),
		errors.Is(err, storage.ErrInUse):
		status = http.StatusConflict
	default:
		slog.Error("request handling failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

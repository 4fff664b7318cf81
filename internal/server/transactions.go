package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swisscoin/ledger/internal/ledger"
	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/service"
)

func (h *handlers) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in, err := transactionInput(req)
	if err != nil {
		writeError(w, err)
		return
	}

	txn, clamped, err := h.transactions.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := transactionDTO(txn)
	resp.ClampedParticipants = clamped
	writeJSON(w, http.StatusCreated, resp)
}

func transactionInput(req transactionRequest) (service.CreateTransactionInput, error) {
	total, err := parseAmount("total_amount", req.TotalAmount)
	if err != nil {
		return service.CreateTransactionInput{}, err
	}
	inputs, err := parseInputs(req.SplitInputs)
	if err != nil {
		return service.CreateTransactionInput{}, err
	}
	payers, err := parsePayers(req.Payers)
	if err != nil {
		return service.CreateTransactionInput{}, err
	}
	in := service.CreateTransactionInput{
		Title:        req.Title,
		TotalAmount:  total,
		CurrencyCode: req.CurrencyCode,
		SplitMethod:  models.SplitMethod(req.SplitMethod),
		Participants: req.Participants,
		SplitInputs:  inputs,
		Payers:       payers,
		GroupID:      req.GroupID,
		Note:         req.Note,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	return in, nil
}

func (h *handlers) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		txns []*models.Transaction
		err  error
	)
	if groupID := r.URL.Query().Get("group"); groupID != "" {
		txns, err = h.transactions.ListByGroup(r.Context(), groupID)
	} else {
		txns, err = h.transactions.List(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionsDTO(txns))
}

func (h *handlers) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.transactions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionDTO(txn))
}

func (h *handlers) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := service.UpdateTransactionInput{
		Title:   req.Title,
		Date:    req.Date,
		GroupID: req.GroupID,
		Note:    req.Note,
	}
	if req.TotalAmount != nil {
		total, err := parseAmount("total_amount", *req.TotalAmount)
		if err != nil {
			writeError(w, err)
			return
		}
		in.TotalAmount = &total
	}
	if len(req.Payers) > 0 {
		payers, err := parsePayers(req.Payers)
		if err != nil {
			writeError(w, err)
			return
		}
		in.Payers = payers
	}

	txn, err := h.transactions.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionDTO(txn))
}

func (h *handlers) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.transactions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePreviewSplits runs the calculator without touching storage, so
// the entry screen can show live shares while the user types.
func (h *handlers) handlePreviewSplits(w http.ResponseWriter, r *http.Request) {
	var req splitPreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	total, err := parseAmount("total_amount", req.TotalAmount)
	if err != nil {
		writeError(w, err)
		return
	}
	inputs, err := parseInputs(req.SplitInputs)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.transactions.PreviewSplits(total, req.CurrencyCode, models.SplitMethod(req.SplitMethod), req.Participants, inputs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, splitPreviewDTO(result))
}

func splitPreviewDTO(result ledger.SplitResult) splitPreviewResponse {
	splits := make([]splitDTO, len(result.Shares))
	for i, s := range result.Shares {
		splits[i] = splitDTO{ParticipantID: s.ParticipantID, Amount: s.Amount.String()}
		if !s.RawInput.IsZero() {
			splits[i].RawInput = s.RawInput.String()
		}
	}
	return splitPreviewResponse{Splits: splits, ClampedParticipants: result.Clamped}
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swisscoin/ledger/internal/service"
)

func (h *handlers) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	sub, err := h.subscriptions.Create(r.Context(), service.CreateSubscriptionInput{
		Name:         req.Name,
		Amount:       amount,
		CurrencyCode: req.CurrencyCode,
		MemberIDs:    req.MemberIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subscriptionDTO(sub))
}

func (h *handlers) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptions.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]subscriptionResponse, len(subs))
	for i, sub := range subs {
		out[i] = subscriptionDTO(sub)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subscriptionDTO(sub))
}

func (h *handlers) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := h.subscriptions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRecordPayment logs one billing cycle paid by a member. An
// omitted amount bills the subscription's recurring price.
func (h *handlers) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := service.RecordPaymentInput{
		SubscriptionID: chi.URLParam(r, "id"),
		PayerID:        req.PayerID,
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

	payment, err := h.subscriptions.RecordPayment(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentDTO(payment))
}

func (h *handlers) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.subscriptions.ListPayments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]paymentResponse, len(payments))
	for i, p := range payments {
		out[i] = paymentDTO(p)
	}
	writeJSON(w, http.StatusOK, out)
}

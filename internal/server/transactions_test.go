package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransactionOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "alice", "bob", "carol")

	resp, raw := env.do(t, http.MethodPost, "/v1/transactions", "", map[string]any{
		"title":         "Dinner",
		"total_amount":  "90",
		"currency_code": "USD",
		"split_method":  "equal",
		"participants":  []string{"alice", "bob", "carol"},
		"payers":        []map[string]any{{"participant_id": "alice"}},
		"note":          "trattoria",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)

	got := decodeBody[transactionResponse](t, raw)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Dinner", got.Title)
	assert.Equal(t, "USD", got.CurrencyCode)
	assert.Equal(t, "trattoria", got.Note)
	require.Len(t, got.Splits, 3)
	for _, s := range got.Splits {
		assertAmount(t, "30", s.Amount)
	}
	// The single payer with no amount is assigned the whole total.
	require.Len(t, got.Payers, 1)
	assertAmount(t, "90", got.Payers[0].Amount)
	assert.Empty(t, got.ClampedParticipants)

	resp, raw = env.do(t, http.MethodGet, "/v1/transactions/"+got.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeBody[transactionResponse](t, raw)
	assert.Equal(t, got.ID, fetched.ID)
	assert.False(t, fetched.Date.IsZero())
}

func TestCreateTransactionReportsClamped(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "alice", "bob", "carol")

	resp, raw := env.do(t, http.MethodPost, "/v1/transactions", "", map[string]any{
		"title":         "Groceries",
		"total_amount":  "30",
		"currency_code": "USD",
		"split_method":  "adjustment",
		"participants":  []string{"alice", "bob", "carol"},
		"split_inputs":  map[string]string{"alice": "-15"},
		"payers":        []map[string]any{{"participant_id": "bob"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)

	got := decodeBody[transactionResponse](t, raw)
	assert.Equal(t, []string{"alice"}, got.ClampedParticipants)
}

func TestCreateTransactionValidationOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "alice", "bob")

	base := func() map[string]any {
		return map[string]any{
			"title":         "Lunch",
			"total_amount":  "20",
			"currency_code": "USD",
			"split_method":  "equal",
			"participants":  []string{"alice", "bob"},
			"payers":        []map[string]any{{"participant_id": "alice"}},
		}
	}

	tests := []struct {
		name       string
		mutate     func(map[string]any)
		wantStatus int
	}{
		{
			name:       "missing title",
			mutate:     func(m map[string]any) { delete(m, "title") },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad currency code",
			mutate:     func(m map[string]any) { m["currency_code"] = "DOLLARS" },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown split method",
			mutate:     func(m map[string]any) { m["split_method"] = "vibes" },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "amount not a number",
			mutate:     func(m map[string]any) { m["total_amount"] = "twenty" },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown participant",
			mutate:     func(m map[string]any) { m["participants"] = []string{"alice", "ghost"} },
			wantStatus: http.StatusNotFound,
		},
		{
			name: "payer sum mismatch",
			mutate: func(m map[string]any) {
				m["payers"] = []map[string]any{
					{"participant_id": "alice", "amount": "5"},
					{"participant_id": "bob", "amount": "5"},
				}
			},
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := base()
			tt.mutate(body)
			resp, raw := env.do(t, http.MethodPost, "/v1/transactions", "", body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, "body: %s", raw)
		})
	}
}

func TestPreviewSplitsOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	resp, raw := env.do(t, http.MethodPost, "/v1/splits/preview", "", map[string]any{
		"total_amount":  "200",
		"currency_code": "USD",
		"split_method":  "percentage",
		"participants":  []string{"alice", "bob"},
		"split_inputs":  map[string]string{"alice": "60", "bob": "40"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", raw)

	got := decodeBody[splitPreviewResponse](t, raw)
	require.Len(t, got.Splits, 2)
	assertAmount(t, "120", got.Splits[0].Amount)
	assertAmount(t, "80", got.Splits[1].Amount)

	// Preview never writes: the transaction list stays empty.
	resp, raw = env.do(t, http.MethodGet, "/v1/transactions", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]transactionResponse](t, raw))
}

func TestUpdateTransactionOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "alice", "bob")
	id := env.equalExpense(t, "Cinema", "alice", "30", "alice", "bob")

	resp, raw := env.do(t, http.MethodPatch, "/v1/transactions/"+id, "", map[string]any{
		"total_amount": "50",
		"title":        "Cinema and popcorn",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", raw)

	got := decodeBody[transactionResponse](t, raw)
	assert.Equal(t, "Cinema and popcorn", got.Title)
	assertAmount(t, "50", got.TotalAmount)
	require.Len(t, got.Splits, 2)
	assertAmount(t, "25", got.Splits[0].Amount)
	assertAmount(t, "25", got.Splits[1].Amount)

	resp, _ = env.do(t, http.MethodPatch, "/v1/transactions/missing", "", map[string]any{
		"title": "nope",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTransactionOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "alice", "bob")
	id := env.equalExpense(t, "Cab", "alice", "18", "alice", "bob")

	resp, _ := env.do(t, http.MethodDelete, "/v1/transactions/"+id, "", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/v1/transactions/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListTransactionsByGroup(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "alice", "bob")

	resp, raw := env.do(t, http.MethodPost, "/v1/groups", "", map[string]any{
		"name":       "Flat",
		"member_ids": []string{"alice", "bob"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)
	groupID := decodeBody[groupResponse](t, raw).ID

	resp, raw = env.do(t, http.MethodPost, "/v1/transactions", "", map[string]any{
		"title":         "Rent",
		"total_amount":  "1200",
		"currency_code": "USD",
		"split_method":  "equal",
		"participants":  []string{"alice", "bob"},
		"payers":        []map[string]any{{"participant_id": "alice"}},
		"group_id":      groupID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)
	env.equalExpense(t, "Coffee", "bob", "8", "alice", "bob")

	resp, raw = env.do(t, http.MethodGet, "/v1/transactions?group="+groupID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[[]transactionResponse](t, raw)
	require.Len(t, got, 1)
	assert.Equal(t, "Rent", got[0].Title)

	resp, raw = env.do(t, http.MethodGet, "/v1/transactions", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]transactionResponse](t, raw), 2)
}

package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonBalanceOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "alice", "bob")
	env.equalExpense(t, "Dinner", "alice", "30", "alice", "bob")

	resp, raw := env.do(t, http.MethodGet, "/v1/balances/person/bob", "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mine := decodeBody[balanceResponse](t, raw)
	require.Len(t, mine.Balances, 1)
	assert.Equal(t, "USD", mine.Balances[0].CurrencyCode)
	assertAmount(t, "15", mine.Balances[0].Amount)
	assert.False(t, mine.Settled)

	// The same pair from the other side is the mirror image.
	resp, raw = env.do(t, http.MethodGet, "/v1/balances/person/alice", "bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	theirs := decodeBody[balanceResponse](t, raw)
	require.Len(t, theirs.Balances, 1)
	assertAmount(t, "-15", theirs.Balances[0].Amount)

	resp, _ = env.do(t, http.MethodGet, "/v1/balances/person/ghost", "alice", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHomeSummaryOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "alice", "bob", "carol")
	env.equalExpense(t, "Dinner", "alice", "30", "alice", "bob")
	env.equalExpense(t, "Concert", "carol", "40", "alice", "carol")

	resp, raw := env.do(t, http.MethodGet, "/v1/balances/home", "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	summary := decodeBody[homeSummaryResponse](t, raw)
	require.Len(t, summary.OwedToYou, 1)
	assertAmount(t, "15", summary.OwedToYou[0].Amount)
	require.Len(t, summary.YouOwe, 1)
	assertAmount(t, "20", summary.YouOwe[0].Amount)
	require.Len(t, summary.Counterparts, 2)
	assert.Equal(t, "bob", summary.Counterparts[0].ParticipantID)
	assert.Equal(t, "carol", summary.Counterparts[1].ParticipantID)
}

func TestGroupBalancesOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "alice", "bob", "carol")

	resp, raw := env.do(t, http.MethodPost, "/v1/groups", "", map[string]any{
		"name":       "Flat",
		"member_ids": []string{"alice", "bob", "carol"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)
	groupID := decodeBody[groupResponse](t, raw).ID

	resp, raw = env.do(t, http.MethodPost, "/v1/transactions", "", map[string]any{
		"title":         "Rent",
		"total_amount":  "90",
		"currency_code": "USD",
		"split_method":  "equal",
		"participants":  []string{"alice", "bob", "carol"},
		"payers":        []map[string]any{{"participant_id": "alice"}},
		"group_id":      groupID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)

	// Untagged spending stays out of the group's numbers.
	env.equalExpense(t, "Coffee", "bob", "8", "alice", "bob")

	resp, raw = env.do(t, http.MethodGet, "/v1/groups/"+groupID+"/balances", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	members := decodeBody[[]memberBalanceDTO](t, raw)
	require.Len(t, members, 3)
	byID := make(map[string]memberBalanceDTO, len(members))
	for _, m := range members {
		byID[m.ParticipantID] = m
	}

	require.Len(t, byID["alice"].Balances, 1)
	assertAmount(t, "60", byID["alice"].Balances[0].Amount)
	require.Len(t, byID["alice"].TotalPaid, 1)
	assertAmount(t, "90", byID["alice"].TotalPaid[0].Amount)
	assertAmount(t, "-30", byID["bob"].Balances[0].Amount)
	assert.Empty(t, byID["bob"].TotalPaid)
	assertAmount(t, "-30", byID["carol"].Balances[0].Amount)

	resp, _ = env.do(t, http.MethodGet, "/v1/groups/missing/balances", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubscriptionFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "alice", "bob", "carol")

	resp, raw := env.do(t, http.MethodPost, "/v1/subscriptions", "", map[string]any{
		"name":          "Netflix",
		"amount":        "15",
		"currency_code": "USD",
		"member_ids":    []string{"alice", "bob", "carol"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)
	sub := decodeBody[subscriptionResponse](t, raw)
	assertAmount(t, "15", sub.Amount)

	// Two cycles paid by alice, at the subscription's own price.
	for i := 0; i < 2; i++ {
		resp, raw = env.do(t, http.MethodPost, "/v1/subscriptions/"+sub.ID+"/payments", "", map[string]any{
			"payer_id": "alice",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)
		payment := decodeBody[paymentResponse](t, raw)
		assertAmount(t, "15", payment.Amount)
		assert.Equal(t, "USD", payment.CurrencyCode)
	}

	resp, raw = env.do(t, http.MethodGet, "/v1/subscriptions/"+sub.ID+"/payments", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]paymentResponse](t, raw), 2)

	resp, raw = env.do(t, http.MethodGet, "/v1/subscriptions/"+sub.ID+"/balances", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	members := decodeBody[[]memberBalanceDTO](t, raw)
	require.Len(t, members, 3)
	byID := make(map[string]memberBalanceDTO, len(members))
	for _, m := range members {
		byID[m.ParticipantID] = m
	}

	assertAmount(t, "20", byID["alice"].Balances[0].Amount)
	assertAmount(t, "30", byID["alice"].TotalPaid[0].Amount)
	assertAmount(t, "-10", byID["bob"].Balances[0].Amount)
	assertAmount(t, "-10", byID["carol"].Balances[0].Amount)

	// Only members may pay.
	resp, raw = env.do(t, http.MethodPost, "/v1/subscriptions/"+sub.ID+"/payments", "", map[string]any{
		"payer_id": "ghost",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", raw)
}

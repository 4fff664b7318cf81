package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/storage/memory"
)

// fixture wires every service over a fresh in-memory store. The balance
// service doubles as the dirty-notifier for the others, as it does in
// the real wiring.
type fixture struct {
	store         *memory.Store
	participants  *ParticipantService
	groups        *GroupService
	subscriptions *SubscriptionService
	transactions  *TransactionService
	balances      *BalanceService
	settlements   *SettlementService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	balances := NewBalanceService(store, nil, time.Millisecond)
	return &fixture{
		store:         store,
		balances:      balances,
		participants:  NewParticipantService(store, balances),
		groups:        NewGroupService(store, balances),
		subscriptions: NewSubscriptionService(store, balances),
		transactions:  NewTransactionService(store, balances),
		settlements:   NewSettlementService(store, balances, balances),
	}
}

// seed creates participants whose ids double as display names.
func (f *fixture) seed(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		p := &models.Participant{ID: id, DisplayName: id}
		require.NoError(t, f.store.CreateParticipant(context.Background(), p))
	}
}

// expense records an equal-split USD expense paid in full by one payer.
func (f *fixture) expense(t *testing.T, title, payerID, total string, participantIDs ...string) *models.Transaction {
	t.Helper()
	txn, clamped, err := f.transactions.Create(context.Background(), CreateTransactionInput{
		Title:        title,
		TotalAmount:  dec(t, total),
		CurrencyCode: "USD",
		SplitMethod:  models.SplitEqual,
		Participants: participantIDs,
		Payers:       []models.PayerContribution{{ParticipantID: payerID}},
	})
	require.NoError(t, err)
	require.Empty(t, clamped)
	return txn
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

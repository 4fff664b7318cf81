package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swisscoin/ledger/internal/ledger"
	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/storage"
)

func TestCreateSettlementCapsAtOutstanding(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob")
	ctx := context.Background()

	// Alice fronts dinner; Bob's half is 42.50.
	f.expense(t, "Dinner", "alice", "85", "alice", "bob")

	amount := dec(t, "60")
	st, err := f.settlements.Create(ctx, CreateSettlementInput{
		ViewerID:     "bob",
		OtherID:      "alice",
		CurrencyCode: "USD",
		Amount:       &amount,
	})
	require.NoError(t, err)

	// Overpaying is capped, not rejected.
	assert.True(t, st.Amount.Equal(dec(t, "42.5")))
	assert.Equal(t, "bob", st.FromParticipantID)
	assert.Equal(t, "alice", st.ToParticipantID)
	assert.True(t, st.IsFullSettlement)
	assert.False(t, st.Date.IsZero())
	assert.NotEmpty(t, st.ID)

	bal, err := f.balances.PersonBalance(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, bal.IsSettled())

	// With the pair settled, another payment has nothing to apply to.
	_, err = f.settlements.Create(ctx, CreateSettlementInput{
		ViewerID:     "bob",
		OtherID:      "alice",
		CurrencyCode: "USD",
		Amount:       &amount,
	})
	assert.ErrorIs(t, err, ledger.ErrNoOutstandingBalance)
}

func TestCreateSettlementOmittedAmountSettlesFull(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob")
	ctx := context.Background()

	f.expense(t, "Dinner", "alice", "85", "alice", "bob")

	st, err := f.settlements.Create(ctx, CreateSettlementInput{
		ViewerID:     "bob",
		OtherID:      "alice",
		CurrencyCode: "USD",
	})
	require.NoError(t, err)
	assert.True(t, st.Amount.Equal(dec(t, "42.5")))
	assert.True(t, st.IsFullSettlement)
}

func TestCreateSettlementPartialPayment(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob")
	ctx := context.Background()

	f.expense(t, "Dinner", "alice", "85", "alice", "bob")

	amount := dec(t, "20")
	st, err := f.settlements.Create(ctx, CreateSettlementInput{
		ViewerID:     "bob",
		OtherID:      "alice",
		CurrencyCode: "USD",
		Amount:       &amount,
	})
	require.NoError(t, err)
	assert.True(t, st.Amount.Equal(dec(t, "20")))
	assert.False(t, st.IsFullSettlement)

	bal, err := f.balances.PersonBalance(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, bal.Get("USD").Equal(dec(t, "-22.5")))
}

func TestCreateSettlementRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob")
	ctx := context.Background()

	f.expense(t, "Dinner", "alice", "85", "alice", "bob")

	for _, raw := range []string{"0", "-5"} {
		amount := dec(t, raw)
		_, err := f.settlements.Create(ctx, CreateSettlementInput{
			ViewerID:     "bob",
			OtherID:      "alice",
			CurrencyCode: "USD",
			Amount:       &amount,
		})
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount, "amount %s", raw)
	}
}

func TestCreateSettlementValidation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob")
	ctx := context.Background()

	_, err := f.settlements.Create(ctx, CreateSettlementInput{
		ViewerID: "alice", OtherID: "alice", CurrencyCode: "USD",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.settlements.Create(ctx, CreateSettlementInput{
		ViewerID: "alice", OtherID: "bob",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.settlements.Create(ctx, CreateSettlementInput{
		ViewerID: "alice", OtherID: "ghost", CurrencyCode: "USD",
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.settlements.Create(ctx, CreateSettlementInput{
		ViewerID: "alice", OtherID: "bob", CurrencyCode: "USD", GroupID: "no-such-group",
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.settlements.Create(ctx, CreateSettlementInput{
		ViewerID: "alice", OtherID: "bob", CurrencyCode: "USD", SubscriptionID: "no-such-sub",
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSettlementDirectionFollowsDebt(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob")
	ctx := context.Background()

	// Bob owes Alice, but Alice initiates the settlement. The money still
	// flows from Bob to Alice.
	f.expense(t, "Dinner", "alice", "85", "alice", "bob")

	st, err := f.settlements.Create(ctx, CreateSettlementInput{
		ViewerID:     "alice",
		OtherID:      "bob",
		CurrencyCode: "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", st.FromParticipantID)
	assert.Equal(t, "alice", st.ToParticipantID)
}

func TestSettleAll(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob", "carol", "dave")
	ctx := context.Background()

	f.expense(t, "Brunch", "bob", "40", "alice", "bob")     // alice owes bob 20
	f.expense(t, "Museum", "carol", "60", "alice", "carol") // alice owes carol 30
	f.expense(t, "Cab", "alice", "50", "alice", "dave")     // dave owes alice 25

	batch, err := f.settlements.SettleAll(ctx, SettleAllInput{ViewerID: "alice"})
	require.NoError(t, err)
	require.Len(t, batch, 3)

	// One full settlement per counterpart, ordered by counterpart id.
	assert.Equal(t, "alice", batch[0].FromParticipantID)
	assert.Equal(t, "bob", batch[0].ToParticipantID)
	assert.True(t, batch[0].Amount.Equal(dec(t, "20")))

	assert.Equal(t, "alice", batch[1].FromParticipantID)
	assert.Equal(t, "carol", batch[1].ToParticipantID)
	assert.True(t, batch[1].Amount.Equal(dec(t, "30")))

	assert.Equal(t, "dave", batch[2].FromParticipantID)
	assert.Equal(t, "alice", batch[2].ToParticipantID)
	assert.True(t, batch[2].Amount.Equal(dec(t, "25")))

	for _, st := range batch {
		assert.True(t, st.IsFullSettlement)
		assert.False(t, st.Date.IsZero())
	}

	summary, err := f.balances.HomeSummary(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, summary.OwedToYou)
	assert.Empty(t, summary.YouOwe)
	assert.Empty(t, summary.Counterparts)

	_, err = f.settlements.SettleAll(ctx, SettleAllInput{ViewerID: "alice"})
	assert.ErrorIs(t, err, ledger.ErrNoOutstandingBalance)
}

func TestSettleAllMultiCurrency(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob")
	ctx := context.Background()

	f.expense(t, "Lunch", "alice", "20", "alice", "bob") // bob owes alice 10 USD

	_, _, err := f.transactions.Create(ctx, CreateTransactionInput{
		Title:        "Tapas",
		TotalAmount:  dec(t, "40"),
		CurrencyCode: "EUR",
		SplitMethod:  models.SplitEqual,
		Participants: []string{"alice", "bob"},
		Payers:       []models.PayerContribution{{ParticipantID: "bob"}},
	})
	require.NoError(t, err) // alice owes bob 20 EUR

	batch, err := f.settlements.SettleAll(ctx, SettleAllInput{ViewerID: "alice"})
	require.NoError(t, err)
	require.Len(t, batch, 2)

	// Currencies never net against each other: one settlement each way.
	assert.Equal(t, "EUR", batch[0].CurrencyCode)
	assert.Equal(t, "alice", batch[0].FromParticipantID)
	assert.True(t, batch[0].Amount.Equal(dec(t, "20")))

	assert.Equal(t, "USD", batch[1].CurrencyCode)
	assert.Equal(t, "bob", batch[1].FromParticipantID)
	assert.True(t, batch[1].Amount.Equal(dec(t, "10")))

	summary, err := f.balances.HomeSummary(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, summary.Counterparts)
}

func TestSettleAllNothingOutstanding(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob")

	_, err := f.settlements.SettleAll(context.Background(), SettleAllInput{ViewerID: "alice"})
	assert.ErrorIs(t, err, ledger.ErrNoOutstandingBalance)
}

func TestSettlementListFilters(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob", "carol", "dave")
	ctx := context.Background()

	f.expense(t, "Brunch", "bob", "40", "alice", "bob")
	f.expense(t, "Museum", "carol", "60", "alice", "carol")
	f.expense(t, "Cab", "alice", "50", "alice", "dave")

	_, err := f.settlements.SettleAll(ctx, SettleAllInput{ViewerID: "alice"})
	require.NoError(t, err)

	all, err := f.settlements.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	bobs, err := f.settlements.List(ctx, "bob", "")
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, "bob", bobs[0].ToParticipantID)

	pair, err := f.settlements.List(ctx, "alice", "carol")
	require.NoError(t, err)
	require.Len(t, pair, 1)
	assert.Equal(t, "carol", pair[0].ToParticipantID)
}

func TestDeleteSettlementResurrectsDebt(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob")
	ctx := context.Background()

	f.expense(t, "Dinner", "alice", "85", "alice", "bob")

	st, err := f.settlements.Create(ctx, CreateSettlementInput{
		ViewerID:     "bob",
		OtherID:      "alice",
		CurrencyCode: "USD",
	})
	require.NoError(t, err)

	require.NoError(t, f.settlements.Delete(ctx, st.ID))

	bal, err := f.balances.PersonBalance(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, bal.Get("USD").Equal(dec(t, "-42.5")))
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swisscoin/ledger/internal/storage"
)

func TestCreateSubscriptionValidation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob")
	ctx := context.Background()

	base := CreateSubscriptionInput{
		Name:         "Netflix",
		Amount:       dec(t, "15"),
		CurrencyCode: "USD",
		MemberIDs:    []string{"alice", "bob"},
	}

	in := base
	in.Name = ""
	_, err := f.subscriptions.Create(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = base
	in.CurrencyCode = ""
	_, err = f.subscriptions.Create(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = base
	in.Amount = dec(t, "0")
	_, err = f.subscriptions.Create(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = base
	in.MemberIDs = nil
	_, err = f.subscriptions.Create(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidInput)

	in = base
	in.MemberIDs = []string{"alice", "ghost"}
	_, err = f.subscriptions.Create(ctx, in)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob")
	ctx := context.Background()

	sub, err := f.subscriptions.Create(ctx, CreateSubscriptionInput{
		Name:         "Gym",
		Amount:       dec(t, "49.90"),
		CurrencyCode: "USD",
		MemberIDs:    []string{"alice", "bob"},
	})
	require.NoError(t, err)

	// No amount given: the subscription's recurring amount applies.
	payment, err := f.subscriptions.RecordPayment(ctx, RecordPaymentInput{
		SubscriptionID: sub.ID,
		PayerID:        "alice",
	})
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(dec(t, "49.90")))
	assert.Equal(t, "USD", payment.CurrencyCode)
	assert.False(t, payment.Date.IsZero())

	// A price change for one cycle is recorded as given.
	raised := dec(t, "54.90")
	payment, err = f.subscriptions.RecordPayment(ctx, RecordPaymentInput{
		SubscriptionID: sub.ID,
		PayerID:        "bob",
		Amount:         &raised,
		Date:           time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(raised))

	zero := dec(t, "0")
	_, err = f.subscriptions.RecordPayment(ctx, RecordPaymentInput{
		SubscriptionID: sub.ID,
		PayerID:        "alice",
		Amount:         &zero,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.subscriptions.RecordPayment(ctx, RecordPaymentInput{
		SubscriptionID: sub.ID,
		PayerID:        "ghost",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.subscriptions.RecordPayment(ctx, RecordPaymentInput{
		SubscriptionID: "no-such-sub",
		PayerID:        "alice",
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	payments, err := f.subscriptions.ListPayments(ctx, sub.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	_, err = f.subscriptions.ListPayments(ctx, "no-such-sub")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteSubscription(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", "bob")
	ctx := context.Background()

	sub, err := f.subscriptions.Create(ctx, CreateSubscriptionInput{
		Name:         "Netflix",
		Amount:       dec(t, "15"),
		CurrencyCode: "USD",
		MemberIDs:    []string{"alice", "bob"},
	})
	require.NoError(t, err)

	_, err = f.subscriptions.RecordPayment(ctx, RecordPaymentInput{
		SubscriptionID: sub.ID,
		PayerID:        "alice",
	})
	require.NoError(t, err)

	require.NoError(t, f.subscriptions.Delete(ctx, sub.ID))
	_, err = f.subscriptions.Get(ctx, sub.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

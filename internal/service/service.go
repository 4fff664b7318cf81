// Package service glues the pure ledger engine to storage. Services load
// history snapshots, run engine computations, persist the results and
// notify the balance worker about changes. Validation that needs the data
// set (does this participant exist, is the payer a member) happens here;
// arithmetic validation lives in the engine.
package service

import (
	"context"
	"errors"

	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/storage"
)

// ErrInvalidInput marks request-shape mistakes the engine never sees:
// blank titles, a viewer settling with themselves, a payment by a
// non-member.
var ErrInvalidInput = errors.New("invalid input")

// Notifier is poked after every mutation that can change balances. The
// balance service implements it with a debounced recompute.
type Notifier interface {
	MarkDirty()
}

func notify(n Notifier) {
	if n != nil {
		n.MarkDirty()
	}
}

// checkParticipants verifies every id resolves to a stored participant.
func checkParticipants(ctx context.Context, store storage.Store, ids ...string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, err := store.GetParticipant(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// The engine works on value slices; storage hands out pointers.

func derefTransactions(in []*models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(in))
	for i, t := range in {
		out[i] = *t
	}
	return out
}

func derefSettlements(in []*models.Settlement) []models.Settlement {
	out := make([]models.Settlement, len(in))
	for i, s := range in {
		out[i] = *s
	}
	return out
}

func derefPayments(in []*models.SubscriptionPayment) []models.SubscriptionPayment {
	out := make([]models.SubscriptionPayment, len(in))
	for i, p := range in {
		out[i] = *p
	}
	return out
}

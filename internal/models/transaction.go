package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitMethod identifies how a transaction's total was divided among its
// participants.
type SplitMethod string

const (
	// SplitEqual divides the total evenly, remainder cents assigned in
	// ascending participant-id order.
	SplitEqual SplitMethod = "equal"

	// SplitAmount takes an exact amount per participant; the amounts must
	// sum to the total.
	SplitAmount SplitMethod = "amount"

	// SplitPercentage takes a percentage per participant summing to 100.
	SplitPercentage SplitMethod = "percentage"

	// SplitShares takes a non-negative integer share count per participant.
	SplitShares SplitMethod = "shares"

	// SplitAdjustment starts from an equal split and applies signed
	// per-participant adjustments.
	SplitAdjustment SplitMethod = "adjustment"
)

// ParseSplitMethod maps a wire/storage string to a SplitMethod.
func ParseSplitMethod(s string) (SplitMethod, bool) {
	switch m := SplitMethod(s); m {
	case SplitEqual, SplitAmount, SplitPercentage, SplitShares, SplitAdjustment:
		return m, true
	}
	return "", false
}

// Transaction represents one shared expense. Once saved it is an immutable
// historical record, except for edit flows that rescale its splits
// proportionally.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// Title is the human-readable name for the expense.
	Title string

	// TotalAmount is the full expense amount in CurrencyCode.
	TotalAmount decimal.Decimal

	// CurrencyCode is the concrete ISO 4217 code. Legacy records with no
	// stored currency are resolved to a concrete code at the data-loading
	// boundary, never inside the engine.
	CurrencyCode string

	// Date is when the expense happened (user-facing, not bookkeeping).
	Date time.Time

	// SplitMethod records how Splits were derived.
	SplitMethod SplitMethod

	// Payers is who actually paid, one entry per payer. Legacy single-payer
	// records carry exactly one contribution equal to TotalAmount.
	// Invariant: the contributions sum to TotalAmount within 0.01.
	Payers []PayerContribution

	// Splits is who owes what. Invariant: the shares sum to TotalAmount
	// exactly (to the currency's minor unit).
	Splits []SplitShare

	// GroupID tags the transaction to a group, empty for one-on-one
	// expenses.
	GroupID string

	// Note is an optional free-form note.
	Note string

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}

// PayerContribution is the amount a specific participant actually paid
// toward a transaction.
type PayerContribution struct {
	// ParticipantID is who paid.
	ParticipantID string

	// Amount is how much they paid, always positive.
	Amount decimal.Decimal
}

// SplitShare is a participant's owed share of a transaction's total.
type SplitShare struct {
	// ParticipantID is who owes this share.
	ParticipantID string

	// Amount is the owed amount, rounded to the currency's minor unit.
	Amount decimal.Decimal

	// RawInput is the method-specific input the amount was derived from
	// (percentage, share count, exact amount, or signed adjustment). Kept
	// for re-editing only; amounts are never recomputed from it after the
	// fact.
	RawInput decimal.Decimal
}

// PayerTotal sums the payer contributions.
func (t *Transaction) PayerTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range t.Payers {
		total = total.Add(p.Amount)
	}
	return total
}

// SplitTotal sums the owed shares.
func (t *Transaction) SplitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range t.Splits {
		total = total.Add(s.Amount)
	}
	return total
}

// ParticipantIDs returns every participant appearing as a payer or a split
// owner, deduplicated, in first-seen order.
func (t *Transaction) ParticipantIDs() []string {
	seen := make(map[string]bool, len(t.Payers)+len(t.Splits))
	var ids []string
	for _, p := range t.Payers {
		if !seen[p.ParticipantID] {
			seen[p.ParticipantID] = true
			ids = append(ids, p.ParticipantID)
		}
	}
	for _, s := range t.Splits {
		if !seen[s.ParticipantID] {
			seen[s.ParticipantID] = true
			ids = append(ids, s.ParticipantID)
		}
	}
	return ids
}

// Involves reports whether the participant appears as payer or split owner.
func (t *Transaction) Involves(participantID string) bool {
	for _, p := range t.Payers {
		if p.ParticipantID == participantID {
			return true
		}
	}
	for _, s := range t.Splits {
		if s.ParticipantID == participantID {
			return true
		}
	}
	return false
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement represents money that physically moved from one participant to
// another, reducing their outstanding balance.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// FromParticipantID is who paid (the debtor settling up).
	FromParticipantID string

	// ToParticipantID is who received the payment (the creditor).
	ToParticipantID string

	// Amount is the payment amount, always positive; direction is encoded
	// by from/to.
	Amount decimal.Decimal

	// CurrencyCode is the ISO 4217 code the payment was made in.
	CurrencyCode string

	// Date is when the payment happened.
	Date time.Time

	// Note is an optional description for the settlement.
	Note string

	// IsFullSettlement marks a payment that cleared the whole outstanding
	// balance at the time it was recorded.
	IsFullSettlement bool

	// GroupID is set when the settlement was recorded inside a group.
	GroupID string

	// SubscriptionID is set when the settlement was recorded between
	// members of a shared subscription.
	SubscriptionID string

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}

// Involves reports whether the settlement moves money between exactly the
// two given participants, in either direction.
func (s *Settlement) Involves(a, b string) bool {
	return (s.FromParticipantID == a && s.ToParticipantID == b) ||
		(s.FromParticipantID == b && s.ToParticipantID == a)
}

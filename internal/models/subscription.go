package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription represents a recurring shared expense (streaming plan, rent,
// utilities) split equally among its members. Subscriptions use the
// simplified equal-share model: every member owes amount/len(MemberIDs) of
// each payment regardless of split method.
type Subscription struct {
	// ID is the unique identifier for the subscription (UUID format).
	ID string

	// Name is the display name, e.g. "Netflix", "Electricity".
	Name string

	// Amount is the recurring charge per billing cycle.
	Amount decimal.Decimal

	// CurrencyCode is the ISO 4217 code the subscription bills in.
	CurrencyCode string

	// MemberIDs are the participants sharing the subscription.
	MemberIDs []string

	// CreatedAt is the Unix timestamp when the subscription was created.
	CreatedAt int64
}

// HasMember reports whether the participant shares the subscription.
func (s *Subscription) HasMember(participantID string) bool {
	for _, id := range s.MemberIDs {
		if id == participantID {
			return true
		}
	}
	return false
}

// SubscriptionPayment records one billing-cycle payment made by a member on
// behalf of the whole subscription.
type SubscriptionPayment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// SubscriptionID is the subscription this payment belongs to.
	SubscriptionID string

	// PayerID is the member who paid this cycle.
	PayerID string

	// Amount is the amount paid, normally the subscription's Amount but
	// kept per payment to survive price changes.
	Amount decimal.Decimal

	// CurrencyCode is the ISO 4217 code the payment was made in.
	CurrencyCode string

	// Date is when the payment happened.
	Date time.Time

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64
}

package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/money"
)

// PlanSettlement turns a requested payment between viewer and other into
// the settlement record to persist. The outstanding balance must be
// freshly computed by the caller at commit time, never carried over from
// an earlier screen.
//
// The request is capped at the outstanding magnitude rather than
// rejected; callers warn the user about the cap beforehand, the engine
// enforces it unconditionally. The direction follows the balance's sign:
// whoever owes is the one paying. Identity and date fields are left for
// the caller to fill.
func PlanSettlement(viewer, other string, requested decimal.Decimal, outstanding money.Balance, currencyCode string) (models.Settlement, error) {
	out := roundedOutstanding(outstanding, currencyCode)
	if out.Abs().LessThanOrEqual(money.SettledThreshold) {
		return models.Settlement{}, fmt.Errorf("%w: %s balance with %s is settled", ErrNoOutstandingBalance, currencyCode, other)
	}

	units := money.MinorUnits(currencyCode)
	if requested.Exponent() < -units && !requested.Equal(requested.Round(units)) {
		return models.Settlement{}, fmt.Errorf("%w: amount %s has sub-unit precision for %s", ErrInvalidAmount, requested, currencyCode)
	}

	limit := out.Abs()
	amount := requested
	if amount.GreaterThan(limit) {
		amount = limit
	}
	if !amount.IsPositive() {
		return models.Settlement{}, fmt.Errorf("%w: settlement amount must be positive, got %s", ErrInvalidAmount, requested)
	}

	s := models.Settlement{
		Amount:           amount,
		CurrencyCode:     currencyCode,
		IsFullSettlement: amount.Equal(limit),
	}
	if out.IsPositive() {
		s.FromParticipantID, s.ToParticipantID = other, viewer
	} else {
		s.FromParticipantID, s.ToParticipantID = viewer, other
	}
	return s, nil
}

// PlanSettleAll plans one full settlement per counterpart per currency
// with an outstanding balance, skipping anything already settled. The
// caller commits the whole batch atomically or not at all. Plans come
// out ordered by counterpart id then currency code.
func PlanSettleAll(viewer string, counterparts []CounterpartBalance) []models.Settlement {
	var plans []models.Settlement
	for _, c := range counterparts {
		if c.ParticipantID == viewer {
			continue
		}
		for _, e := range c.Balance.NonZero() {
			out := money.Round(e.Amount, e.CurrencyCode)
			if out.Abs().LessThanOrEqual(money.SettledThreshold) {
				continue
			}
			s := models.Settlement{
				Amount:           out.Abs(),
				CurrencyCode:     e.CurrencyCode,
				IsFullSettlement: true,
			}
			if out.IsPositive() {
				s.FromParticipantID, s.ToParticipantID = c.ParticipantID, viewer
			} else {
				s.FromParticipantID, s.ToParticipantID = viewer, c.ParticipantID
			}
			plans = append(plans, s)
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		a, b := plans[i], plans[j]
		ca := counterpartOf(a, viewer)
		cb := counterpartOf(b, viewer)
		if ca != cb {
			return ca < cb
		}
		return a.CurrencyCode < b.CurrencyCode
	})
	return plans
}

func counterpartOf(s models.Settlement, viewer string) string {
	if s.FromParticipantID == viewer {
		return s.ToParticipantID
	}
	return s.FromParticipantID
}

package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/money"
)

// netEpsilon separates a real creditor or debtor position from rounding
// noise. Nets within the epsilon contribute nothing to any pair, and a
// total credit at or below it is treated as a zero divisor.
var netEpsilon = decimal.New(1, -3) // 0.001

// NetPositions computes each participant's net position within a single
// transaction: everything they paid minus everything they owe. Positive
// means the transaction left them a creditor. Because payers and splits
// both reconcile to the total, the nets always sum to zero.
func NetPositions(txn models.Transaction) map[string]decimal.Decimal {
	nets := make(map[string]decimal.Decimal, len(txn.Splits))
	for _, p := range txn.Payers {
		nets[p.ParticipantID] = nets[p.ParticipantID].Add(p.Amount)
	}
	for _, s := range txn.Splits {
		nets[s.ParticipantID] = nets[s.ParticipantID].Sub(s.Amount)
	}
	return nets
}

// PairwiseContribution is a single transaction's contribution to the
// balance between viewer and other, in the transaction's currency.
// Positive means other owes viewer.
//
// A debtor's debt is not owed to one creditor but to all of them, pro
// rata: if other's net is -60 and viewer holds 40 of the transaction's
// 100 total credit, other owes viewer 60 * 40/100 = 24. When viewer and
// other are both creditors, both debtors, or either is flat, nothing
// runs between them. Viewer and other must differ.
func PairwiseContribution(txn models.Transaction, viewer, other string) decimal.Decimal {
	return pairContribution(NetPositions(txn), viewer, other)
}

func pairContribution(nets map[string]decimal.Decimal, viewer, other string) decimal.Decimal {
	vn, on := nets[viewer], nets[other]

	totalCredit := decimal.Zero
	for _, n := range nets {
		if n.GreaterThan(netEpsilon) {
			totalCredit = totalCredit.Add(n)
		}
	}
	if !totalCredit.GreaterThan(netEpsilon) {
		return decimal.Zero
	}

	switch {
	case vn.GreaterThan(netEpsilon) && on.LessThan(netEpsilon.Neg()):
		return on.Abs().Mul(vn).Div(totalCredit)
	case on.GreaterThan(netEpsilon) && vn.LessThan(netEpsilon.Neg()):
		return vn.Abs().Mul(on).Div(totalCredit).Neg()
	default:
		return decimal.Zero
	}
}

// AggregateBalance nets viewer against other across full histories,
// currency by currency. Transactions contribute through proportional
// allocation; settlements apply directly by direction: a payment from
// other to viewer reduces what other owes, a payment from viewer to
// other reduces what viewer owes. Positive entries mean other owes
// viewer. Running amounts keep full precision; rounding belongs to
// presentation and settlement.
func AggregateBalance(txns []models.Transaction, settlements []models.Settlement, viewer, other string) money.Balance {
	bal := money.NewBalance()
	if viewer == other {
		return bal
	}
	for _, txn := range txns {
		if !txn.Involves(viewer) || !txn.Involves(other) {
			continue
		}
		bal.Add(txn.CurrencyCode, pairContribution(NetPositions(txn), viewer, other))
	}
	for _, s := range settlements {
		switch {
		case s.FromParticipantID == other && s.ToParticipantID == viewer:
			bal.Sub(s.CurrencyCode, s.Amount)
		case s.FromParticipantID == viewer && s.ToParticipantID == other:
			bal.Add(s.CurrencyCode, s.Amount)
		}
	}
	return bal
}

// CounterpartBalances nets viewer against every other participant in the
// histories in one pass, sharing the per-transaction net positions
// instead of recomputing them per pair. The result maps counterpart id
// to the same balance AggregateBalance would return for that pair;
// participants the viewer has no history with are absent.
func CounterpartBalances(viewer string, txns []models.Transaction, settlements []models.Settlement) map[string]money.Balance {
	out := make(map[string]money.Balance)
	at := func(id string) money.Balance {
		b, ok := out[id]
		if !ok {
			b = money.NewBalance()
			out[id] = b
		}
		return b
	}

	for _, txn := range txns {
		if !txn.Involves(viewer) {
			continue
		}
		nets := NetPositions(txn)
		for id := range nets {
			if id == viewer {
				continue
			}
			if c := pairContribution(nets, viewer, id); !c.IsZero() {
				at(id).Add(txn.CurrencyCode, c)
			}
		}
	}
	for _, s := range settlements {
		switch {
		case s.ToParticipantID == viewer && s.FromParticipantID != viewer:
			at(s.FromParticipantID).Sub(s.CurrencyCode, s.Amount)
		case s.FromParticipantID == viewer && s.ToParticipantID != viewer:
			at(s.ToParticipantID).Add(s.CurrencyCode, s.Amount)
		}
	}
	return out
}

// roundedOutstanding is the settleable magnitude of a balance entry:
// the raw amount rounded to the currency's minor unit.
func roundedOutstanding(bal money.Balance, currencyCode string) decimal.Decimal {
	return money.Round(bal.Get(currencyCode), currencyCode)
}

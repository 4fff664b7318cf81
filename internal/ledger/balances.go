package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/money"
)

// MemberBalance is one member's standing within a group or subscription:
// the signed net per currency plus everything they have paid in.
type MemberBalance struct {
	ParticipantID string
	Balance       money.Balance
	TotalPaid     money.Balance
}

// CounterpartBalance pairs a counterpart with the viewer's balance
// against them. Positive entries mean the counterpart owes the viewer.
type CounterpartBalance struct {
	ParticipantID string
	Balance       money.Balance
}

// Summary is the home-screen rollup of the viewer's standing against
// everyone else. OwedToYou and YouOwe hold per-currency totals (YouOwe
// sign-flipped positive for display), each sorted by descending
// magnitude; currencies never net against each other. Counterparts
// lists the people behind those totals, unsettled only, by id.
type Summary struct {
	OwedToYou    []money.Entry
	YouOwe       []money.Entry
	Counterparts []CounterpartBalance
}

// PersonBalance is the viewer's standing against one person across all
// shared transactions and settlements, independent of grouping. A person
// the viewer shares no history with is settled, not an error.
func PersonBalance(viewer, person string, txns []models.Transaction, settlements []models.Settlement) money.Balance {
	return AggregateBalance(txns, settlements, viewer, person)
}

// GroupMemberBalances computes each member's net position over histories
// already restricted to one group: transaction nets summed per member,
// settlements applied by direction. Positive means the group owes the
// member. Members without activity appear settled. Results are sorted by
// participant id.
func GroupMemberBalances(memberIDs []string, txns []models.Transaction, settlements []models.Settlement) []MemberBalance {
	members := newMemberSet(memberIDs)
	for _, txn := range txns {
		for id, net := range NetPositions(txn) {
			members.balance(id).Add(txn.CurrencyCode, net)
		}
		for _, p := range txn.Payers {
			members.paid(p.ParticipantID).Add(txn.CurrencyCode, p.Amount)
		}
	}
	members.applySettlements(settlements)
	return members.sorted()
}

// SubscriptionMemberBalances computes member standings for a shared
// subscription using the simplified equal-share model: each payment is
// owed equally by every member, so the payer nets the payment minus
// their own share and everyone else nets minus one share. Settlements
// between members apply directly. A subscription with no members yields
// nil rather than dividing by zero.
func SubscriptionMemberBalances(sub models.Subscription, payments []models.SubscriptionPayment, settlements []models.Settlement) []MemberBalance {
	if len(sub.MemberIDs) == 0 {
		return nil
	}
	members := newMemberSet(sub.MemberIDs)
	count := decimal.NewFromInt(int64(len(sub.MemberIDs)))
	for _, p := range payments {
		perMember := p.Amount.Div(count)
		for _, id := range sub.MemberIDs {
			members.balance(id).Sub(p.CurrencyCode, perMember)
		}
		members.balance(p.PayerID).Add(p.CurrencyCode, p.Amount)
		members.paid(p.PayerID).Add(p.CurrencyCode, p.Amount)
	}
	members.applySettlements(settlements)
	return members.sorted()
}

// HomeSummary buckets the viewer's balance against every other person
// into owed-to-you and you-owe totals per currency. Each person's entries
// are bucketed by sign before summing, so someone owing the viewer USD
// never cancels against the viewer owing someone else USD.
func HomeSummary(viewer string, others []string, txns []models.Transaction, settlements []models.Settlement) Summary {
	balances := CounterpartBalances(viewer, txns, settlements)

	owedToYou := money.NewBalance()
	youOwe := money.NewBalance()
	var counterparts []CounterpartBalance
	for _, id := range others {
		if id == viewer {
			continue
		}
		bal, ok := balances[id]
		if !ok || bal.IsSettled() {
			continue
		}
		for _, e := range bal.NonZero() {
			if e.Amount.IsPositive() {
				owedToYou.Add(e.CurrencyCode, e.Amount)
			} else {
				youOwe.Add(e.CurrencyCode, e.Amount.Abs())
			}
		}
		counterparts = append(counterparts, CounterpartBalance{ParticipantID: id, Balance: bal})
	}
	sort.Slice(counterparts, func(i, j int) bool {
		return counterparts[i].ParticipantID < counterparts[j].ParticipantID
	})
	return Summary{
		OwedToYou:    byMagnitude(owedToYou),
		YouOwe:       byMagnitude(youOwe),
		Counterparts: counterparts,
	}
}

// byMagnitude orders a balance's entries by descending magnitude, then
// by currency code so equal amounts come out stably.
func byMagnitude(b money.Balance) []money.Entry {
	entries := b.NonZero()
	sort.Slice(entries, func(i, j int) bool {
		ai, aj := entries[i].Amount.Abs(), entries[j].Amount.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return entries[i].CurrencyCode < entries[j].CurrencyCode
	})
	return entries
}

// memberSet accumulates per-member balances for the group and
// subscription views. Listed members always appear in the output, even
// settled; activity by non-members is folded in only if they are listed.
type memberSet struct {
	ids      []string
	balances map[string]money.Balance
	paids    map[string]money.Balance
}

func newMemberSet(ids []string) *memberSet {
	s := &memberSet{
		balances: make(map[string]money.Balance, len(ids)),
		paids:    make(map[string]money.Balance, len(ids)),
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		s.ids = append(s.ids, id)
		s.balances[id] = money.NewBalance()
		s.paids[id] = money.NewBalance()
	}
	sort.Strings(s.ids)
	return s
}

// balance returns the member's balance accumulator, or a throwaway one
// for ids outside the member list so callers need not pre-filter.
func (s *memberSet) balance(id string) money.Balance {
	if b, ok := s.balances[id]; ok {
		return b
	}
	return money.NewBalance()
}

func (s *memberSet) paid(id string) money.Balance {
	if b, ok := s.paids[id]; ok {
		return b
	}
	return money.NewBalance()
}

// applySettlements credits the payer and debits the receiver: paying
// money down raises the payer's net standing.
func (s *memberSet) applySettlements(settlements []models.Settlement) {
	for _, st := range settlements {
		s.balance(st.FromParticipantID).Add(st.CurrencyCode, st.Amount)
		s.balance(st.ToParticipantID).Sub(st.CurrencyCode, st.Amount)
	}
}

func (s *memberSet) sorted() []MemberBalance {
	out := make([]MemberBalance, len(s.ids))
	for i, id := range s.ids {
		out[i] = MemberBalance{
			ParticipantID: id,
			Balance:       s.balances[id],
			TotalPaid:     s.paids[id],
		}
	}
	return out
}

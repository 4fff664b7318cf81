package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/swisscoin/ledger/internal/models"
)

func pay(id, amount string) models.PayerContribution {
	return models.PayerContribution{ParticipantID: id, Amount: dec(amount)}
}

func owe(id, amount string) models.SplitShare {
	return models.SplitShare{ParticipantID: id, Amount: dec(amount)}
}

func settle(from, to, amount, currency string) models.Settlement {
	return models.Settlement{
		FromParticipantID: from,
		ToParticipantID:   to,
		Amount:            dec(amount),
		CurrencyCode:      currency,
	}
}

func usdTxn(payers []models.PayerContribution, splits []models.SplitShare) models.Transaction {
	return models.Transaction{CurrencyCode: "USD", Payers: payers, Splits: splits}
}

func TestNetPositions(t *testing.T) {
	txn := usdTxn(
		[]models.PayerContribution{pay("alice", "60.00"), pay("bob", "40.00")},
		[]models.SplitShare{owe("alice", "33.34"), owe("bob", "33.33"), owe("carol", "33.33")},
	)
	nets := NetPositions(txn)

	want := map[string]string{"alice": "26.66", "bob": "6.67", "carol": "-33.33"}
	for id, w := range want {
		if !nets[id].Equal(dec(w)) {
			t.Errorf("net[%s] = %s, want %s", id, nets[id], w)
		}
	}
	sum := decimal.Zero
	for _, n := range nets {
		sum = sum.Add(n)
	}
	if !sum.IsZero() {
		t.Errorf("nets sum to %s, want 0", sum)
	}
}

func TestPairwiseContribution(t *testing.T) {
	tests := []struct {
		name   string
		txn    models.Transaction
		viewer string
		other  string
		want   string
	}{
		{
			name: "sole payer is owed the other half",
			txn: usdTxn(
				[]models.PayerContribution{pay("alice", "100.00")},
				[]models.SplitShare{owe("alice", "50.00"), owe("bob", "50.00")},
			),
			viewer: "alice",
			other:  "bob",
			want:   "50.00",
		},
		{
			name: "debt splits across creditors pro rata",
			// alice nets +26.66, bob +6.67, carol -33.33. carol's debt is
			// shared in proportion 26.66 : 6.67.
			txn: usdTxn(
				[]models.PayerContribution{pay("alice", "60.00"), pay("bob", "40.00")},
				[]models.SplitShare{owe("alice", "33.34"), owe("bob", "33.33"), owe("carol", "33.33")},
			),
			viewer: "alice",
			other:  "carol",
			want:   "26.66",
		},
		{
			name: "minor creditor gets the remainder of the debt",
			txn: usdTxn(
				[]models.PayerContribution{pay("alice", "60.00"), pay("bob", "40.00")},
				[]models.SplitShare{owe("alice", "33.34"), owe("bob", "33.33"), owe("carol", "33.33")},
			),
			viewer: "bob",
			other:  "carol",
			want:   "6.67",
		},
		{
			name: "two creditors owe each other nothing",
			txn: usdTxn(
				[]models.PayerContribution{pay("alice", "60.00"), pay("bob", "40.00")},
				[]models.SplitShare{owe("alice", "33.34"), owe("bob", "33.33"), owe("carol", "33.33")},
			),
			viewer: "alice",
			other:  "bob",
			want:   "0",
		},
		{
			name: "payer covering only their own share is flat with everyone",
			txn: usdTxn(
				[]models.PayerContribution{pay("alice", "20.00")},
				[]models.SplitShare{owe("alice", "20.00")},
			),
			viewer: "alice",
			other:  "bob",
			want:   "0",
		},
		{
			name: "uninvolved viewer sees nothing",
			txn: usdTxn(
				[]models.PayerContribution{pay("alice", "10.00")},
				[]models.SplitShare{owe("alice", "5.00"), owe("bob", "5.00")},
			),
			viewer: "dave",
			other:  "bob",
			want:   "0",
		},
		{
			name: "total credit inside the epsilon is a zero divisor",
			txn: usdTxn(
				[]models.PayerContribution{pay("alice", "0.0005")},
				[]models.SplitShare{owe("bob", "0.0005")},
			),
			viewer: "alice",
			other:  "bob",
			want:   "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PairwiseContribution(tt.txn, tt.viewer, tt.other)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("PairwiseContribution() = %s, want %s", got, tt.want)
			}
			// The reverse view is always the exact negation.
			rev := PairwiseContribution(tt.txn, tt.other, tt.viewer)
			if !rev.Equal(got.Neg()) {
				t.Errorf("PairwiseContribution() reversed = %s, want %s", rev, got.Neg())
			}
		})
	}
}

func TestAggregateBalance(t *testing.T) {
	txns := []models.Transaction{
		// bob owes alice 50.
		usdTxn(
			[]models.PayerContribution{pay("alice", "100.00")},
			[]models.SplitShare{owe("alice", "50.00"), owe("bob", "50.00")},
		),
		// alice owes bob 15.
		usdTxn(
			[]models.PayerContribution{pay("bob", "30.00")},
			[]models.SplitShare{owe("alice", "15.00"), owe("bob", "15.00")},
		),
		// alice owes bob 5 EUR.
		{
			CurrencyCode: "EUR",
			Payers:       []models.PayerContribution{pay("bob", "10.00")},
			Splits:       []models.SplitShare{owe("alice", "5.00"), owe("bob", "5.00")},
		},
	}

	t.Run("transactions net per currency", func(t *testing.T) {
		bal := AggregateBalance(txns, nil, "alice", "bob")
		if !bal.Get("USD").Equal(dec("35.00")) {
			t.Errorf("USD balance = %s, want 35.00", bal.Get("USD"))
		}
		if !bal.Get("EUR").Equal(dec("-5.00")) {
			t.Errorf("EUR balance = %s, want -5.00", bal.Get("EUR"))
		}
	})

	t.Run("settlement toward the viewer pays debt down", func(t *testing.T) {
		settlements := []models.Settlement{settle("bob", "alice", "20.00", "USD")}
		bal := AggregateBalance(txns, settlements, "alice", "bob")
		if !bal.Get("USD").Equal(dec("15.00")) {
			t.Errorf("USD balance = %s, want 15.00", bal.Get("USD"))
		}
	})

	t.Run("settlement from the viewer pays their own debt down", func(t *testing.T) {
		settlements := []models.Settlement{settle("alice", "bob", "5.00", "EUR")}
		bal := AggregateBalance(txns, settlements, "alice", "bob")
		if !bal.Get("EUR").IsZero() {
			t.Errorf("EUR balance = %s, want 0", bal.Get("EUR"))
		}
	})

	t.Run("antisymmetric between the two viewpoints", func(t *testing.T) {
		settlements := []models.Settlement{settle("bob", "alice", "20.00", "USD")}
		ab := AggregateBalance(txns, settlements, "alice", "bob")
		ba := AggregateBalance(txns, settlements, "bob", "alice")
		for _, code := range []string{"USD", "EUR"} {
			if !ab.Get(code).Equal(ba.Get(code).Neg()) {
				t.Errorf("%s: alice->bob %s, bob->alice %s", code, ab.Get(code), ba.Get(code))
			}
		}
	})

	t.Run("strangers are settled", func(t *testing.T) {
		bal := AggregateBalance(txns, nil, "carol", "dave")
		if !bal.IsSettled() {
			t.Errorf("balance = %s, want settled", bal)
		}
	})

	t.Run("self pair is empty", func(t *testing.T) {
		bal := AggregateBalance(txns, nil, "alice", "alice")
		if len(bal) != 0 {
			t.Errorf("balance = %s, want empty", bal)
		}
	})
}

// TestCounterpartBalances checks the one-pass rollup against the pairwise
// aggregate it replaces.
func TestCounterpartBalances(t *testing.T) {
	txns := []models.Transaction{
		usdTxn(
			[]models.PayerContribution{pay("alice", "60.00"), pay("bob", "40.00")},
			[]models.SplitShare{owe("alice", "33.34"), owe("bob", "33.33"), owe("carol", "33.33")},
		),
		usdTxn(
			[]models.PayerContribution{pay("carol", "90.00")},
			[]models.SplitShare{owe("alice", "30.00"), owe("bob", "30.00"), owe("carol", "30.00")},
		),
		{
			CurrencyCode: "EUR",
			Payers:       []models.PayerContribution{pay("bob", "10.00")},
			Splits:       []models.SplitShare{owe("alice", "5.00"), owe("bob", "5.00")},
		},
	}
	settlements := []models.Settlement{
		settle("carol", "alice", "5.00", "USD"),
		settle("alice", "bob", "2.50", "EUR"),
		settle("bob", "carol", "12.00", "USD"), // not alice's concern
	}

	got := CounterpartBalances("alice", txns, settlements)

	for _, other := range []string{"bob", "carol"} {
		want := AggregateBalance(txns, settlements, "alice", other)
		bal, ok := got[other]
		if !ok {
			t.Fatalf("no balance for %s", other)
		}
		for _, code := range []string{"USD", "EUR"} {
			if !bal.Get(code).Equal(want.Get(code)) {
				t.Errorf("%s %s = %s, want %s", other, code, bal.Get(code), want.Get(code))
			}
		}
	}
	if _, ok := got["dave"]; ok {
		t.Error("unexpected balance for dave")
	}
	if _, ok := got["alice"]; ok {
		t.Error("viewer must not be their own counterpart")
	}
}

package server

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/swisscoin/ledger/internal/ledger"
	"github.com/swisscoin/ledger/internal/models"
	"github.com/swisscoin/ledger/internal/money"
	"github.com/swisscoin/ledger/internal/service"
)

// Amounts travel as JSON strings end to end. Accepting float64 for money
// would reintroduce the binary rounding the decimal engine exists to
// avoid.

func parseAmount(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: invalid %s %q", service.ErrInvalidInput, field, raw)
	}
	return d, nil
}

// parseInputs converts per-participant raw inputs from wire strings.
func parseInputs(raw map[string]string) (map[string]decimal.Decimal, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]decimal.Decimal, len(raw))
	for id, s := range raw {
		d, err := parseAmount("split input for "+id, s)
		if err != nil {
			return nil, err
		}
		out[id] = d
	}
	return out, nil
}

// parsePayers converts wire payers; an omitted amount stays zero, which
// the engine reads as "paid the whole total" for a single payer.
func parsePayers(raw []payerDTO) ([]models.PayerContribution, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]models.PayerContribution, len(raw))
	for i, p := range raw {
		out[i] = models.PayerContribution{ParticipantID: p.ParticipantID}
		if p.Amount != "" {
			d, err := parseAmount("amount for payer "+p.ParticipantID, p.Amount)
			if err != nil {
				return nil, err
			}
			out[i].Amount = d
		}
	}
	return out, nil
}

type payerDTO struct {
	ParticipantID string `json:"participant_id" validate:"required"`
	Amount        string `json:"amount,omitempty"`
}

type splitDTO struct {
	ParticipantID string `json:"participant_id"`
	Amount        string `json:"amount"`
	RawInput      string `json:"raw_input,omitempty"`
}

type entryDTO struct {
	CurrencyCode string `json:"currency_code"`
	Amount       string `json:"amount"`
}

func entriesDTO(entries []money.Entry) []entryDTO {
	out := make([]entryDTO, len(entries))
	for i, e := range entries {
		out[i] = entryDTO{
			CurrencyCode: e.CurrencyCode,
			Amount:       money.Round(e.Amount, e.CurrencyCode).String(),
		}
	}
	return out
}

func balanceDTO(b money.Balance) balanceResponse {
	return balanceResponse{
		Balances: entriesDTO(b.Rounded().NonZero()),
		Settled:  b.IsSettled(),
	}
}

type balanceResponse struct {
	Balances []entryDTO `json:"balances"`
	Settled  bool       `json:"settled"`
}

type transactionRequest struct {
	Title        string            `json:"title" validate:"required"`
	TotalAmount  string            `json:"total_amount" validate:"required"`
	CurrencyCode string            `json:"currency_code" validate:"required,len=3"`
	Date         *time.Time        `json:"date,omitempty"`
	SplitMethod  string            `json:"split_method" validate:"required,oneof=equal amount percentage shares adjustment"`
	Participants []string          `json:"participants" validate:"required,min=1"`
	SplitInputs  map[string]string `json:"split_inputs,omitempty"`
	Payers       []payerDTO        `json:"payers" validate:"required,min=1,dive"`
	GroupID      string            `json:"group_id,omitempty"`
	Note         string            `json:"note,omitempty"`
}

type transactionPatch struct {
	Title       *string    `json:"title,omitempty"`
	TotalAmount *string    `json:"total_amount,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Payers      []payerDTO `json:"payers,omitempty" validate:"omitempty,dive"`
	GroupID     *string    `json:"group_id,omitempty"`
	Note        *string    `json:"note,omitempty"`
}

type transactionResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	TotalAmount  string     `json:"total_amount"`
	CurrencyCode string     `json:"currency_code"`
	Date         time.Time  `json:"date"`
	SplitMethod  string     `json:"split_method"`
	Payers       []payerDTO `json:"payers"`
	Splits       []splitDTO `json:"splits"`
	GroupID      string     `json:"group_id,omitempty"`
	Note         string     `json:"note,omitempty"`
	CreatedAt    int64      `json:"created_at"`

	// ClampedParticipants reports adjustment shares forced to zero, only
	// set when the transaction was just created.
	ClampedParticipants []string `json:"clamped_participants,omitempty"`
}

func transactionDTO(txn *models.Transaction) transactionResponse {
	payers := make([]payerDTO, len(txn.Payers))
	for i, p := range txn.Payers {
		payers[i] = payerDTO{ParticipantID: p.ParticipantID, Amount: p.Amount.String()}
	}
	splits := make([]splitDTO, len(txn.Splits))
	for i, s := range txn.Splits {
		splits[i] = splitDTO{ParticipantID: s.ParticipantID, Amount: s.Amount.String()}
		if !s.RawInput.IsZero() {
			splits[i].RawInput = s.RawInput.String()
		}
	}
	return transactionResponse{
		ID:           txn.ID,
		Title:        txn.Title,
		TotalAmount:  txn.TotalAmount.String(),
		CurrencyCode: txn.CurrencyCode,
		Date:         txn.Date,
		SplitMethod:  string(txn.SplitMethod),
		Payers:       payers,
		Splits:       splits,
		GroupID:      txn.GroupID,
		Note:         txn.Note,
		CreatedAt:    txn.CreatedAt,
	}
}

func transactionsDTO(txns []*models.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txns))
	for i, txn := range txns {
		out[i] = transactionDTO(txn)
	}
	return out
}

type splitPreviewRequest struct {
	TotalAmount  string            `json:"total_amount" validate:"required"`
	CurrencyCode string            `json:"currency_code" validate:"required,len=3"`
	SplitMethod  string            `json:"split_method" validate:"required,oneof=equal amount percentage shares adjustment"`
	Participants []string          `json:"participants" validate:"required,min=1"`
	SplitInputs  map[string]string `json:"split_inputs,omitempty"`
}

type splitPreviewResponse struct {
	Splits              []splitDTO `json:"splits"`
	ClampedParticipants []string   `json:"clamped_participants,omitempty"`
}

type settlementRequest struct {
	OtherID        string     `json:"other_id" validate:"required"`
	CurrencyCode   string     `json:"currency_code" validate:"required,len=3"`
	Amount         string     `json:"amount,omitempty"`
	Date           *time.Time `json:"date,omitempty"`
	Note           string     `json:"note,omitempty"`
	GroupID        string     `json:"group_id,omitempty"`
	SubscriptionID string     `json:"subscription_id,omitempty"`
}

type settleAllRequest struct {
	Date *time.Time `json:"date,omitempty"`
	Note string     `json:"note,omitempty"`
}

type settlementResponse struct {
	ID                string    `json:"id"`
	FromParticipantID string    `json:"from_participant_id"`
	ToParticipantID   string    `json:"to_participant_id"`
	Amount            string    `json:"amount"`
	CurrencyCode      string    `json:"currency_code"`
	Date              time.Time `json:"date"`
	Note              string    `json:"note,omitempty"`
	IsFullSettlement  bool      `json:"is_full_settlement"`
	GroupID           string    `json:"group_id,omitempty"`
	SubscriptionID    string    `json:"subscription_id,omitempty"`
	CreatedAt         int64     `json:"created_at"`
}

func settlementDTO(st *models.Settlement) settlementResponse {
	return settlementResponse{
		ID:                st.ID,
		FromParticipantID: st.FromParticipantID,
		ToParticipantID:   st.ToParticipantID,
		Amount:            st.Amount.String(),
		CurrencyCode:      st.CurrencyCode,
		Date:              st.Date,
		Note:              st.Note,
		IsFullSettlement:  st.IsFullSettlement,
		GroupID:           st.GroupID,
		SubscriptionID:    st.SubscriptionID,
		CreatedAt:         st.CreatedAt,
	}
}

func settlementsDTO(sts []*models.Settlement) []settlementResponse {
	out := make([]settlementResponse, len(sts))
	for i, st := range sts {
		out[i] = settlementDTO(st)
	}
	return out
}

type memberBalanceDTO struct {
	ParticipantID string     `json:"participant_id"`
	Balances      []entryDTO `json:"balances"`
	TotalPaid     []entryDTO `json:"total_paid"`
	Settled       bool       `json:"settled"`
}

func memberBalancesDTO(members []ledger.MemberBalance) []memberBalanceDTO {
	out := make([]memberBalanceDTO, len(members))
	for i, m := range members {
		out[i] = memberBalanceDTO{
			ParticipantID: m.ParticipantID,
			Balances:      entriesDTO(m.Balance.Rounded().NonZero()),
			TotalPaid:     entriesDTO(m.TotalPaid.Rounded().NonZero()),
			Settled:       m.Balance.IsSettled(),
		}
	}
	return out
}

type counterpartDTO struct {
	ParticipantID string     `json:"participant_id"`
	Balances      []entryDTO `json:"balances"`
}

type homeSummaryResponse struct {
	OwedToYou    []entryDTO       `json:"owed_to_you"`
	YouOwe       []entryDTO       `json:"you_owe"`
	Counterparts []counterpartDTO `json:"counterparts"`
}

func homeSummaryDTO(s ledger.Summary) homeSummaryResponse {
	counterparts := make([]counterpartDTO, len(s.Counterparts))
	for i, c := range s.Counterparts {
		counterparts[i] = counterpartDTO{
			ParticipantID: c.ParticipantID,
			Balances:      entriesDTO(c.Balance.Rounded().NonZero()),
		}
	}
	return homeSummaryResponse{
		OwedToYou:    entriesDTO(s.OwedToYou),
		YouOwe:       entriesDTO(s.YouOwe),
		Counterparts: counterparts,
	}
}

type participantRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
}

type participantResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

func participantDTO(p *models.Participant) participantResponse {
	return participantResponse{ID: p.ID, DisplayName: p.DisplayName, CreatedAt: p.CreatedAt}
}

type groupRequest struct {
	Name      string   `json:"name" validate:"required"`
	MemberIDs []string `json:"member_ids" validate:"required,min=1"`
}

type groupResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
	CreatedAt int64    `json:"created_at"`
}

func groupDTO(g *models.Group) groupResponse {
	return groupResponse{ID: g.ID, Name: g.Name, MemberIDs: g.MemberIDs, CreatedAt: g.CreatedAt}
}

type subscriptionRequest struct {
	Name         string   `json:"name" validate:"required"`
	Amount       string   `json:"amount" validate:"required"`
	CurrencyCode string   `json:"currency_code" validate:"required,len=3"`
	MemberIDs    []string `json:"member_ids" validate:"required,min=1"`
}

type subscriptionResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Amount       string   `json:"amount"`
	CurrencyCode string   `json:"currency_code"`
	MemberIDs    []string `json:"member_ids"`
	CreatedAt    int64    `json:"created_at"`
}

func subscriptionDTO(sub *models.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:           sub.ID,
		Name:         sub.Name,
		Amount:       sub.Amount.String(),
		CurrencyCode: sub.CurrencyCode,
		MemberIDs:    sub.MemberIDs,
		CreatedAt:    sub.CreatedAt,
	}
}

type paymentRequest struct {
	PayerID string     `json:"payer_id" validate:"required"`
	Amount  string     `json:"amount,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
}

type paymentResponse struct {
	ID             string    `json:"id"`
	SubscriptionID string    `json:"subscription_id"`
	PayerID        string    `json:"payer_id"`
	Amount         string    `json:"amount"`
	CurrencyCode   string    `json:"currency_code"`
	Date           time.Time `json:"date"`
	CreatedAt      int64     `json:"created_at"`
}

func paymentDTO(p *models.SubscriptionPayment) paymentResponse {
	return paymentResponse{
		ID:             p.ID,
		SubscriptionID: p.SubscriptionID,
		PayerID:        p.PayerID,
		Amount:         p.Amount.String(),
		CurrencyCode:   p.CurrencyCode,
		Date:           p.Date,
		CreatedAt:      p.CreatedAt,
	}
}

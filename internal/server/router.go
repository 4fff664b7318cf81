package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swisscoin/ledger/internal/middleware"
	"github.com/swisscoin/ledger/internal/service"
	"github.com/swisscoin/ledger/internal/storage"
)

// Deps carries everything the router wires together. A nil Registry
// disables metrics: collectors stay unregistered and /metrics is not
// mounted.
type Deps struct {
	Store         storage.Store
	Participants  *service.ParticipantService
	Groups        *service.GroupService
	Subscriptions *service.SubscriptionService
	Transactions  *service.TransactionService
	Balances      *service.BalanceService
	Settlements   *service.SettlementService
	Registry      *prometheus.Registry
}

// NewRouter assembles the full HTTP surface. Viewer resolution runs
// before request logging so every access line can say who was asking.
func NewRouter(deps Deps) http.Handler {
	// The Registerer indirection keeps a nil *Registry from reaching
	// MustRegister as a non-nil interface.
	var collectors prometheus.Registerer
	if deps.Registry != nil {
		collectors = deps.Registry
	}
	httpMetrics := middleware.NewHTTPMetrics(collectors)

	h := &handlers{
		store:         deps.Store,
		participants:  deps.Participants,
		groups:        deps.Groups,
		subscriptions: deps.Subscriptions,
		transactions:  deps.Transactions,
		balances:      deps.Balances,
		settlements:   deps.Settlements,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.Viewer,
		middleware.RequestLogger,
		httpMetrics.Middleware,
	)

	r.Get("/healthz", h.handleHealth)
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/splits/preview", h.handlePreviewSplits)

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", h.handleCreateTransaction)
			r.Get("/", h.handleListTransactions)
			r.Get("/{id}", h.handleGetTransaction)
			r.Patch("/{id}", h.handleUpdateTransaction)
			r.Delete("/{id}", h.handleDeleteTransaction)
		})

		r.Route("/balances", func(r chi.Router) {
			r.Get("/home", h.handleHomeSummary)
			r.Get("/person/{id}", h.handlePersonBalance)
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Post("/", h.handleCreateSettlement)
			r.Post("/settle-all", h.handleSettleAll)
			r.Get("/", h.handleListSettlements)
			r.Get("/{id}", h.handleGetSettlement)
			r.Delete("/{id}", h.handleDeleteSettlement)
		})

		r.Route("/participants", func(r chi.Router) {
			r.Post("/", h.handleCreateParticipant)
			r.Get("/", h.handleListParticipants)
			r.Get("/{id}", h.handleGetParticipant)
			r.Delete("/{id}", h.handleDeleteParticipant)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", h.handleCreateGroup)
			r.Get("/", h.handleListGroups)
			r.Get("/{id}", h.handleGetGroup)
			r.Delete("/{id}", h.handleDeleteGroup)
			r.Get("/{id}/balances", h.handleGroupBalances)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", h.handleCreateSubscription)
			r.Get("/", h.handleListSubscriptions)
			r.Get("/{id}", h.handleGetSubscription)
			r.Delete("/{id}", h.handleDeleteSubscription)
			r.Get("/{id}/balances", h.handleSubscriptionBalances)
			r.Post("/{id}/payments", h.handleRecordPayment)
			r.Get("/{id}/payments", h.handleListPayments)
		})
	})

	return r
}

package server

import (
	"fmt"
	"net/http"

	"github.com/swisscoin/ledger/internal/middleware"
	"github.com/swisscoin/ledger/internal/service"
	"github.com/swisscoin/ledger/internal/storage"
)

// handlers glues the HTTP surface to the services. All money parsing
// happens here; services and the engine below them only ever see
// decimals.
type handlers struct {
	store         storage.Store
	participants  *service.ParticipantService
	groups        *service.GroupService
	subscriptions *service.SubscriptionService
	transactions  *service.TransactionService
	balances      *service.BalanceService
	settlements   *service.SettlementService
}

// viewerID extracts the acting participant from the request context.
// Balance and settlement routes are meaningless without one.
func viewerID(r *http.Request) (string, error) {
	id := middleware.GetViewerID(r.Context())
	if id == "" {
		return "", fmt.Errorf("%w: viewer is required (set the %s header or ?viewer=)", service.ErrInvalidInput, middleware.ViewerHeader)
	}
	return id, nil
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

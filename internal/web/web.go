package web

import (
	"codeberg.org/gruf/go-mutexes"
	"github.com/alexedwards/scs"
	"github.com/sidereusnuntius/donata/internal/client"
	"github.com/sidereusnuntius/donata/internal/config"
	"github.com/sidereusnuntius/donata/internal/format"
	"github.com/sidereusnuntius/donata/internal/metrics"
)

const (
	HomePath       = "/"
	SearchPath     = "/search"
	WalletPath     = "/wallet"
	DonationsPath  = "/donations"
	MetricsPath    = "/metrics"
	MaxFormMemory  = 16 * 1024
	SearchQueryKey = "q"
)

type Handler struct {
	Config         *config.Configuration
	client         client.Client
	SessionManager *scs.Manager
	metrics        *metrics.Metrics
	amounts        format.Amounts
	// locks serializes editor operations on the same wallet address.
	locks *mutexes.MutexMap
}

// NewSessionManager returns a session manager keeping session data in store. The cookie only
// carries the session token and is not sent on cross-site form posts.
func NewSessionManager(store scs.Store, config *config.Configuration) *scs.Manager {
	manager := scs.NewManager(store)
	manager.Name("donata_session")
	manager.Lifetime(config.SessionLifetime)
	manager.HttpOnly(true)
	manager.SameSite("Lax")
	manager.Secure(config.Url != nil && config.Url.Scheme == "https")
	return manager
}

func New(config *config.Configuration, c client.Client, manager *scs.Manager, m *metrics.Metrics) *Handler {
	locks := mutexes.MutexMap{}
	return &Handler{
		Config:         config,
		client:         c,
		SessionManager: manager,
		metrics:        m,
		amounts:        format.NewAmounts(config.Decimals, config.Currency, config.Language),
		locks:          &locks,
	}
}

// Package api serves the profile and donation records the front end reads through its
// data-access client. Every request must carry an HTTP signature from a known key.
package api

import (
	"context"
	"crypto"
	"errors"

	"github.com/go-chi/chi/v5"
	"github.com/sidereusnuntius/donata/internal/client"
	"github.com/sidereusnuntius/donata/internal/metrics"
	"github.com/sidereusnuntius/donata/internal/service"
	"golang.org/x/time/rate"
)

const (
	// MaxBodySize bounds request bodies.
	MaxBodySize = 64 * 1024
)

var ErrUnknownKey = errors.New("unknown key")

// Keys resolves the key id of a request signature to its public key.
type Keys interface {
	PublicKey(ctx context.Context, keyId string) (crypto.PublicKey, error)
}

// StaticKeys is a fixed set of trusted keys.
type StaticKeys map[string]crypto.PublicKey

func (k StaticKeys) PublicKey(_ context.Context, keyId string) (crypto.PublicKey, error) {
	key, ok := k[keyId]
	if !ok {
		return nil, ErrUnknownKey
	}
	return key, nil
}

type Handler struct {
	service service.Service
	keys    Keys
	limiter *RateLimiter
	metrics *metrics.Metrics
}

func New(s service.Service, keys Keys, requestsPerSecond float64, burst int, m *metrics.Metrics) *Handler {
	return &Handler{
		service: s,
		keys:    keys,
		limiter: NewRateLimiter(rate.Limit(requestsPerSecond), burst, m),
		metrics: m,
	}
}

func (h *Handler) Mount(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.Verify)
		r.Use(h.limiter.Handler)

		r.Get(client.ProfilesPath+"/{address}", h.GetProfile)
		r.Put(client.ProfilesPath+"/{address}", h.PutProfile)
		r.Get(client.ProfilesPath+"/{address}/"+client.RevisionsSegment, h.GetRevisions)
		r.Get(client.DonationsPath, h.GetDonations)
		r.Post(client.DonationsPath, h.PostDonation)
	})
}

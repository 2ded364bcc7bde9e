package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"sync"

	"code.superseriousbusiness.org/httpsig"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/client"
	"github.com/sidereusnuntius/donata/internal/metrics"
	"golang.org/x/time/rate"
)

var (
	ErrDigest = errors.New("body does not match digest")
)

type key struct{}

// KeyId returns the key id of the verified request signature.
func KeyId(ctx context.Context) string {
	id, _ := ctx.Value(key{}).(string)
	return id
}

// Verify rejects requests without a valid signature from a known key. Requests with a body
// must also carry a matching SHA-256 digest.
func (h *Handler) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		verifier, err := httpsig.NewVerifier(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing signature", "")
			return
		}

		keyId := verifier.KeyId()
		pub, err := h.keys.PublicKey(r.Context(), keyId)
		if err != nil {
			log.Warn().Err(err).Str("keyId", keyId).Msg("request signed by an unknown key")
			writeError(w, http.StatusUnauthorized, "unknown key", "")
			return
		}

		if err = verifier.Verify(pub, client.Algorithms[0]); err != nil {
			log.Warn().Err(err).Str("keyId", keyId).Msg("signature verification failed")
			writeError(w, http.StatusUnauthorized, "invalid signature", "")
			return
		}

		if r.Body != nil && r.Method != http.MethodGet {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
			if err != nil {
				writeError(w, http.StatusRequestEntityTooLarge, "body too large", "")
				return
			}
			if err = checkDigest(r.Header.Get("Digest"), body); err != nil {
				writeError(w, http.StatusUnauthorized, err.Error(), "")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), key{}, keyId)))
	})
}

func checkDigest(header string, body []byte) error {
	sum := sha256.Sum256(body)
	expected := "SHA-256=" + base64.StdEncoding.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(header), []byte(expected)) != 1 {
		return ErrDigest
	}
	return nil
}

// RateLimiter keeps one token bucket per signing key.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	metrics  *metrics.Metrics
}

func NewRateLimiter(r rate.Limit, burst int, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
		metrics:  m,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := KeyId(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}

		if !rl.getLimiter(key).Allow() {
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			rl.metrics.RateLimited(route)
			log.Warn().Str("key", key).Str("path", r.URL.Path).Msg("rate limit exceeded")

			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "")
			return
		}

		next.ServeHTTP(w, r)
	})
}

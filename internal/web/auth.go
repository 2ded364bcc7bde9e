package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/format"
	"github.com/sidereusnuntius/donata/templates"
)

const (
	SessionKey = "auth"
	// EditorKey holds the editor snapshot of the connected wallet.
	EditorKey = "editor"
)

type key struct{}

// GetAuth returns the wallet state of the request. The zero value means no wallet.
func GetAuth(ctx context.Context) domain.Auth {
	a, _ := ctx.Value(key{}).(domain.Auth)
	return a
}

func WithAuth(ctx context.Context, a domain.Auth) context.Context {
	return context.WithValue(ctx, key{}, a)
}

func SessionMiddleware(handler *Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := handler.SessionManager.Load(r)
			var a domain.Auth
			err := session.GetObject(SessionKey, &a)
			if err != nil {
				log.Warn().Err(err).Msg("unreadable session")
			} else if a != (domain.Auth{}) {
				r = r.WithContext(WithAuth(r.Context(), a))
			}

			h.ServeHTTP(w, r)
		})
	}
}

func AuthenticatedMiddleware(handler *Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetAuth(r.Context()).Authenticated {
				next.ServeHTTP(w, r)
				return
			}
			handler.render(w, r, http.StatusForbidden, "Wallet required", templates.PlaceError,
				templates.Message("Wallet required", "Connect your wallet to continue."))
		})
	}
}

// ConnectWallet marks the session as waiting for the wallet provider. The wallet bridge
// script then asks the provider for an account and reports it back.
func ConnectWallet(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := handler.SessionManager.Load(r)
		if err := session.PutObject(w, SessionKey, domain.Auth{Loading: true}); err != nil {
			log.Error().Err(err).Msg("failed to store session")
			handler.renderError(w, r, err)
			return
		}
		http.Redirect(w, r, back(r), http.StatusSeeOther)
	}
}

// WalletConnected is called by the wallet bridge once the provider answered with an account.
func WalletConnected(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		address, err := format.NormalizeAddress(r.Form.Get("address"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		session := handler.SessionManager.Load(r)
		prev := GetAuth(r.Context())
		if prev.Address != address {
			if err = session.Remove(w, EditorKey); err != nil {
				log.Warn().Err(err).Msg("failed to drop editor state")
			}
		}

		err = session.PutObject(w, SessionKey, domain.Auth{Address: address, Authenticated: true})
		if err != nil {
			log.Error().Err(err).Msg("failed to store session")
			handler.renderError(w, r, err)
			return
		}
		log.Debug().Str("address", address).Msg("wallet connected")
		http.Redirect(w, r, back(r), http.StatusSeeOther)
	}
}

func DisconnectWallet(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := handler.SessionManager.Load(r)
		if err := session.Destroy(w); err != nil {
			log.Error().Err(err).Msg("failed to destroy session")
		}
		http.Redirect(w, r, back(r), http.StatusSeeOther)
	}
}

// back is the local page the user came from, or the home page.
func back(r *http.Request) string {
	prev := r.FormValue("prev")
	if prev == "" {
		if u, err := url.Parse(r.Referer()); err == nil && u.Host == r.Host {
			prev = u.RequestURI()
		}
	}
	if !strings.HasPrefix(prev, "/") || strings.HasPrefix(prev, "//") {
		return HomePath
	}
	return prev
}

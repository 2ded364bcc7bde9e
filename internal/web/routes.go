package web

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/templates"
)

func (h *Handler) Mount(r chi.Router) {
	if h.Config.Debug {
		r.Use(Logger(log.Logger))
	}
	r.Use(RequestMetrics(h.metrics))
	r.Use(SessionMiddleware(h))

	r.Get(HomePath, Home(h))
	r.Get(SearchPath, Search(h))

	r.Route(WalletPath, func(r chi.Router) {
		r.Post("/connect", ConnectWallet(h))
		r.Post("/connected", WalletConnected(h))
		r.Post("/disconnect", DisconnectWallet(h))
	})

	r.Route(templates.ProfilePath, func(r chi.Router) {
		authenticated := AuthenticatedMiddleware(h)
		r.Get("/", GetProfile(h))
		r.With(authenticated).Post("/", SaveProfile(h))
		r.With(authenticated).Post("/edit", EditProfile(h))
		r.With(authenticated).Post("/cancel", CancelProfile(h))
		r.With(authenticated).Get("/history", ProfileHistory(h))
	})

	r.Route(DonationsPath+"/{address}", func(r chi.Router) {
		r.Get("/", GetDonations(h))
		r.Get("/list", GetDonationList(h))
	})

	r.Handle(MetricsPath, h.metrics.Handler())
	h.MountStaticRoutes(r)
}

func (h *Handler) MountStaticRoutes(r chi.Router) {
	wd, _ := os.Getwd()
	dir := h.Config.StaticDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(wd, dir)
	}
	f := os.DirFS(dir)

	fileServer := http.FileServer(http.FS(f))
	r.Handle("/static/{name}", http.StripPrefix(
		"/static/",
		fileServer,
	))
}

package templates

import (
	"github.com/a-h/templ"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/format"
)

//go:generate go tool templ generate

type Place int

const (
	PlaceHome Place = iota
	PlaceProfile
	PlaceDonations
	PlaceSearch
	PlaceError
)

const (
	HtmxScript   = "https://unpkg.com/htmx.org@2.0.4"
	WalletScript = "/static/wallet.js"
	Stylesheet   = "/static/style.css"
)

type PageData struct {
	SiteName  string
	PageTitle string
	Place     Place
	Auth      domain.Auth
	// Query is echoed back into the search input.
	Query string
	Child templ.Component
}

func pageTitle(d PageData) string {
	if d.PageTitle == "" {
		return d.SiteName
	}
	return d.PageTitle + " · " + d.SiteName
}

func walletState(a domain.Auth) string {
	switch {
	case a.Loading:
		return "loading"
	case a.Authenticated:
		return "connected"
	default:
		return "disconnected"
	}
}

// walletDisplay is the connected address in its checksummed form, when it has one.
func walletDisplay(a domain.Auth) string {
	display, err := format.ChecksumAddress(a.Address)
	if err != nil {
		return a.Address
	}
	return display
}

package web

import (
	"net/http"
	"strings"

	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/format"
	"github.com/sidereusnuntius/donata/templates"
)

func Home(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handler.render(w, r, http.StatusOK, "", templates.PlaceHome,
			templates.Home(handler.Config.Name, GetAuth(r.Context())))
	}
}

// Search redirects to the donations received by the searched address.
func Search(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get(SearchQueryKey))
		if q == "" {
			http.Redirect(w, r, HomePath, http.StatusSeeOther)
			return
		}

		address, err := format.NormalizeAddress(q)
		if err != nil {
			handler.renderPage(w, r, http.StatusBadRequest, templates.PageData{
				PageTitle: "Search",
				Place:     templates.PlaceSearch,
				Query:     q,
				Child:     templates.Message("Nothing found", q+" is not a wallet address."),
			})
			return
		}
		http.Redirect(w, r, templates.DonationsURL(address, domain.Recipient), http.StatusSeeOther)
	}
}

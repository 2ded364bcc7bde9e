package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/donations"
	"github.com/sidereusnuntius/donata/internal/format"
	"github.com/sidereusnuntius/donata/templates"
)

func subject(r *http.Request) (donations.Subject, error) {
	address, err := format.NormalizeAddress(chi.URLParam(r, "address"))
	if err != nil {
		return donations.Subject{}, err
	}
	role, err := domain.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		return donations.Subject{}, err
	}
	return donations.Subject{Address: address, Role: role}, nil
}

// GetDonations renders the list page in its loading state. The list itself is loaded by the
// page from GetDonationList.
func GetDonations(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := subject(r)
		if err != nil {
			handler.renderError(w, r, err)
			return
		}

		handler.render(w, r, http.StatusOK, "Donations", templates.PlaceDonations, templates.DonationsPage(templates.DonationsData{
			Address: s.Address,
			Role:    s.Role,
		}))
	}
}

// GetDonationList renders the list fragment of a subject.
func GetDonationList(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := subject(r)
		if err != nil {
			http.Error(w, err.Error(), GetCode(err))
			return
		}

		list := donations.New(handler.client)
		if err = list.Mount(r.Context(), s); err != nil {
			if errors.Is(err, donations.ErrStale) {
				handler.metrics.Stale("donations")
			}
			log.Error().Err(err).Str("address", s.Address).Str("role", string(s.Role)).Msg("failed to fetch donations")
		}

		err = templates.DonationList(templates.DonationListData{
			State:   list.State(),
			Role:    s.Role,
			Message: list.Message(),
			Rows:    list.Rows(handler.amounts),
		}).Render(r.Context(), w)
		if err != nil {
			log.Error().Err(err).Msg("failed to render donation list")
		}
	}
}

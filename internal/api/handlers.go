package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/client"
	"github.com/sidereusnuntius/donata/internal/db"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message, field string) {
	writeJSON(w, status, client.ErrorBody{Error: message, Field: field})
}

// GetCode maps a service error to the status it is answered with. Invalid input is a 422 on
// writes and a 400 on reads.
func GetCode(method string, err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput) && method == http.MethodGet:
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, db.ErrConflict), errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	code := GetCode(r.Method, err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("api request failed")
		writeError(w, code, "internal error", "")
		return
	}

	var ie *service.InputError
	if errors.As(err, &ie) {
		writeError(w, code, ie.Message, ie.Field)
		return
	}
	writeError(w, code, err.Error(), "")
}

func decode(r *http.Request, dst any) error {
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(dst); err != nil {
		return &service.InputError{Field: "body", Message: "malformed json: " + err.Error()}
	}
	return nil
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetRevisions lists the patches recorded for a profile, newest first.
func (h *Handler) GetRevisions(w http.ResponseWriter, r *http.Request) {
	revisions, err := h.service.GetRevisions(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, revisions)
}

// PutProfile replaces the editable fields of a profile. The address in the path wins over
// the one in the body.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var update domain.ProfileUpdate
	if err := decode(r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	update.Address = chi.URLParam(r, "address")

	p, err := h.service.UpdateProfile(r.Context(), update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) GetDonations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	role, err := domain.ParseRole(q.Get("role"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "role")
		return
	}

	donations, err := h.service.ListDonations(r.Context(), q.Get("address"), role)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, donations)
}

type recorded struct {
	ID string `json:"id"`
}

// PostDonation accepts a donation for recording. It is stored asynchronously.
func (h *Handler) PostDonation(w http.ResponseWriter, r *http.Request) {
	var d domain.Donation
	if err := decode(r, &d); err != nil {
		handleError(w, r, err)
		return
	}

	id, err := h.service.RecordDonation(r.Context(), d)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, recorded{ID: id})
}

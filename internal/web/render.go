package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/client"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/editor"
	"github.com/sidereusnuntius/donata/internal/format"
	"github.com/sidereusnuntius/donata/templates"
)

func GetCode(err error) int {
	switch {
	case errors.Is(err, client.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, format.ErrInvalidAddress), errors.Is(err, domain.ErrUnknownRole):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrRejected), errors.Is(err, editor.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, editor.ErrMode):
		return http.StatusConflict
	case errors.Is(err, client.ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, place templates.Place, child templ.Component) {
	h.renderPage(w, r, status, templates.PageData{
		PageTitle: title,
		Place:     place,
		Child:     child,
	})
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, data templates.PageData) {
	data.SiteName = h.Config.Name
	data.Auth = GetAuth(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Layout(data).Render(r.Context(), w); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to render page")
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := GetCode(err)
	var message string
	switch code {
	case http.StatusBadRequest, http.StatusNotFound:
		message = err.Error()
	case http.StatusInternalServerError:
		message = "Something went wrong. Try again."
	default:
		message = editor.Message(err)
	}
	h.render(w, r, code, http.StatusText(code), templates.PlaceError, templates.Message(http.StatusText(code), message))
}

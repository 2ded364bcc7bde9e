package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/diff"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/editor"
	"github.com/sidereusnuntius/donata/internal/format"
	"github.com/sidereusnuntius/donata/templates"
)

// ErrEditorState is returned by withEditor when the editor could not be stored back into the
// session. The returned editor still holds the result of the operation.
var ErrEditorState = errors.New("editor state not stored")

// SessionFailure is shown when the editor state could not be stored.
const SessionFailure = "Your session could not be updated. This page shows the latest result, but reloading it may not."

// withEditor runs f on the editor of the connected wallet, restored from the session, and
// stores the editor back once f returns. Calls for the same wallet are serialized.
func (h *Handler) withEditor(w http.ResponseWriter, r *http.Request, f func(ctx context.Context, e *editor.Editor) error) (*editor.Editor, error) {
	auth := GetAuth(r.Context())
	unlock := h.locks.Lock(auth.Address)
	defer unlock()

	session := h.SessionManager.Load(r)
	e := h.restore(session, auth)
	ferr := f(r.Context(), e)
	if errors.Is(ferr, editor.ErrStale) {
		h.metrics.Stale("editor")
	}

	if err := session.PutObject(w, EditorKey, e.Snapshot()); err != nil {
		log.Error().Err(err).Str("address", auth.Address).Msg("failed to store editor state")
		return e, fmt.Errorf("%w: %w", ErrEditorState, err)
	}
	return e, ferr
}

func (h *Handler) restore(session *scs.Session, auth domain.Auth) *editor.Editor {
	var s editor.Snapshot
	if err := session.GetObject(EditorKey, &s); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable editor state")
		return editor.New(h.client)
	}
	return editor.Restore(h.client, s, auth.Address)
}

// GetProfile shows the profile of the connected wallet. The record is fetched again on every
// visit unless an edit is in progress.
func GetProfile(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := GetAuth(r.Context())
		if !auth.Authenticated {
			handler.renderProfile(w, r, http.StatusOK, editor.New(handler.client))
			return
		}

		e, err := handler.withEditor(w, r, func(ctx context.Context, e *editor.Editor) error {
			if e.Mode() == editor.Edit {
				return nil
			}
			return e.Load(ctx, auth)
		})
		if handler.unstored(w, r, e, err) {
			return
		}
		if err != nil {
			log.Error().Err(err).Str("address", auth.Address).Msg("failed to load profile")
		}
		handler.renderProfile(w, r, http.StatusOK, e)
	}
}

func EditProfile(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := GetAuth(r.Context())
		e, err := handler.withEditor(w, r, func(ctx context.Context, e *editor.Editor) error {
			if e.Mode() == editor.Idle {
				if err := e.Load(ctx, auth); err != nil {
					return err
				}
			}
			return e.Edit()
		})
		if handler.unstored(w, r, e, err) {
			return
		}
		if err != nil {
			log.Error().Err(err).Str("address", auth.Address).Msg("cannot edit profile")
		}
		http.Redirect(w, r, templates.ProfilePath, http.StatusSeeOther)
	}
}

// SaveProfile applies the submitted form to the draft and saves it. Validation and remote
// failures are kept in the editor state and shown by the profile page.
func SaveProfile(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := GetAuth(r.Context())
		if err := r.ParseMultipartForm(MaxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		e, err := handler.withEditor(w, r, func(ctx context.Context, e *editor.Editor) error {
			if err := e.Apply(r.PostForm); err != nil {
				return err
			}
			return e.Save(ctx)
		})
		if handler.unstored(w, r, e, err) {
			return
		}
		if err != nil {
			log.Info().Err(err).Str("address", auth.Address).Msg("profile not saved")
		}
		http.Redirect(w, r, templates.ProfilePath, http.StatusSeeOther)
	}
}

func CancelProfile(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := handler.withEditor(w, r, func(_ context.Context, e *editor.Editor) error {
			return e.Cancel()
		})
		if handler.unstored(w, r, e, err) {
			return
		}
		if err != nil && !errors.Is(err, editor.ErrMode) {
			log.Error().Err(err).Msg("cannot cancel edit")
		}
		http.Redirect(w, r, templates.ProfilePath, http.StatusSeeOther)
	}
}

// unstored renders the editor as it is in memory when it could not be stored, since the next
// page would not see the result of the operation. It reports whether it wrote the response.
func (h *Handler) unstored(w http.ResponseWriter, r *http.Request, e *editor.Editor, err error) bool {
	if !errors.Is(err, ErrEditorState) {
		return false
	}
	e.Fail(SessionFailure)
	h.renderProfile(w, r, http.StatusInternalServerError, e)
	return true
}

// ProfileHistory lists the recorded changes of the connected wallet's profile, rebuilding the
// profile as it was after each of them.
func ProfileHistory(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := GetAuth(r.Context())
		revisions, err := handler.client.GetRevisions(r.Context(), auth.Address)
		if err != nil {
			log.Error().Err(err).Str("address", auth.Address).Msg("failed to fetch revisions")
			handler.renderError(w, r, err)
			return
		}
		handler.render(w, r, http.StatusOK, "Profile history", templates.PlaceProfile,
			templates.ProfileHistory(historyOf(auth.Address, revisions)))
	}
}

// historyOf turns revisions, newest first, into history entries in the same order.
func historyOf(address string, revisions []domain.Revision) templates.HistoryData {
	patches := make([]string, len(revisions))
	for i, rev := range revisions {
		patches[len(revisions)-1-i] = rev.Patch
	}
	versions, err := diff.Replay(patches)
	if err != nil {
		log.Warn().Err(err).Str("address", address).Msg("profile history only partly rebuilt")
	}

	entries := make([]templates.HistoryEntry, len(revisions))
	previous := diff.Render(domain.Profile{})
	for i := range patches {
		entry := templates.HistoryEntry{Date: format.Unix(revisions[len(revisions)-1-i].Created)}
		if i < len(versions) {
			for _, key := range diff.Changed(previous, versions[i]) {
				entry.Changes = append(entry.Changes, format.Title(key))
			}
			entry.Text = versions[i]
			previous = versions[i]
		}
		entries[len(revisions)-1-i] = entry
	}
	return templates.HistoryData{Address: address, Entries: entries}
}

func (h *Handler) renderProfile(w http.ResponseWriter, r *http.Request, status int, e *editor.Editor) {
	h.render(w, r, status, "Profile", templates.PlaceProfile, templates.Profile(templates.ProfileData{
		Auth:      GetAuth(r.Context()),
		Mode:      e.Mode(),
		Record:    e.Record(),
		Draft:     e.Draft(),
		Errors:    e.Errors(),
		FormError: e.FormError(),
		Links:     e.Links(),
	}))
}

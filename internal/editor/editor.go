// Package editor implements the profile editing interaction: a view/edit state machine over a
// fetched profile, a draft copy mutated while editing, and validation before each save.
package editor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/client"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/validate"
)

var (
	ErrInvalid      = errors.New("invalid draft")
	ErrReadOnly     = errors.New("read-only field")
	ErrUnknownField = errors.New("unknown field")
	ErrMode         = errors.New("operation not allowed in the current mode")
	// ErrStale is returned when a result arrived after the editor moved on to another request,
	// in which case the result was discarded.
	ErrStale = errors.New("stale result discarded")
)

type Mode int

const (
	// Idle means no profile has been loaded yet.
	Idle Mode = iota
	View
	Edit
)

func (m Mode) String() string {
	switch m {
	case View:
		return "view"
	case Edit:
		return "edit"
	default:
		return "idle"
	}
}

// Draft holds the textual values of the profile form. FID is text so that a tampered value can
// be validated; it is never submitted.
type Draft struct {
	Name    string
	Email   string
	FID     string
	Socials domain.Socials
}

func draftOf(p domain.Profile) Draft {
	d := Draft{
		Name:    p.Name,
		Email:   p.Email,
		Socials: p.Socials.Clone(),
	}
	if p.FID > 0 {
		d.FID = strconv.FormatInt(p.FID, 10)
	}
	return d
}

func (d Draft) rules() validate.Draft {
	return validate.Draft{
		Name:  strings.TrimSpace(d.Name),
		Email: strings.TrimSpace(d.Email),
		FID:   strings.TrimSpace(d.FID),
	}
}

// update builds the outgoing payload. The FID is left out: it is read only.
func (d Draft) update(address string) domain.ProfileUpdate {
	socials := domain.Socials{}
	for network, handle := range d.Socials {
		if handle = strings.TrimSpace(handle); handle != "" {
			socials[network] = handle
		}
	}
	return domain.ProfileUpdate{
		Address: address,
		Name:    strings.TrimSpace(d.Name),
		Email:   strings.TrimSpace(d.Email),
		Socials: socials,
	}
}

// token identifies one in-flight request. A result is applied only while its token is the
// latest one issued for the editor's identity.
type token struct {
	identity string
	seq      uint64
	cancel   context.CancelFunc
}

// Editor is safe for concurrent use. Network calls run without holding its lock.
type Editor struct {
	client client.Client

	mu       sync.Mutex
	mode     Mode
	identity string
	seq      uint64
	inflight *token
	record   domain.Profile
	draft    Draft
	errors   validate.FieldErrors
	formErr  string
}

func New(c client.Client) *Editor {
	return &Editor{client: c}
}

// begin issues a new token for identity. Switching identity cancels whatever is still in
// flight for the previous one and forgets its state.
func (e *Editor) begin(ctx context.Context, identity string) (context.Context, *token) {
	if identity != e.identity {
		if e.inflight != nil {
			e.inflight.cancel()
		}
		e.resetLocked()
		e.identity = identity
	}

	e.seq++
	ctx, cancel := context.WithCancel(ctx)
	t := &token{identity: identity, seq: e.seq, cancel: cancel}
	e.inflight = t
	return ctx, t
}

func (e *Editor) current(t *token) bool {
	return e.identity == t.identity && e.seq == t.seq
}

func (e *Editor) resetLocked() {
	e.mode = Idle
	e.identity = ""
	e.record = domain.Profile{}
	e.draft = Draft{}
	e.errors = nil
	e.formErr = ""
}

// Load fetches the profile of the authenticated wallet and shows it in view mode. When the
// wallet is not authenticated the editor goes back to Idle without any request. A failed fetch
// keeps the previous state and records a form error.
func (e *Editor) Load(ctx context.Context, auth domain.Auth) error {
	e.mu.Lock()
	if !auth.Authenticated || auth.Address == "" {
		if e.inflight != nil {
			e.inflight.cancel()
			e.inflight = nil
		}
		e.resetLocked()
		e.mu.Unlock()
		return nil
	}
	ctx, t := e.begin(ctx, auth.Address)
	e.mu.Unlock()
	defer t.cancel()

	p, err := e.client.GetProfile(ctx, auth.Address)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.current(t) {
		log.Debug().Str("address", t.identity).Msg("discarding stale profile fetch")
		return ErrStale
	}
	e.inflight = nil

	if err != nil {
		e.formErr = Message(err)
		return fmt.Errorf("fetching profile: %w", err)
	}

	e.record = p
	e.draft = draftOf(p)
	e.mode = View
	e.errors = nil
	e.formErr = ""
	return nil
}

// Edit moves from view to edit mode, starting from a fresh copy of the record.
func (e *Editor) Edit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.mode {
	case Edit:
		return nil
	case View:
		e.draft = draftOf(e.record)
		e.errors = nil
		e.formErr = ""
		e.mode = Edit
		return nil
	default:
		return ErrMode
	}
}

// Set changes one field of the draft. The address can never be changed.
func (e *Editor) Set(field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != Edit {
		return ErrMode
	}
	if err := e.setLocked(field, value); err != nil {
		return err
	}
	delete(e.errors, field)
	return nil
}

func (e *Editor) setLocked(field, value string) error {
	switch field {
	case validate.FieldAddress:
		return ErrReadOnly
	case validate.FieldName:
		e.draft.Name = value
	case validate.FieldEmail:
		e.draft.Email = value
	case validate.FieldFID:
		e.draft.FID = value
	default:
		if !isNetwork(field) {
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		if e.draft.Socials == nil {
			e.draft.Socials = domain.Socials{}
		}
		e.draft.Socials[field] = strings.TrimPrefix(value, "@")
	}
	return nil
}

// Apply sets every known field present in a submitted form. The address, if present, is
// ignored, as are fields the editor does not know about.
func (e *Editor) Apply(form url.Values) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != Edit {
		return ErrMode
	}
	for _, field := range Fields() {
		if !form.Has(field) {
			continue
		}
		if err := e.setLocked(field, form.Get(field)); err != nil {
			return err
		}
		delete(e.errors, field)
	}
	return nil
}

// Save validates the draft and, when it is valid, submits it. On success the returned record
// replaces the current one and the editor goes back to view mode. On failure the editor stays
// in edit mode with the error attached to a field or to the form.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.mode != Edit {
		e.mu.Unlock()
		return ErrMode
	}

	if err := validate.ProfileDraft(e.draft.rules()); err != nil {
		var fe validate.FieldErrors
		if errors.As(err, &fe) {
			e.errors = fe
		}
		e.formErr = ""
		e.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	update := e.draft.update(e.identity)
	ctx, t := e.begin(ctx, e.identity)
	e.mu.Unlock()
	defer t.cancel()

	p, err := e.client.UpdateProfile(ctx, update)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.current(t) {
		log.Debug().Str("address", t.identity).Msg("discarding stale profile update")
		return ErrStale
	}
	e.inflight = nil

	if err != nil {
		var rejected *client.RejectedError
		if errors.As(err, &rejected) && displayed(rejected.Field) {
			e.errors = validate.FieldErrors{rejected.Field: rejected.Message}
			e.formErr = ""
		} else {
			e.formErr = Message(err)
		}
		return fmt.Errorf("saving profile: %w", err)
	}

	e.record = p
	e.draft = draftOf(p)
	e.errors = nil
	e.formErr = ""
	e.mode = View
	return nil
}

// Cancel discards the draft, restoring it to the last fetched or saved record.
func (e *Editor) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == Idle {
		return ErrMode
	}
	e.draft = draftOf(e.record)
	e.errors = nil
	e.formErr = ""
	e.mode = View
	return nil
}

// Fail shows message as a form error without changing the mode, the record or the draft.
func (e *Editor) Fail(message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.formErr = message
}

func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *Editor) Identity() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identity
}

func (e *Editor) Record() domain.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record.Clone()
}

func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.draft
	d.Socials = d.Socials.Clone()
	return d
}

// Errors returns the per-field messages of the last failed save.
func (e *Editor) Errors() validate.FieldErrors {
	e.mu.Lock()
	defer e.mu.Unlock()
	fe := make(validate.FieldErrors, len(e.errors))
	for k, v := range e.errors {
		fe[k] = v
	}
	return fe
}

// FormError returns the message of the last failure not tied to a field.
func (e *Editor) FormError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.formErr
}

// Fields lists every form field in display order.
func Fields() []string {
	return append([]string{validate.FieldName, validate.FieldFID, validate.FieldEmail}, domain.SocialNetworks...)
}

// displayed reports whether the profile form has a place to show an error about field.
func displayed(field string) bool {
	if field == validate.FieldAddress {
		return true
	}
	for _, f := range Fields() {
		if f == field {
			return true
		}
	}
	return false
}

func isNetwork(field string) bool {
	for _, n := range domain.SocialNetworks {
		if n == field {
			return true
		}
	}
	return false
}

package editor

import (
	"github.com/sidereusnuntius/donata/internal/client"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/validate"
)

// Snapshot is the serializable state of an editor, kept in the user session between
// requests. In-flight requests are not part of it.
type Snapshot struct {
	Mode      Mode
	Identity  string
	Record    domain.Profile
	Draft     Draft
	Errors    validate.FieldErrors
	FormError string
}

func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Mode:      e.mode,
		Identity:  e.identity,
		Record:    e.record.Clone(),
		Draft:     e.draft,
		FormError: e.formErr,
	}
	s.Draft.Socials = s.Draft.Socials.Clone()
	if len(e.errors) > 0 {
		s.Errors = make(validate.FieldErrors, len(e.errors))
		for k, v := range e.errors {
			s.Errors[k] = v
		}
	}
	return s
}

// Restore rebuilds an editor from a snapshot. A snapshot taken for another identity than the
// given one is stale and yields an idle editor.
func Restore(c client.Client, s Snapshot, identity string) *Editor {
	e := New(c)
	if s.Identity == "" || s.Identity != identity {
		return e
	}
	e.mode = s.Mode
	e.identity = s.Identity
	e.record = s.Record
	e.draft = s.Draft
	e.errors = s.Errors
	e.formErr = s.FormError
	return e
}

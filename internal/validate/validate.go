package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

const MinNameLen = 2

// Field names used in forms, payloads and error maps.
const (
	FieldAddress = "address"
	FieldName    = "name"
	FieldFID     = "fid"
	FieldEmail   = "email"
)

// FieldErrors maps a field name to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, len(fields))
	for i, f := range fields {
		msgs[i] = f + ": " + fe[f]
	}
	return strings.Join(msgs, "; ")
}

func (fe FieldErrors) add(field string, err error) {
	if err != nil {
		fe[field] = err.Error()
	}
}

// Draft is the set of textual values a profile form holds. Every field is optional; social
// handles are free-form and carry no rule.
type Draft struct {
	Name  string
	Email string
	FID   string
}

// ProfileDraft applies the profile rules to a draft. It returns nil when the draft is valid,
// a FieldErrors otherwise.
func ProfileDraft(d Draft) error {
	errs := FieldErrors{}

	if d.Name != "" {
		errs.add(FieldName, Name(d.Name))
	}
	if d.Email != "" {
		errs.add(FieldEmail, Email(d.Email))
	}
	if d.FID != "" {
		errs.add(FieldFID, FID(d.FID))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func Name(name string) error {
	if utf8.RuneCountInString(name) < MinNameLen {
		return fmt.Errorf("name must be at least %d characters", MinNameLen)
	}
	return nil
}

func Email(email string) error {
	if len(email) == 0 {
		return errors.New("empty email")
	}
	a, err := mail.ParseAddress(email)
	if err != nil || a.Address != email {
		return errors.New("invalid email address")
	}
	return nil
}

func FID(fid string) error {
	n, err := strconv.ParseInt(fid, 10, 64)
	if err != nil || n <= 0 {
		return errors.New("must be a positive integer")
	}
	return nil
}

const txHashLen = 64

// TxHash checks a transaction hash: 0x followed by 64 hex digits.
func TxHash(hash string) error {
	if len(hash) != txHashLen+2 || !strings.HasPrefix(hash, "0x") {
		return errors.New("invalid transaction hash")
	}
	for _, c := range hash[2:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return errors.New("invalid transaction hash")
		}
	}
	return nil
}

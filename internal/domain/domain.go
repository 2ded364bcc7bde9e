package domain

import (
	"errors"
	"strings"
)

var ErrUnknownRole = errors.New("unknown role")

// Role selects whether a donation collection is filtered by donor or by recipient.
type Role string

const (
	Donor     Role = "donor"
	Recipient Role = "recipient"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case Donor, Recipient:
		return r, nil
	case "":
		return Recipient, nil
	default:
		return "", ErrUnknownRole
	}
}

// Counterpart is the role of the other party of a donation.
func (r Role) Counterpart() Role {
	if r == Donor {
		return Recipient
	}
	return Donor
}

// Auth is the authentication signal derived from the connected wallet. Loading is true
// while the wallet provider has been asked to connect but has not answered yet.
type Auth struct {
	Address       string
	Authenticated bool
	Loading       bool
}

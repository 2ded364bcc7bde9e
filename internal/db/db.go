package db

import (
	"context"
	"errors"

	"github.com/sidereusnuntius/donata/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would break a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

type DB interface {
	Profiles
	Donations
}

type Profiles interface {
	GetProfile(ctx context.Context, address string) (domain.Profile, error)
	// CreateProfile inserts an empty profile for address, assigning it the next free FID.
	// Creating a profile that already exists returns the existing one.
	CreateProfile(ctx context.Context, address string) (domain.Profile, error)
	// UpdateProfile replaces the editable fields of a profile and records patch as a new
	// revision, atomically.
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate, patch string) (domain.Profile, error)
	GetRevisions(ctx context.Context, address string) ([]domain.Revision, error)
}

type Donations interface {
	// InsertDonation stores a donation. A donation whose transaction was already recorded
	// yields ErrConflict.
	InsertDonation(ctx context.Context, d domain.Donation) error
	// GetDonations lists the donations in which address holds role, most recent block first.
	GetDonations(ctx context.Context, address string, role domain.Role) ([]domain.Donation, error)
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sidereusnuntius/donata/internal/domain"
)

var (
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid")
)

// InputError is an ErrInvalidInput tied to one field of the request.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

type Service interface {
	// GetProfile returns the profile of address, creating an empty one with a fresh FID the
	// first time the address is seen.
	GetProfile(ctx context.Context, address string) (domain.Profile, error)
	// UpdateProfile validates and stores a whole-record update, keeping a patch of the change
	// in the profile's history. The FID is never changed.
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Profile, error)
	GetRevisions(ctx context.Context, address string) ([]domain.Revision, error)
	ListDonations(ctx context.Context, address string, role domain.Role) ([]domain.Donation, error)
	// RecordDonation checks a donation and queues it for storage, returning the id it will
	// be stored under.
	RecordDonation(ctx context.Context, d domain.Donation) (string, error)
}

package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/db"
	"github.com/sidereusnuntius/donata/internal/diff"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/format"
	"github.com/sidereusnuntius/donata/internal/service"
	"github.com/sidereusnuntius/donata/internal/validate"
)

func normalize(address string) (string, error) {
	return normalizeField(address, validate.FieldAddress)
}

func normalizeField(address, field string) (string, error) {
	a, err := format.NormalizeAddress(address)
	if err != nil {
		return "", &service.InputError{Field: field, Message: err.Error()}
	}
	return a, nil
}

func (s *AppService) GetProfile(ctx context.Context, address string) (domain.Profile, error) {
	address, err := normalize(address)
	if err != nil {
		return domain.Profile{}, err
	}

	p, err := s.DB.GetProfile(ctx, address)
	if !errors.Is(err, db.ErrNotFound) {
		return p, err
	}

	// Two addresses created at once may compete for the same FID; the loser retries.
	for attempt := 0; attempt < 3; attempt++ {
		p, err = s.DB.CreateProfile(ctx, address)
		if !errors.Is(err, db.ErrConflict) {
			break
		}
	}
	if err == nil {
		log.Info().Str("address", address).Int64("fid", p.FID).Msg("created profile")
	}
	return p, err
}

func (s *AppService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.Profile, error) {
	update, err := s.clean(update)
	if err != nil {
		return domain.Profile{}, err
	}

	current, err := s.GetProfile(ctx, update.Address)
	if err != nil {
		return domain.Profile{}, err
	}

	next := domain.Profile{
		Address: current.Address,
		Name:    update.Name,
		FID:     current.FID,
		Email:   update.Email,
		Socials: update.Socials,
	}
	patch := diff.ProfilePatch(current, next)
	if patch == "" {
		return current, nil
	}

	p, err := s.DB.UpdateProfile(ctx, update, patch)
	if err != nil {
		return domain.Profile{}, err
	}
	log.Debug().Str("address", p.Address).Msg("profile updated")
	return p, nil
}

// clean trims the update and checks it against the profile rules. The first failing field,
// in field name order, is reported.
func (s *AppService) clean(update domain.ProfileUpdate) (domain.ProfileUpdate, error) {
	address, err := normalize(update.Address)
	if err != nil {
		return update, err
	}

	cleaned := domain.ProfileUpdate{
		Address: address,
		Name:    strings.TrimSpace(update.Name),
		Email:   strings.TrimSpace(update.Email),
		Socials: domain.Socials{},
	}

	err = validate.ProfileDraft(validate.Draft{Name: cleaned.Name, Email: cleaned.Email})
	var fe validate.FieldErrors
	if errors.As(err, &fe) {
		fields := make([]string, 0, len(fe))
		for f := range fe {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		return update, &service.InputError{Field: fields[0], Message: fe[fields[0]]}
	}

	for network, handle := range update.Socials {
		if !known(network) {
			return update, &service.InputError{Field: network, Message: fmt.Sprintf("unknown network %q", network)}
		}
		if handle = strings.TrimPrefix(strings.TrimSpace(handle), "@"); handle != "" {
			cleaned.Socials[network] = handle
		}
	}
	return cleaned, nil
}

func known(network string) bool {
	for _, n := range domain.SocialNetworks {
		if n == network {
			return true
		}
	}
	return false
}

func (s *AppService) GetRevisions(ctx context.Context, address string) ([]domain.Revision, error) {
	address, err := normalize(address)
	if err != nil {
		return nil, err
	}
	return s.DB.GetRevisions(ctx, address)
}

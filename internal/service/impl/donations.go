package core

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/service"
	"github.com/sidereusnuntius/donata/internal/validate"
)

func (s *AppService) ListDonations(ctx context.Context, address string, role domain.Role) ([]domain.Donation, error) {
	address, err := normalize(address)
	if err != nil {
		return nil, err
	}
	if role != domain.Donor && role != domain.Recipient {
		return nil, &service.InputError{Field: "role", Message: domain.ErrUnknownRole.Error()}
	}

	donations, err := s.DB.GetDonations(ctx, address, role)
	if donations == nil && err == nil {
		donations = []domain.Donation{}
	}
	return donations, err
}

func (s *AppService) RecordDonation(ctx context.Context, d domain.Donation) (string, error) {
	d, err := s.checkDonation(d)
	if err != nil {
		return "", err
	}
	if err = s.Queue.Record(ctx, d); err != nil {
		return "", fmt.Errorf("queueing donation: %w", err)
	}
	return d.ID, nil
}

func (s *AppService) checkDonation(d domain.Donation) (domain.Donation, error) {
	var err error
	if d.Donor, err = normalizeField(d.Donor, "donor"); err != nil {
		return d, err
	}
	if d.Recipient, err = normalizeField(d.Recipient, "recipient"); err != nil {
		return d, err
	}

	d.TxHash = strings.ToLower(strings.TrimSpace(d.TxHash))
	if err = validate.TxHash(d.TxHash); err != nil {
		return d, &service.InputError{Field: "txHash", Message: err.Error()}
	}
	if d.Timestamp <= 0 {
		return d, &service.InputError{Field: "timestamp", Message: "must be a positive integer"}
	}

	fields := []struct {
		name  string
		value *string
	}{
		{"amount", &d.Amount},
		{"recipientAmount", &d.RecipientAmount},
		{"fee", &d.Fee},
	}
	amounts := make([]*big.Int, len(fields))
	for i, f := range fields {
		n, err := s.amounts.Parse(*f.value)
		if err != nil {
			return d, &service.InputError{Field: f.name, Message: "must be a non-negative integer"}
		}
		amounts[i] = n
		*f.value = n.String()
	}
	if new(big.Int).Add(amounts[1], amounts[2]).Cmp(amounts[0]) != 0 {
		return d, &service.InputError{Field: "amount", Message: "must equal the recipient amount plus the fee"}
	}

	if d.ID == "" {
		d.ID = uuid.NewString()
	} else if _, err = uuid.Parse(d.ID); err != nil {
		return d, &service.InputError{Field: "id", Message: "must be a uuid"}
	}
	return d, nil
}

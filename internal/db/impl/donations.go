package impl

import (
	"context"

	"github.com/sidereusnuntius/donata/internal/db/impl/queries"
	"github.com/sidereusnuntius/donata/internal/domain"
)

func (d *dbImpl) InsertDonation(ctx context.Context, donation domain.Donation) error {
	err := d.queries.InsertDonation(ctx, queries.Donation{
		ID:              donation.ID,
		TxHash:          donation.TxHash,
		Donor:           donation.Donor,
		Recipient:       donation.Recipient,
		Amount:          donation.Amount,
		RecipientAmount: donation.RecipientAmount,
		Fee:             donation.Fee,
		BlockNumber:     int64(donation.BlockNumber),
		Timestamp:       donation.Timestamp,
	})
	return d.HandleError(err)
}

func (d *dbImpl) GetDonations(ctx context.Context, address string, role domain.Role) ([]domain.Donation, error) {
	var (
		rows []queries.Donation
		err  error
	)
	if role == domain.Donor {
		rows, err = d.queries.GetDonationsByDonor(ctx, address)
	} else {
		rows, err = d.queries.GetDonationsByRecipient(ctx, address)
	}
	if err != nil {
		return nil, d.HandleError(err)
	}

	donations := make([]domain.Donation, len(rows))
	for i, r := range rows {
		donations[i] = domain.Donation{
			ID:              r.ID,
			TxHash:          r.TxHash,
			Donor:           r.Donor,
			Recipient:       r.Recipient,
			Amount:          r.Amount,
			RecipientAmount: r.RecipientAmount,
			Fee:             r.Fee,
			BlockNumber:     uint64(r.BlockNumber),
			Timestamp:       r.Timestamp,
		}
	}
	return donations, nil
}

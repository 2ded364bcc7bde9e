package queries

import (
	"context"
)

const insertDonation = `INSERT INTO donations (
    id, tx_hash, donor, recipient, amount, recipient_amount, fee, block_number, timestamp
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertDonation(ctx context.Context, arg Donation) error {
	_, err := q.db.ExecContext(ctx, insertDonation,
		arg.ID,
		arg.TxHash,
		arg.Donor,
		arg.Recipient,
		arg.Amount,
		arg.RecipientAmount,
		arg.Fee,
		arg.BlockNumber,
		arg.Timestamp,
	)
	return err
}

const donationColumns = `SELECT id, tx_hash, donor, recipient, amount, recipient_amount, fee, block_number, timestamp FROM donations`

const getDonationsByDonor = donationColumns + ` WHERE donor = ? ORDER BY block_number DESC, id`

const getDonationsByRecipient = donationColumns + ` WHERE recipient = ? ORDER BY block_number DESC, id`

func (q *Queries) GetDonationsByDonor(ctx context.Context, donor string) ([]Donation, error) {
	return q.listDonations(ctx, getDonationsByDonor, donor)
}

func (q *Queries) GetDonationsByRecipient(ctx context.Context, recipient string) ([]Donation, error) {
	return q.listDonations(ctx, getDonationsByRecipient, recipient)
}

func (q *Queries) listDonations(ctx context.Context, query, address string) ([]Donation, error) {
	rows, err := q.db.QueryContext(ctx, query, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Donation
	for rows.Next() {
		var i Donation
		if err := rows.Scan(
			&i.ID,
			&i.TxHash,
			&i.Donor,
			&i.Recipient,
			&i.Amount,
			&i.RecipientAmount,
			&i.Fee,
			&i.BlockNumber,
			&i.Timestamp,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

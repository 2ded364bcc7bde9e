package domain

import "time"

// Donation is a single recorded transfer. Amounts are integers in base units (wei) written as
// decimal strings; RecipientAmount + Fee is expected to equal Amount.
type Donation struct {
	ID              string `json:"id"`
	TxHash          string `json:"txHash"`
	Donor           string `json:"donor"`
	Recipient       string `json:"recipient"`
	Amount          string `json:"amount"`
	RecipientAmount string `json:"recipientAmount"`
	Fee             string `json:"fee"`
	BlockNumber     uint64 `json:"blockNumber"`
	Timestamp       int64  `json:"timestamp"`
}

func (d Donation) Time() time.Time {
	return time.Unix(d.Timestamp, 0).UTC()
}

// Party returns the address holding the given role in the donation.
func (d Donation) Party(r Role) string {
	if r == Donor {
		return d.Donor
	}
	return d.Recipient
}

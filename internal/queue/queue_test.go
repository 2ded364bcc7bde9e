package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/sidereusnuntius/donata/internal/db"
	"github.com/sidereusnuntius/donata/internal/domain"
)

type fakeStore struct {
	inserted []domain.Donation
	err      error
}

func (f *fakeStore) InsertDonation(_ context.Context, d domain.Donation) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, d)
	return nil
}

func (f *fakeStore) GetDonations(context.Context, string, domain.Role) ([]domain.Donation, error) {
	return f.inserted, nil
}

func TestRecord(t *testing.T) {
	job := RecordJob{Donation: domain.Donation{ID: "d1", TxHash: "0xaa"}}

	cases := []struct {
		name     string
		storeErr error
		expected error
	}{
		{"stored", nil, nil},
		{"already recorded", db.ErrConflict, nil},
		{"store failure", errors.New("disk full"), errors.New("disk full")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{err: tc.storeErr}
			q := &donationQueueImpl{db: store}

			err := q.record()(context.Background(), job)
			if (err == nil) != (tc.expected == nil) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
			if tc.storeErr == nil && len(store.inserted) != 1 {
				t.Errorf("expected the donation to be stored, got %v", store.inserted)
			}
		})
	}
}

func TestRecordJobConfig(t *testing.T) {
	cfg := RecordJob{}.Config()
	if cfg.Name != RecordQueue {
		t.Errorf("unexpected queue name %s", cfg.Name)
	}
	if cfg.MaxAttempts < 2 {
		t.Errorf("expected retries, got %d attempts", cfg.MaxAttempts)
	}
}

package donations

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/donata/internal/client"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/format"
	mock_client "github.com/sidereusnuntius/donata/internal/mocks"
	"go.uber.org/mock/gomock"
)

const (
	recipient = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
	donor     = "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"
)

var ctx = context.Background()

func TestStatePrecedence(t *testing.T) {
	cases := []struct {
		name      string
		donations []domain.Donation
		err       error
		expected  State
	}{
		{"failed fetch", nil, client.ErrTransport, Failed},
		{"empty collection", []domain.Donation{}, nil, Empty},
		{"populated", []domain.Donation{{ID: "1"}}, nil, Populated},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := mock_client.NewMockClient(ctrl)
			m.EXPECT().GetDonations(gomock.Any(), recipient, domain.Recipient).Return(c.donations, c.err)

			l := New(m)
			if got := l.State(); got != Loading {
				t.Errorf("expected a fresh list to be loading, got %s", got)
			}

			err := l.Mount(ctx, Subject{recipient, domain.Recipient})
			if !errors.Is(err, c.err) {
				t.Errorf("expected %v, got %v", c.err, err)
			}
			if got := l.State(); got != c.expected {
				t.Errorf("expected %s, got %s", c.expected, got)
			}
			if c.err != nil && l.Message() == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestMount_FetchesOncePerSubject(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mock_client.NewMockClient(ctrl)
	m.EXPECT().GetDonations(gomock.Any(), recipient, domain.Recipient).Return([]domain.Donation{}, nil).Times(1)
	m.EXPECT().GetDonations(gomock.Any(), recipient, domain.Donor).Return([]domain.Donation{}, nil).Times(1)

	l := New(m)
	for i := 0; i < 3; i++ {
		if err := l.Mount(ctx, Subject{recipient, domain.Recipient}); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Mount(ctx, Subject{recipient, domain.Donor}); err != nil {
		t.Fatal(err)
	}
}

func TestMount_StaleResultIsDiscarded(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mock_client.NewMockClient(ctrl)

	started := make(chan struct{})
	m.EXPECT().GetDonations(gomock.Any(), donor, domain.Recipient).DoAndReturn(
		func(ctx context.Context, _ string, _ domain.Role) ([]domain.Donation, error) {
			close(started)
			<-ctx.Done()
			return []domain.Donation{{ID: "old"}}, nil
		})
	m.EXPECT().GetDonations(gomock.Any(), recipient, domain.Recipient).Return([]domain.Donation{}, nil)

	l := New(m)
	result := make(chan error)
	go func() {
		result <- l.Mount(ctx, Subject{donor, domain.Recipient})
	}()

	<-started
	if err := l.Mount(ctx, Subject{recipient, domain.Recipient}); err != nil {
		t.Fatal(err)
	}
	if err := <-result; !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale, got %v", err)
	}
	if got := l.State(); got != Empty {
		t.Errorf("expected the newer, empty result to be kept, got %s", got)
	}
}

func TestRows(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mock_client.NewMockClient(ctrl)
	m.EXPECT().GetDonations(gomock.Any(), recipient, domain.Recipient).Return([]domain.Donation{{
		ID:              "d1",
		TxHash:          "0xfeed",
		Donor:           donor,
		Recipient:       recipient,
		Amount:          "2500000000000000000",
		RecipientAmount: "2450000000000000000",
		Fee:             "50000000000000000",
		BlockNumber:     19000000,
		Timestamp:       1709683140,
	}}, nil)

	l := New(m)
	if err := l.Mount(ctx, Subject{recipient, domain.Recipient}); err != nil {
		t.Fatal(err)
	}

	expected := []Row{{
		ID:          "d1",
		TxHash:      "0xfeed",
		Donor:       donor,
		DonorShort:  "0xfb69...d359",
		Party:       donor,
		PartyShort:  "0xfb69...d359",
		Date:        "Mar 5, 2024",
		Amount:      "2.5 ETH",
		BlockNumber: 19000000,
	}}
	if diff := cmp.Diff(expected, l.Rows(format.NewAmounts(18, "ETH", "en"))); diff != "" {
		t.Error(diff)
	}
}

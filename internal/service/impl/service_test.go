package core

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sidereusnuntius/donata/internal/config"
	dbimpl "github.com/sidereusnuntius/donata/internal/db/impl"
	"github.com/sidereusnuntius/donata/internal/diff"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/initialization"
	"github.com/sidereusnuntius/donata/internal/service"
	"github.com/sidereusnuntius/donata/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "0xab00000000000000000000000000000000000012"
	bob   = "0xb0b0000000000000000000000000000000000000"
)

var ctx = context.Background()

// recorder stands in for the queue, keeping what it was given.
type recorder struct {
	mu        sync.Mutex
	donations []domain.Donation
	err       error
}

func (r *recorder) Record(_ context.Context, d domain.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.donations = append(r.donations, d)
	return nil
}

func newService(t *testing.T) (*AppService, *recorder) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := initialization.OpenDB("file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, initialization.SetupDB(d, "../../../migrations", path))

	cfg := config.Configuration{Decimals: 18, Currency: "ETH", Language: "en"}
	q := &recorder{}
	s := New(cfg, dbimpl.New(state.State{DB: d, Config: cfg}), q)
	return s.(*AppService), q
}

func TestGetProfile_CreatesOnFirstRead(t *testing.T) {
	s, _ := newService(t)

	first, err := s.GetProfile(ctx, "0x"+strings.ToUpper(alice[2:]))
	require.NoError(t, err)
	assert.Equal(t, alice, first.Address)
	assert.Equal(t, int64(1), first.FID)

	again, err := s.GetProfile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, first.FID, again.FID)

	other, err := s.GetProfile(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), other.FID)
}

func TestGetProfile_InvalidAddress(t *testing.T) {
	s, _ := newService(t)

	_, err := s.GetProfile(ctx, "0x12")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	var ie *service.InputError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "address", ie.Field)
}

func TestUpdateProfile(t *testing.T) {
	s, _ := newService(t)

	p, err := s.UpdateProfile(ctx, domain.ProfileUpdate{
		Address: alice,
		Name:    "  Alice ",
		Email:   "alice@example.com",
		Socials: domain.Socials{domain.GitHub: "@alice", domain.Lens: " "},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Profile{
		Address: alice,
		Name:    "Alice",
		FID:     1,
		Email:   "alice@example.com",
		Socials: domain.Socials{domain.GitHub: "alice"},
	}, p)

	stored, err := s.GetProfile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, p, stored)

	revisions, err := s.GetRevisions(ctx, alice)
	require.NoError(t, err)
	require.Len(t, revisions, 1)

	text, ok, err := diff.Apply(diff.Render(domain.Profile{Socials: domain.Socials{}}), revisions[0].Patch)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, diff.Render(p), text)
}

func TestUpdateProfile_UnchangedStoresNoRevision(t *testing.T) {
	s, _ := newService(t)
	update := domain.ProfileUpdate{Address: alice, Name: "Alice"}

	_, err := s.UpdateProfile(ctx, update)
	require.NoError(t, err)
	_, err = s.UpdateProfile(ctx, update)
	require.NoError(t, err)

	revisions, err := s.GetRevisions(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, revisions, 1)
}

func TestUpdateProfile_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		update domain.ProfileUpdate
		field  string
	}{
		{"short name", domain.ProfileUpdate{Address: alice, Name: "A"}, "name"},
		{"bad email", domain.ProfileUpdate{Address: alice, Email: "not-an-email"}, "email"},
		{"unknown network", domain.ProfileUpdate{Address: alice, Socials: domain.Socials{"myspace": "tom"}}, "myspace"},
		{"bad address", domain.ProfileUpdate{Address: "alice"}, "address"},
	}

	s, _ := newService(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.UpdateProfile(ctx, tc.update)
			var ie *service.InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tc.field, ie.Field)
		})
	}

	revisions, err := s.GetRevisions(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, revisions)
}

func donation() domain.Donation {
	return domain.Donation{
		TxHash:          "0x" + strings.Repeat("AB", 32),
		Donor:           bob,
		Recipient:       alice,
		Amount:          "1000",
		RecipientAmount: "990",
		Fee:             "10",
		BlockNumber:     7,
		Timestamp:       1709683140,
	}
}

func TestRecordDonation(t *testing.T) {
	s, q := newService(t)

	id, err := s.RecordDonation(ctx, donation())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, q.donations, 1)
	recorded := q.donations[0]
	assert.Equal(t, id, recorded.ID)
	assert.Equal(t, "0x"+strings.Repeat("ab", 32), recorded.TxHash)
}

func TestRecordDonation_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		change func(d *domain.Donation)
		field  string
	}{
		{"bad donor", func(d *domain.Donation) { d.Donor = "bob" }, "donor"},
		{"bad recipient", func(d *domain.Donation) { d.Recipient = "" }, "recipient"},
		{"bad hash", func(d *domain.Donation) { d.TxHash = "0x12" }, "txHash"},
		{"negative fee", func(d *domain.Donation) { d.Fee = "-1" }, "fee"},
		{"split mismatch", func(d *domain.Donation) { d.Fee = "11" }, "amount"},
		{"no timestamp", func(d *domain.Donation) { d.Timestamp = 0 }, "timestamp"},
		{"bad id", func(d *domain.Donation) { d.ID = "d1" }, "id"},
	}

	s, q := newService(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := donation()
			tc.change(&d)
			_, err := s.RecordDonation(ctx, d)
			var ie *service.InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tc.field, ie.Field)
		})
	}
	assert.Empty(t, q.donations)
}

func TestRecordDonation_QueueFailure(t *testing.T) {
	s, q := newService(t)
	q.err = errors.New("queue closed")

	_, err := s.RecordDonation(ctx, donation())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrInvalidInput)
}

func TestListDonations(t *testing.T) {
	s, _ := newService(t)

	empty, err := s.ListDonations(ctx, alice, domain.Recipient)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	older := donation()
	older.ID = "3f1c0a52-7b1e-4f5e-9c1a-0a9a3d6d2a01"
	newer := donation()
	newer.ID = "3f1c0a52-7b1e-4f5e-9c1a-0a9a3d6d2a02"
	newer.TxHash = "0x" + strings.Repeat("cd", 32)
	newer.BlockNumber = 9
	for _, d := range []domain.Donation{older, newer} {
		checked, err := s.checkDonation(d)
		require.NoError(t, err)
		require.NoError(t, s.DB.InsertDonation(ctx, checked))
	}

	received, err := s.ListDonations(ctx, alice, domain.Recipient)
	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Equal(t, newer.ID, received[0].ID)
	assert.Equal(t, older.ID, received[1].ID)

	given, err := s.ListDonations(ctx, alice, domain.Donor)
	require.NoError(t, err)
	assert.Empty(t, given)

	_, err = s.ListDonations(ctx, alice, "owner")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

// Package donations holds the read-only donation listing shown for a donor or a recipient.
package donations

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/client"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/editor"
	"github.com/sidereusnuntius/donata/internal/format"
)

const EmptyMessage = "No donations found."

var ErrStale = errors.New("stale donation list discarded")

// State is what the list currently shows. The order of the constants is the rendering
// precedence.
type State int

const (
	Loading State = iota
	Failed
	Empty
	Populated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "error"
	case Empty:
		return "empty"
	default:
		return "populated"
	}
}

// Subject identifies whose donations are listed.
type Subject struct {
	Address string
	Role    domain.Role
}

// List fetches the donations of a subject once per subject. A fetch still in flight when the
// subject changes is cancelled and its result discarded.
type List struct {
	client client.Client

	mu        sync.Mutex
	subject   Subject
	seq       uint64
	cancel    context.CancelFunc
	fetched   bool
	loading   bool
	err       error
	donations []domain.Donation
}

func New(c client.Client) *List {
	return &List{client: c}
}

// Mount shows the donations of subject, fetching them unless they were already fetched for
// that same subject.
func (l *List) Mount(ctx context.Context, subject Subject) error {
	l.mu.Lock()
	if l.fetched && l.subject == subject {
		l.mu.Unlock()
		return nil
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	seq := l.seq
	ctx, cancel := context.WithCancel(ctx)
	l.subject = subject
	l.cancel = cancel
	l.fetched = false
	l.loading = true
	l.err = nil
	l.donations = nil
	l.mu.Unlock()
	defer cancel()

	donations, err := l.client.GetDonations(ctx, subject.Address, subject.Role)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		log.Debug().Str("address", subject.Address).Msg("discarding stale donation list")
		return ErrStale
	}
	l.cancel = nil
	l.loading = false
	l.fetched = true
	if err != nil {
		l.err = err
		return fmt.Errorf("fetching donations: %w", err)
	}
	l.donations = donations
	return nil
}

func (l *List) Subject() Subject {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.subject
}

// State applies the precedence loading, error, empty, populated.
func (l *List) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.loading || !l.fetched:
		return Loading
	case l.err != nil:
		return Failed
	case len(l.donations) == 0:
		return Empty
	default:
		return Populated
	}
}

// Message is the text shown in the error state.
func (l *List) Message() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err == nil {
		return ""
	}
	return editor.Message(l.err)
}

// Row is a donation prepared for display.
type Row struct {
	ID          string
	TxHash      string
	Donor       string
	DonorShort  string
	Party       string
	PartyShort  string
	Date        string
	Amount      string
	BlockNumber uint64
}

// Rows formats the fetched donations. Party is the other side of each donation with respect
// to the listed subject.
func (l *List) Rows(amounts format.Amounts) []Row {
	l.mu.Lock()
	defer l.mu.Unlock()

	counterpart := l.subject.Role.Counterpart()
	rows := make([]Row, len(l.donations))
	for i, d := range l.donations {
		party := d.Party(counterpart)
		rows[i] = Row{
			ID:          d.ID,
			TxHash:      d.TxHash,
			Donor:       d.Donor,
			DonorShort:  format.TruncateAddress(d.Donor),
			Party:       party,
			PartyShort:  format.TruncateAddress(party),
			Date:        format.Unix(d.Timestamp),
			Amount:      amounts.Format(d.Amount),
			BlockNumber: d.BlockNumber,
		}
	}
	return rows
}

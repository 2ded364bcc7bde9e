package queue

import (
	"context"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/db"
	"github.com/sidereusnuntius/donata/internal/domain"
)

// DonationQueue records donations in the background, retrying failed writes.
type DonationQueue interface {
	Record(ctx context.Context, d domain.Donation) error
}

type donationQueueImpl struct {
	db     db.Donations
	queues *backlite.Client
}

// New registers the queues on blClient and starts processing tasks until ctx is done.
func New(ctx context.Context, db db.Donations, blClient *backlite.Client) DonationQueue {
	q := &donationQueueImpl{
		db:     db,
		queues: blClient,
	}
	q.register()
	q.queues.Start(ctx)
	log.Info().Msg("started task queue")
	return q
}

func (q *donationQueueImpl) register() {
	q.queues.Register(backlite.NewQueue[RecordJob](q.record()))
}

func (q *donationQueueImpl) Record(_ context.Context, d domain.Donation) error {
	log.Debug().Str("tx", d.TxHash).Msg("enqueuing donation")
	_, err := q.queues.Add(RecordJob{Donation: d}).Save()
	return err
}

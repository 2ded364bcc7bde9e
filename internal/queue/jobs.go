package queue

import (
	"context"
	"errors"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/db"
	"github.com/sidereusnuntius/donata/internal/domain"
)

const (
	RecordQueue = "RecordDonation"
)

type RecordJob struct {
	Donation domain.Donation
}

func (j RecordJob) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        RecordQueue,
		MaxAttempts: 5,
		Backoff:     5 * time.Second,
		Timeout:     10 * time.Second,
		Retention: &backlite.Retention{
			Duration:   12 * time.Hour,
			OnlyFailed: false,
			Data: &backlite.RetainData{
				OnlyFailed: true,
			},
		},
	}
}

func (q *donationQueueImpl) record() func(context.Context, RecordJob) error {
	return func(ctx context.Context, task RecordJob) error {
		err := q.db.InsertDonation(ctx, task.Donation)
		if errors.Is(err, db.ErrConflict) {
			log.Info().Str("tx", task.Donation.TxHash).Msg("donation already recorded")
			return nil
		}
		if err != nil {
			log.Error().Err(err).Str("tx", task.Donation.TxHash).Msg("failed to record donation")
		}
		return err
	}
}

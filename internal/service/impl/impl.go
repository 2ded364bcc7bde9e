package core

import (
	"github.com/sidereusnuntius/donata/internal/config"
	"github.com/sidereusnuntius/donata/internal/db"
	"github.com/sidereusnuntius/donata/internal/format"
	"github.com/sidereusnuntius/donata/internal/queue"
	"github.com/sidereusnuntius/donata/internal/service"
)

type AppService struct {
	Config  config.Configuration
	DB      db.DB
	Queue   queue.DonationQueue
	amounts format.Amounts
}

func New(config config.Configuration, db db.DB, queue queue.DonationQueue) service.Service {
	return &AppService{
		Config:  config,
		DB:      db,
		Queue:   queue,
		amounts: format.NewAmounts(config.Decimals, config.Currency, config.Language),
	}
}

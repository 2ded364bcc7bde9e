package impl

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/config"
	"github.com/sidereusnuntius/donata/internal/db"
	"github.com/sidereusnuntius/donata/internal/db/impl/queries"
	"github.com/sidereusnuntius/donata/internal/state"
)

type dbImpl struct {
	Config  config.Configuration
	db      *sql.DB
	queries *queries.Queries
}

func New(state state.State) db.DB {
	return &dbImpl{
		Config:  state.Config,
		db:      state.DB,
		queries: queries.New(state.DB),
	}
}

// HandleError takes a database error and returns a higher level error that hides the implementation details
// and can be more easily handled by the calling functions without doing type assertions, checking error codes and
// comparing to sentinel errors.
func (d *dbImpl) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrConflict):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return db.ErrNotFound
	case errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint:
		return db.ErrConflict
	default:
		log.Error().Err(err).Msg("database error")
		return err
	}
}

func (d *dbImpl) WithTx(f func(tx *queries.Queries) error) (err error) {
	tx, err := d.db.Begin()
	if err != nil {
		return d.HandleError(err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = d.HandleError(tx.Commit())
		}
	}()

	err = f(d.queries.WithTx(tx))
	return
}

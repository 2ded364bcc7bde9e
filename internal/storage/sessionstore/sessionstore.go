// Package sessionstore keeps scs session data in the sqlite database, so that a session is
// referenced by an opaque token in the cookie and its size is not bound by cookie limits.
package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	findSession   = `SELECT data FROM sessions WHERE token = ? AND expiry > ?`
	saveSession   = `INSERT INTO sessions (token, data, expiry) VALUES (?, ?, ?) ON CONFLICT (token) DO UPDATE SET data = excluded.data, expiry = excluded.expiry`
	deleteSession = `DELETE FROM sessions WHERE token = ?`
	deleteExpired = `DELETE FROM sessions WHERE expiry <= ?`
)

// Store implements scs.Store over the sessions table. Expiry is kept as unix nanoseconds.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a store over db. When cleanupInterval is positive, expired sessions are deleted
// on that interval until ctx is done.
func New(ctx context.Context, db *sql.DB, cleanupInterval time.Duration) *Store {
	s := &Store{db: db, now: time.Now}
	if cleanupInterval > 0 {
		go s.cleanup(ctx, cleanupInterval)
	}
	return s
}

func (s *Store) Find(token string) ([]byte, bool, error) {
	var b []byte
	err := s.db.QueryRow(findSession, token, s.now().UnixNano()).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Store) Save(token string, b []byte, expiry time.Time) error {
	_, err := s.db.Exec(saveSession, token, b, expiry.UnixNano())
	return err
}

func (s *Store) Delete(token string) error {
	_, err := s.db.Exec(deleteSession, token)
	return err
}

// DeleteExpired removes every session whose expiry has passed and reports how many were removed.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteExpired, s.now().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				log.Error().Err(err).Msg("failed to delete expired sessions")
				continue
			}
			if n > 0 {
				log.Debug().Int64("count", n).Msg("deleted expired sessions")
			}
		}
	}
}

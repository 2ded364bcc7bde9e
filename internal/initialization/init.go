// The init package contains functions that setup required dependencies such as the SQLite database.
package initialization

import (
	"crypto/rsa"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/config"
	"github.com/sidereusnuntius/donata/internal/queue"
	"github.com/sidereusnuntius/donata/internal/storage"
	"github.com/sidereusnuntius/donata/internal/storage/filestore"
	"github.com/sidereusnuntius/donata/internal/utils"
)

const (
	PrivateKeyFile = "private.pem"
	PublicKeyFile  = "public.pem"
)

// SetupDB creates the database, if it does not yet exist, and applies all remaining migrations.
func SetupDB(db *sql.DB, folder, dbname string) error {
	log.Info().Msg("starting migrations")
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		log.Error().Err(err).Msg("failed to create sqlite3 migration driver")
		return err
	}

	mig, err := migrate.NewWithDatabaseInstance(
		"file://"+folder,
		dbname,
		driver,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create Migrate object")
		return err
	}

	err = mig.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("database schema is up to date")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to run migrations")
	}
	return err
}

func OpenDB(connString string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", connString)
	if err != nil {
		log.Error().Err(err).Str("connection string", connString).Msg("failed to open database")
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Error().Err(err).Str("connection string", connString).Msg("failed to reach database")
		db.Close()
		return nil, err
	}
	return db, nil
}

// InitQueue creates the task queue client over db and installs its tables.
func InitQueue(cfg *config.Configuration, db *sql.DB) (*backlite.Client, error) {
	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		Logger:          queue.Logger{},
		ReleaseAfter:    10 * time.Minute,
		NumWorkers:      cfg.QueueWorkers,
		CleanupInterval: time.Hour,
	})
	if err != nil {
		return nil, err
	}

	if err = client.Install(); err != nil {
		return nil, err
	}
	return client, nil
}

// LoadSigningKey returns the key the data-access client signs its requests with, generating
// and storing a new one the first time.
func LoadSigningKey(cfg *config.Configuration) (*rsa.PrivateKey, error) {
	store, err := filestore.New(cfg.KeyDir)
	if err != nil {
		return nil, err
	}

	content, err := store.Open(PrivateKeyFile)
	if err == nil {
		return utils.ParsePrivateKeyPem(content)
	}
	if !errors.Is(err, storage.ErrNotExist) {
		return nil, err
	}

	log.Info().Str("dir", cfg.KeyDir).Msg("generating request signing key")
	pub, priv, err := utils.GenerateKeysPem(cfg.RsaKeySize)
	if err != nil {
		return nil, err
	}
	if err = store.Create(PrivateKeyFile, []byte(priv), 0o600); err != nil {
		return nil, err
	}
	if err = store.Create(PublicKeyFile, []byte(pub), 0o644); err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
		return nil, err
	}
	return utils.ParsePrivateKeyPem([]byte(priv))
}

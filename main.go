package main

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/api"
	"github.com/sidereusnuntius/donata/internal/client"
	"github.com/sidereusnuntius/donata/internal/config"
	db "github.com/sidereusnuntius/donata/internal/db/impl"
	"github.com/sidereusnuntius/donata/internal/domain"
	"github.com/sidereusnuntius/donata/internal/editor"
	"github.com/sidereusnuntius/donata/internal/initialization"
	"github.com/sidereusnuntius/donata/internal/metrics"
	"github.com/sidereusnuntius/donata/internal/queue"
	service "github.com/sidereusnuntius/donata/internal/service/impl"
	"github.com/sidereusnuntius/donata/internal/state"
	"github.com/sidereusnuntius/donata/internal/storage/sessionstore"
	"github.com/sidereusnuntius/donata/internal/web"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gob.Register(domain.Auth{})
	gob.Register(editor.Snapshot{})
	m := metrics.New()

	key, err := initialization.LoadSigningKey(&cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load the signing key")
	}

	c, err := client.New(&http.Client{Timeout: cfg.ApiTimeout}, cfg.ApiUrl, key, cfg.KeyId, m)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to create the api client")
	}

	d, err := initialization.OpenDB(cfg.DbUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to open the database")
	}
	defer d.Close()
	log.Info().Msg("database connection established")

	if err = initialization.SetupDB(d, cfg.MigrationsFolder, cfg.DbUrl); err != nil {
		log.Fatal().Err(err).Msg("unable to migrate the database")
	}

	manager := web.NewSessionManager(sessionstore.New(ctx, d, cfg.SessionCleanup), &cfg)

	router := chi.NewRouter()
	web.New(&cfg, c, manager, m).Mount(router)

	if cfg.EmbeddedApi {
		bl, err := initialization.InitQueue(&cfg, d)
		if err != nil {
			log.Fatal().Err(err).Msg("unable to set up the task queue")
		}

		dd := db.New(state.State{DB: d, Config: cfg})
		svc := service.New(cfg, dd, queue.New(ctx, dd, bl))
		api.New(svc, api.StaticKeys{cfg.KeyId: &key.PublicKey}, cfg.ApiRateLimit, cfg.ApiBurst, m).Mount(router)
		log.Info().Str("url", cfg.ApiUrl.String()).Msg("serving the embedded api")
	}

	s := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Uint16("port", cfg.Port).Msg("started server")
	if err = s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Send()
	}
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "DONATA"
	ConfigName = "donata"
)

type Configuration struct {
	// Name of the site, shown in the header and page titles.
	Name string
	// Port the HTTP server listens on.
	Port uint16
	// Url is the public url of the site.
	Url *url.URL
	// Debug, if true, will make the application log all HTTP requests.
	Debug bool
	// StaticDir is the directory holding the stylesheet and the wallet bridge script.
	StaticDir string
	// SessionLifetime bounds how long a wallet connection is remembered.
	SessionLifetime time.Duration
	// SessionCleanup is how often expired sessions are removed from the database.
	SessionCleanup time.Duration
	// ApiUrl is the base url of the remote service holding profiles and donations. When
	// EmbeddedApi is true and ApiUrl is empty, it points back at this instance.
	ApiUrl *url.URL
	// EmbeddedApi mounts the remote service under /api in this process.
	EmbeddedApi bool
	// ApiTimeout bounds every request made by the data-access client.
	ApiTimeout time.Duration
	// ApiRateLimit is the sustained number of requests per second a single client may make to
	// the embedded api; ApiBurst is the bucket size.
	ApiRateLimit float64
	ApiBurst     int
	// KeyDir is the directory in which the request signing key is kept.
	KeyDir string
	// KeyId identifies the signing key in outgoing request signatures.
	KeyId string
	// RsaKeySize is the size of the generated signing key.
	RsaKeySize int
	// DbUrl is the path to the database file holding sessions and the embedded api's data.
	DbUrl            string
	MigrationsFolder string
	// QueueWorkers is the number of goroutines recording donations.
	QueueWorkers int
	// Currency is the symbol appended to formatted amounts; Decimals is the number of base
	// units per whole coin, as a power of ten.
	Currency string
	Decimals int
	Language string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "donata")
	v.SetDefault("port", 8080)
	v.SetDefault("url", "http://localhost:8080")
	v.SetDefault("debug", false)
	v.SetDefault("static_dir", "static")
	v.SetDefault("session.lifetime", "168h")
	v.SetDefault("session.cleanup", "30m")
	v.SetDefault("api.url", "")
	v.SetDefault("api.embedded", true)
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.rate_limit", 20.0)
	v.SetDefault("api.burst", 40)
	v.SetDefault("api.key_dir", "keys")
	v.SetDefault("api.key_id", "donata-web")
	v.SetDefault("api.rsa_key_size", 2048)
	v.SetDefault("db.url", "file:donata.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_txlock=immediate")
	v.SetDefault("db.migrations", "migrations")
	v.SetDefault("queue.workers", 2)
	v.SetDefault("currency", "ETH")
	v.SetDefault("decimals", 18)
	v.SetDefault("language", "en")
}

// ReadConfig loads the configuration from an optional donata.yaml file, from the environment
// (DONATA_API_URL overrides api.url) and from an optional .env file loaded beforehand.
func ReadConfig() (Configuration, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Configuration{}, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/donata")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Configuration{}, fmt.Errorf("reading config file: %w", err)
		}
		log.Debug().Msg("no config file found, using defaults and environment")
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (cfg Configuration, err error) {
	cfg = Configuration{
		Name:             v.GetString("name"),
		Port:             v.GetUint16("port"),
		Debug:            v.GetBool("debug"),
		StaticDir:        v.GetString("static_dir"),
		SessionLifetime:  v.GetDuration("session.lifetime"),
		SessionCleanup:   v.GetDuration("session.cleanup"),
		EmbeddedApi:      v.GetBool("api.embedded"),
		ApiTimeout:       v.GetDuration("api.timeout"),
		ApiRateLimit:     v.GetFloat64("api.rate_limit"),
		ApiBurst:         v.GetInt("api.burst"),
		KeyDir:           v.GetString("api.key_dir"),
		KeyId:            v.GetString("api.key_id"),
		RsaKeySize:       v.GetInt("api.rsa_key_size"),
		DbUrl:            v.GetString("db.url"),
		MigrationsFolder: v.GetString("db.migrations"),
		QueueWorkers:     v.GetInt("queue.workers"),
		Currency:         v.GetString("currency"),
		Decimals:         v.GetInt("decimals"),
		Language:         v.GetString("language"),
	}

	if cfg.Url, err = url.Parse(v.GetString("url")); err != nil {
		return cfg, fmt.Errorf("invalid url: %w", err)
	}

	apiUrl := v.GetString("api.url")
	switch {
	case apiUrl != "":
		if cfg.ApiUrl, err = url.Parse(apiUrl); err != nil {
			return cfg, fmt.Errorf("invalid api url: %w", err)
		}
	case cfg.EmbeddedApi:
		cfg.ApiUrl = cfg.Url
	default:
		return cfg, errors.New("api.url is required when the embedded api is disabled")
	}

	if cfg.SessionLifetime <= 0 || cfg.SessionCleanup <= 0 {
		return cfg, errors.New("session.lifetime and session.cleanup must be positive")
	}
	return cfg, nil
}

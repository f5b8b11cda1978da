package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Session      SessionConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOCKLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKLINE_DB_DSN"`
	Driver string `envconfig:"STOCKLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKLINE_DB_USER"`
	LegacyPassword string `envconfig:"STOCKLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// SessionConfig tunes the in-memory draft store.
type SessionConfig struct {
	IdleTTL       time.Duration `envconfig:"STOCKLINE_SESSION_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"STOCKLINE_SESSION_SWEEP_INTERVAL" default:"1m"`
	SearchLimit   int           `envconfig:"STOCKLINE_SESSION_SEARCH_LIMIT" default:"15"`
	DateWindow    int           `envconfig:"STOCKLINE_SESSION_DATE_WINDOW_DAYS" default:"7"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKLINE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

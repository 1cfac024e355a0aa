package app

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/httpserver"
	"github.com/dmitrymomot/adaptive/pkg/ratelimiter"
	"github.com/dmitrymomot/adaptive/pkg/redis"
	"github.com/dmitrymomot/adaptive/pkg/validator"
)

// Snapshot store backends.
const (
	StoreNone   = "none"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

var storeKinds = []string{StoreNone, StoreMemory, StoreRedis, StoreSQLite}

// Config is the daemon configuration read from the environment.
type Config struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	Service   string `env:"APP_NAME" envDefault:"adaptived"`
	LogLevel  string `env:"LOG_LEVEL"`  // overrides the environment default
	LogFormat string `env:"LOG_FORMAT"` // json or text

	Upstream  string `env:"ADAPTIVE_UPSTREAM"` // origin to proxy; empty serves StaticDir
	StaticDir string `env:"ADAPTIVE_STATIC_DIR" envDefault:"public"`
	MountPath string `env:"ADAPTIVE_MOUNT_PATH" envDefault:"/_adaptive"`
	Profile   string `env:"ADAPTIVE_PROFILE"` // YAML optimization profile, watched for changes
	MaxBody   int    `env:"ADAPTIVE_MAX_BODY" envDefault:"2097152"`

	Store         string        `env:"ADAPTIVE_STORE" envDefault:"memory"`
	SQLitePath    string        `env:"ADAPTIVE_SQLITE_PATH" envDefault:"data/adaptive.db"`
	SnapshotTTL   time.Duration `env:"ADAPTIVE_SNAPSHOT_TTL" envDefault:"24h"`
	SessionTTL    time.Duration `env:"ADAPTIVE_SESSION_TTL" envDefault:"30m"`
	Sessions      int           `env:"ADAPTIVE_SESSION_CAPACITY" envDefault:"10000"`
	SecureCookie  bool          `env:"ADAPTIVE_SECURE_COOKIE" envDefault:"false"`
	PruneInterval time.Duration `env:"ADAPTIVE_PRUNE_INTERVAL" envDefault:"1m"`

	// RateLimit throttles telemetry requests per session, or per client IP
	// before a session exists. A zero capacity disables it.
	RateLimit ratelimiter.Config `envPrefix:"ADAPTIVE_RATELIMIT_"`

	HTTP  httpserver.Config
	Redis redis.Config
}

// Validate implements config.Validator.
func (c Config) Validate() error {
	err := validator.Apply(
		validator.OneOf("store", c.Store, storeKinds),
		validator.Min("session_capacity", c.Sessions, 1),
		validator.Min("max_body", c.MaxBody, 1),
		validator.OneOf("log_format", strings.ToLower(c.LogFormat), []string{"", "json", "text"}),
	)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(c.MountPath, "/") || c.MountPath == "/" {
		return ErrMountPath
	}
	if c.Store == StoreRedis && !c.Redis.Enabled() {
		return ErrRedisRequired
	}
	if _, err := c.Level(); err != nil {
		return errors.Join(ErrLogLevel, err)
	}
	return nil
}

// Level parses LogLevel. It returns nil when no override is set.
func (c Config) Level() (*slog.Level, error) {
	if c.LogLevel == "" {
		return nil, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, err
	}
	return &l, nil
}

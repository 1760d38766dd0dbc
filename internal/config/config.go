package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env   string `envconfig:"APP_ENV" default:"production"`
	Port  int    `envconfig:"PORT" default:"3000"`
	Store string `envconfig:"STORE" default:"postgres"`

	// DATABASE_URL wins over the discrete DB_* parts when set.
	DBURL      string `envconfig:"DATABASE_URL"`
	DBHost     string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"coursehub"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"coursehub"`
	DBName     string `envconfig:"DB_NAME" default:"coursehub"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"5"`
	// statements are logged at debug; only development shows them by default
	DBLogQueries bool `envconfig:"DB_LOG_QUERIES" default:"true"`

	JWTSecret          string        `envconfig:"JWT_SECRET"`
	// JWT_EXPIRES_IN is a Go duration ("12h") or whole days ("90d").
	JWTExpiresInRaw    string        `envconfig:"JWT_EXPIRES_IN" default:"90d"`
	JWTExpiresIn       time.Duration `ignored:"true"`
	JWTCookieExpiresIn int           `envconfig:"JWT_COOKIE_EXPIRES_IN" default:"90"`

	BcryptCost       int           `envconfig:"BCRYPT_COST" default:"12"`
	PasswordResetTTL time.Duration `envconfig:"PASSWORD_RESET_TTL" default:"10m"`
	ResetURLBase     string        `envconfig:"RESET_URL_BASE" default:"http://localhost:3000/api/v1/resetPassword"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"30s"`

	RateLimit    int           `envconfig:"RATE_LIMIT" default:"100"`
	RateWindow   time.Duration `envconfig:"RATE_WINDOW" default:"1h"`
	MaxBodyBytes int64         `envconfig:"MAX_BODY_BYTES" default:"10240"`
	CORSOrigins  []string      `envconfig:"CORS_ORIGINS" default:"*"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`

	OTelEndpoint    string  `envconfig:"OTEL_ENDPOINT"`
	OTelSampleRatio float64 `envconfig:"OTEL_SAMPLE_RATIO" default:"1"`
	ServiceName     string  `envconfig:"SERVICE_NAME" default:"coursehub"`

	// transactions listing has no gate unless this is set
	TransactionsRequireAuth bool `envconfig:"TRANSACTIONS_REQUIRE_AUTH" default:"false"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	AdminName     string `envconfig:"ADMIN_NAME" default:"Administrator"`

	WorkerConcurrency  int           `envconfig:"WORKER_CONCURRENCY" default:"4"`
	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"500ms"`
	WorkerHealthAddr   string        `envconfig:"WORKER_HEALTH_ADDR" default:":8081"`
	WorkerShutdown     time.Duration `envconfig:"WORKER_SHUTDOWN_GRACE" default:"10s"`
}

// Load reads the optional env files (config.env by default) and then the
// process environment. Values already present in the environment win.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{"config.env"}
	}

	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}

	ttl, err := ParseDuration(cfg.JWTExpiresInRaw)
	if err != nil {
		return Config{}, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	cfg.JWTExpiresIn = ttl

	cfg.Env = strings.TrimSpace(cfg.Env)
	if cfg.Env == "" {
		cfg.Env = EnvProduction
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects configurations the token codec cannot work with.
func (c Config) Validate() error {
	if c.JWTSecret == "" || c.JWTExpiresIn <= 0 {
		return errors.New("JWT_SECRET and JWT_EXPIRES_IN must be defined in environment variables")
	}
	if c.JWTCookieExpiresIn <= 0 {
		return errors.New("JWT_COOKIE_EXPIRES_IN must be a positive number of days")
	}

	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}

	return nil
}

// ParseDuration accepts time.ParseDuration input plus a whole number of
// days with a "d" suffix.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func (c Config) CookieTTL() time.Duration {
	return time.Duration(c.JWTCookieExpiresIn) * 24 * time.Hour
}

func (c Config) DatabaseURL() string {
	if c.DBURL != "" {
		return c.DBURL
	}

	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

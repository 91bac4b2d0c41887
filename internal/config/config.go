// Package config loads settings for the table API and the storefront CLI
// from an optional .env file, an optional config.yaml and the environment,
// in increasing order of precedence.
package config

import (
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// DefaultFiles are the YAML files consulted when no explicit path is given.
var DefaultFiles = []string{"config.yaml", "/etc/storefront/config.yaml"}

// TableAPI configures cmd/tableapi.
type TableAPI struct {
	Port string `env:"PORT" yaml:"port" default:"3000"`

	DatabaseURL              string `env:"DATABASE_URL" yaml:"database_url"`
	DBServer                 string `env:"DB_SERVER" yaml:"db_server" default:"localhost"`
	DBPort                   int    `env:"DB_PORT" yaml:"db_port" default:"5432"`
	DBUser                   string `env:"DB_USER" yaml:"db_user" default:"developer"`
	DBPassword               string `env:"DB_PASSWORD" yaml:"db_password"`
	DBName                   string `env:"DB_NAME" yaml:"db_name" default:"service_business"`
	DBEncrypt                bool   `env:"DB_ENCRYPT" yaml:"db_encrypt" default:"false"`
	DBTrustServerCertificate bool   `env:"DB_TRUST_SERVER_CERTIFICATE" yaml:"db_trust_server_certificate" default:"false"`

	PoolMaxConns    int           `env:"DB_POOL_MAX" yaml:"db_pool_max" default:"10"`
	PoolMinConns    int           `env:"DB_POOL_MIN" yaml:"db_pool_min" default:"0"`
	PoolIdleTimeout time.Duration `env:"DB_POOL_IDLE_TIMEOUT" yaml:"db_pool_idle_timeout" default:"30s"`
	Migrate         bool          `env:"DB_MIGRATE" yaml:"db_migrate" default:"false"`

	FrontendURL string        `env:"FRONTEND_URL" yaml:"frontend_url" default:"http://localhost:4220"`
	RateLimit   int           `env:"API_RATE_LIMIT" yaml:"api_rate_limit" default:"100"`
	RateWindow  time.Duration `env:"API_RATE_WINDOW" yaml:"api_rate_window" default:"15m"`
	JWTSecret   string        `env:"API_JWT_SECRET" yaml:"api_jwt_secret"`
	TrustProxy  bool          `env:"API_TRUST_PROXY" yaml:"api_trust_proxy" default:"false"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" yaml:"metrics_enabled" default:"true"`
	MetricsToken   string `env:"METRICS_TOKEN" yaml:"metrics_token"`
	LogLevel       string `env:"LOG_LEVEL" yaml:"log_level" default:"info"`
}

// Storefront configures cmd/storefront.
type Storefront struct {
	DataDir  string        `env:"STOREFRONT_DATA_DIR" yaml:"data_dir" default:".storefront"`
	APIURL   string        `env:"STOREFRONT_API_URL" yaml:"api_url" default:"http://localhost:3000"`
	Delay    time.Duration `env:"STOREFRONT_DELAY" yaml:"delay" default:"500ms"`
	Auth     string        `env:"STOREFRONT_AUTH" yaml:"auth" default:"simulated"`
	Language string        `env:"STOREFRONT_LANG" yaml:"language"`

	JWTSecret string        `env:"API_JWT_SECRET" yaml:"api_jwt_secret"`
	TokenTTL  time.Duration `env:"STOREFRONT_TOKEN_TTL" yaml:"token_ttl" default:"24h"`
	LogLevel  string        `env:"LOG_LEVEL" yaml:"log_level" default:"warn"`
}

const (
	AuthSimulated   = "simulated"
	AuthCredentials = "credentials"
)

func LoadTableAPI(files ...string) (*TableAPI, error) {
	var cfg TableAPI
	if err := load(&cfg, files); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadStorefront(files ...string) (*Storefront, error) {
	var cfg Storefront
	if err := load(&cfg, files); err != nil {
		return nil, err
	}
	if cfg.Auth != AuthSimulated && cfg.Auth != AuthCredentials {
		return nil, errors.Errorf("STOREFRONT_AUTH must be %q or %q, got %q", AuthSimulated, AuthCredentials, cfg.Auth)
	}
	return &cfg, nil
}

func load(dst any, files []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "load .env")
	}

	if len(files) == 0 {
		files = DefaultFiles
	}
	loader := aconfig.LoaderFor(dst, aconfig.Config{
		SkipFlags:          true,
		AllowUnknownEnvs:   true,
		AllowUnknownFields: true,
		Files:              files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
			".yml":  aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return errors.Wrap(err, "load config")
	}
	return nil
}

func (c *TableAPI) validate() error {
	switch {
	case c.RateLimit < 1:
		return errors.New("API_RATE_LIMIT must be positive")
	case c.RateWindow <= 0:
		return errors.New("API_RATE_WINDOW must be positive")
	case c.PoolMaxConns < 1:
		return errors.New("DB_POOL_MAX must be positive")
	case c.PoolMinConns < 0 || c.PoolMinConns > c.PoolMaxConns:
		return errors.New("DB_POOL_MIN must be between 0 and DB_POOL_MAX")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.Wrapf(err, "PORT %q", c.Port)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *TableAPI) Addr() string { return ":" + c.Port }

// SSLMode translates the encrypt and trust-certificate switches to a
// libpq sslmode.
func (c *TableAPI) SSLMode() string {
	switch {
	case !c.DBEncrypt:
		return "disable"
	case c.DBTrustServerCertificate:
		return "require"
	default:
		return "verify-full"
	}
}

// DSN returns DATABASE_URL when set and otherwise builds a postgres URL from
// the DB_* settings.
func (c *TableAPI) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.DBServer, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode()}}.Encode(),
	}
	if c.DBPassword != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	} else {
		u.User = url.User(c.DBUser)
	}
	return u.String()
}

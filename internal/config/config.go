package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Category is a configured catalog to scan.
type Category struct {
	// Name identifies the category in reports and API requests.
	Name string `yaml:"name"`
	// CatalogURL is the source marketplace catalog page. When empty the
	// search results for SearchTerm are scanned instead.
	CatalogURL string `yaml:"catalogUrl"`
	// SearchTerm is used for the reference lookup of every listing of the
	// category. When empty a term is derived from each listing title.
	SearchTerm string `yaml:"searchTerm"`
}

// Config represents the application configuration structure.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response.
		// A manual scan is answered synchronously, so this has to cover a whole run.
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// AllowedOrigins restricts CORS to the listed origins. Empty allows any origin
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-separator:"," yaml:"allowedOrigins"`
		// RiverUI mounts the job queue dashboard under /riverui/ when the database is enabled
		RiverUI bool `env:"HTTP_RIVER_UI" env-default:"false" yaml:"riverUi"`
	} `yaml:"http"`

	// Database contains all database connection related configurations
	Database struct {
		// Enabled turns on scan history persistence and the background scheduler
		Enabled bool `env:"DATABASE_ENABLED" env-default:"false" yaml:"enabled"`
		// Username for database authentication
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		// Password for database authentication
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		// Host is the database server hostname or IP address
		Host string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		// Port is the database server port number
		Port int `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		// DatabaseName is the name of the database to connect to
		DatabaseName string `env:"DATABASE_NAME" env-default:"arbitrage" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"2" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Scan configures the orchestrator.
	Scan struct {
		// Categories are scanned in order on every run
		Categories []Category `yaml:"categories"`
		// MinROI is the default ROI threshold in percent
		MinROI float64 `env:"SCAN_MIN_ROI" env-default:"30" yaml:"minRoi"`
		// WindowStartHour and WindowEndHour bound the hours scans may run in. Equal values allow any hour
		WindowStartHour int `env:"SCAN_WINDOW_START_HOUR" env-default:"8" yaml:"windowStartHour"`
		WindowEndHour   int `env:"SCAN_WINDOW_END_HOUR" env-default:"22" yaml:"windowEndHour"`
		// Timezone is the IANA zone the window hours are interpreted in
		Timezone string `env:"SCAN_TIMEZONE" env-default:"Europe/Berlin" yaml:"timezone"`
		// Interval is the period of scheduled scans. Zero disables scheduling
		Interval time.Duration `env:"SCAN_INTERVAL" env-default:"2h" yaml:"interval"`
		// CategoryConcurrency is how many categories are scanned at once
		CategoryConcurrency int `env:"SCAN_CATEGORY_CONCURRENCY" env-default:"1" yaml:"categoryConcurrency"`
		// MaxListingsPerCategory caps evaluated listings per category, 0 means no cap
		MaxListingsPerCategory int `env:"SCAN_MAX_LISTINGS_PER_CATEGORY" env-default:"0" yaml:"maxListingsPerCategory"`
		// SearchTermWords is how many title words make up a derived reference search term
		SearchTermWords int `env:"SCAN_SEARCH_TERM_WORDS" env-default:"4" yaml:"searchTermWords"`
		// MinTitleSimilarity enables the comparable relevance filter when greater than zero
		MinTitleSimilarity float64 `env:"SCAN_MIN_TITLE_SIMILARITY" env-default:"0" yaml:"minTitleSimilarity"`
	} `yaml:"scan"`

	// Fetch configures marketplace access.
	Fetch struct {
		// Mode is "http" or "browser"
		Mode string `env:"FETCH_MODE" env-default:"http" yaml:"mode"`
		// Timeout bounds each page fetch
		Timeout time.Duration `env:"FETCH_TIMEOUT" env-default:"30s" yaml:"timeout"`
		// MinDelay and MaxDelay bound the jittered cooldown between requests to the same host
		MinDelay time.Duration `env:"FETCH_MIN_DELAY" env-default:"2s" yaml:"minDelay"`
		MaxDelay time.Duration `env:"FETCH_MAX_DELAY" env-default:"5s" yaml:"maxDelay"`
		// Headless runs the browser without a window in browser mode
		Headless bool `env:"FETCH_HEADLESS" env-default:"true" yaml:"headless"`
		// SourceOrigin and ReferenceOrigin are the marketplace origins
		SourceOrigin    string `env:"FETCH_SOURCE_ORIGIN" env-default:"https://www.vinted.de" yaml:"sourceOrigin"`
		ReferenceOrigin string `env:"FETCH_REFERENCE_ORIGIN" env-default:"https://www.ebay.de" yaml:"referenceOrigin"`
	} `yaml:"fetch"`

	// Fees is the transaction cost model applied to the buy price.
	Fees struct {
		Flat    float64 `env:"FEES_FLAT" env-default:"0" yaml:"flat"`
		Percent float64 `env:"FEES_PERCENT" env-default:"0" yaml:"percent"`
	} `yaml:"fees"`

	// SMTP configures the e-mail digest. Notifications are disabled when Host is empty.
	SMTP struct {
		Host     string   `env:"SMTP_HOST" yaml:"host"`
		Port     int      `env:"SMTP_PORT" env-default:"587" yaml:"port"`
		Username string   `env:"SMTP_USERNAME" yaml:"username"`
		Password string   `env:"SMTP_PASSWORD" yaml:"password"`
		From     string   `env:"SMTP_FROM" yaml:"from"`
		To       []string `env:"SMTP_TO" env-separator:"," yaml:"to"`
		// Timeout bounds one SMTP conversation
		Timeout time.Duration `env:"SMTP_TIMEOUT" env-default:"30s" yaml:"timeout"`
	} `yaml:"smtp"`

	// JWT configures bearer authentication of the API. Authentication is off when PublicKey is empty.
	JWT struct {
		// PublicKey is the PEM encoded RSA key used to verify tokens
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// PrivateKey is the PEM encoded RSA key used by the jwt command to sign tokens
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
	} `yaml:"jwt"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}

package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"./putcast.db" description:"Path to the SQLite database file"`

	// HTTP server
	Port          string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl       string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://putcast.example.com)"`
	SessionSecret string `long:"session-secret" env:"SESSION_SECRET" default:"change-me" description:"Secret used to sign session cookies"`

	// put.io API
	PutioAPIURL        string `long:"putio-api-url" env:"PUTIO_API_URL" default:"https://api.put.io/v2" description:"put.io API base URL"`
	PutioClientID      string `long:"putio-client-id" env:"PUTIO_CLIENT_ID" description:"put.io OAuth application ID"`
	PutioClientSecret  string `long:"putio-client-secret" env:"PUTIO_CLIENT_SECRET" description:"put.io OAuth application secret"`
	RequestTimeout     int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30" description:"Timeout for put.io API calls in seconds"`
	ProviderMaxRetries int    `long:"provider-max-retries" env:"PROVIDER_MAX_RETRIES" default:"2" description:"Retries for transient put.io API failures"`

	// Crawler
	CrawlMaxDepth    int    `long:"crawl-max-depth" env:"CRAWL_MAX_DEPTH" default:"32" description:"Maximum folder nesting depth walked per feed root"`
	CrawlConcurrency int    `long:"crawl-concurrency" env:"CRAWL_CONCURRENCY" default:"1" description:"Concurrent folder listings per feed fetch (1 = sequential)"`
	MediaTypesFile   string `long:"media-types-file" env:"MEDIA_TYPES_FILE" description:"Optional YAML file overriding the supported media types"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Putcast/1.0" description:"User agent string for put.io requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load parses command-line flags and environment variables. It returns
// nil, nil when help was requested.
func Load() (*Cfg, error) {
	return load(nil)
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:             raw.DBPath,
		Port:               raw.Port,
		BaseUrl:            strings.TrimRight(raw.BaseUrl, "/"),
		SessionSecret:      raw.SessionSecret,
		PutioAPIURL:        strings.TrimRight(raw.PutioAPIURL, "/"),
		PutioClientID:      raw.PutioClientID,
		PutioClientSecret:  raw.PutioClientSecret,
		RequestTimeout:     raw.RequestTimeout,
		ProviderMaxRetries: raw.ProviderMaxRetries,
		CrawlMaxDepth:      raw.CrawlMaxDepth,
		CrawlConcurrency:   raw.CrawlConcurrency,
		MediaTypesFile:     raw.MediaTypesFile,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg
	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}

func validate(c *Cfg) error {
	if c.CrawlMaxDepth < 1 {
		return fmt.Errorf("crawl max depth must be positive, got %d", c.CrawlMaxDepth)
	}
	if c.CrawlConcurrency < 1 {
		return fmt.Errorf("crawl concurrency must be positive, got %d", c.CrawlConcurrency)
	}
	if c.ProviderMaxRetries < 0 {
		return fmt.Errorf("provider max retries must be non-negative, got %d", c.ProviderMaxRetries)
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}

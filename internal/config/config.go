package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when no --config flag is given.
const EnvPath = "JOBFEED_CONFIG"

// DefaultPath is used when neither the flag nor EnvPath is set.
const DefaultPath = "config.yaml"

const (
	defaultSchedule         = "@every 1h"
	defaultHTTPTimeout      = 30 * time.Second
	defaultUserAgent        = "jobfeed/1.0 (+https://github.com/amishk599/jobfeed)"
	defaultMaxRetries       = 3
	defaultRetryBaseDelay   = 2 * time.Second
	defaultRetryMaxDelay    = 30 * time.Second
	defaultMinDelay         = 1 * time.Second
	defaultConcurrency      = 4
	defaultMinBareSalary    = 1000
	defaultSyntheticPer     = 5
	defaultStoreDriver      = "sqlite"
	defaultSQLitePath       = "jobs.db"
	defaultMaxPerSubscriber = 10
	defaultTelegramBaseURL  = "https://api.telegram.org"
)

var knownDrivers = map[string]bool{"sqlite": true, "postgres": true, "redis": true, "memory": true}

// Config is the root configuration for jobfeed.
type Config struct {
	Schedule  string // cron expression or descriptor, e.g. "@every 1h"
	HTTP      HTTPConfig
	Retry     RetryConfig
	RateLimit RateLimitConfig
	Ingest    IngestConfig
	Sources   SourcesConfig
	Store     StoreConfig
	Server    ServerConfig
	Notify    NotifyConfig
}

// HTTPConfig configures the client shared by every network connector.
type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// RetryConfig is the retry policy for network connectors.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration // cap on one wait, Retry-After included
}

// RateLimitConfig controls per-family request spacing.
type RateLimitConfig struct {
	MinDelay  time.Duration            // minimum gap between requests to the same family
	Overrides map[string]time.Duration // per-family overrides, keyed by family name
}

// IngestConfig tunes the orchestrator and the normalizers.
type IngestConfig struct {
	Concurrency         int
	SalaryMinBareAmount float64
}

// FamilyConfig is one connector family with the identifiers it is bound to.
type FamilyConfig struct {
	Family      string
	Enabled     bool
	Identifiers []string
}

// SourcesConfig lists the connector families.
type SourcesConfig struct {
	Lever      FamilyConfig
	Greenhouse FamilyConfig
	Ashby      FamilyConfig
	RemoteOK   FamilyConfig
	RSS        FamilyConfig
	Synthetic  FamilyConfig
	// SyntheticPerBoard is how many postings each synthetic board generates.
	SyntheticPerBoard int
}

// Families returns every family in a fixed order.
func (s SourcesConfig) Families() []FamilyConfig {
	return []FamilyConfig{s.Lever, s.Greenhouse, s.Ashby, s.RemoteOK, s.RSS, s.Synthetic}
}

// Enabled returns the enabled families that have at least one identifier.
func (s SourcesConfig) Enabled() []FamilyConfig {
	var out []FamilyConfig
	for _, f := range s.Families() {
		if f.Enabled && len(f.Identifiers) > 0 {
			out = append(out, f)
		}
	}
	return out
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres, redis or memory
	DSN    string `yaml:"dsn"`
}

// ServerConfig enables the HTTP trigger when Addr is set.
type ServerConfig struct {
	Addr  string `yaml:"addr"`
	Token string `yaml:"token"`
}

// NotifyConfig controls subscriber notification.
type NotifyConfig struct {
	MaxPerSubscriber int
	MaxRetries       int
	MinDelay         time.Duration
	Telegram         TelegramConfig
	Discord          ChannelConfig
	Slack            ChannelConfig
}

// TelegramConfig holds the bot credentials.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	BaseURL  string `yaml:"base_url"`
}

// ChannelConfig toggles a webhook channel. The webhook URLs come from subscribers.
type ChannelConfig struct {
	Enabled bool `yaml:"enabled"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Schedule  string             `yaml:"schedule"`
	HTTP      rawHTTPConfig      `yaml:"http"`
	Retry     rawRetryConfig     `yaml:"retry"`
	RateLimit rawRateLimitConfig `yaml:"rate_limit"`
	Ingest    rawIngestConfig    `yaml:"ingest"`
	Sources   rawSourcesConfig   `yaml:"sources"`
	Store     StoreConfig        `yaml:"store"`
	Server    ServerConfig       `yaml:"server"`
	Notify    rawNotifyConfig    `yaml:"notify"`
}

type rawHTTPConfig struct {
	Timeout   string `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
	MaxDelay   string `yaml:"max_delay"`
}

type rawRateLimitConfig struct {
	MinDelay  string            `yaml:"min_delay"`
	Overrides map[string]string `yaml:"overrides"`
}

type rawIngestConfig struct {
	Concurrency         int     `yaml:"concurrency"`
	SalaryMinBareAmount float64 `yaml:"salary_min_bare_amount"`
}

type rawSourcesConfig struct {
	Lever struct {
		Enabled   bool     `yaml:"enabled"`
		Companies []string `yaml:"companies"`
	} `yaml:"lever"`
	Greenhouse struct {
		Enabled bool     `yaml:"enabled"`
		Boards  []string `yaml:"boards"`
	} `yaml:"greenhouse"`
	Ashby struct {
		Enabled bool     `yaml:"enabled"`
		Boards  []string `yaml:"boards"`
	} `yaml:"ashby"`
	RemoteOK struct {
		Enabled bool     `yaml:"enabled"`
		Tags    []string `yaml:"tags"`
	} `yaml:"remoteok"`
	RSS struct {
		Enabled bool     `yaml:"enabled"`
		Feeds   []string `yaml:"feeds"`
	} `yaml:"rss"`
	Synthetic struct {
		Enabled  bool     `yaml:"enabled"`
		Boards   []string `yaml:"boards"`
		PerBoard int      `yaml:"per_board"`
	} `yaml:"synthetic"`
}

type rawNotifyConfig struct {
	MaxPerSubscriber int            `yaml:"max_per_subscriber"`
	MaxRetries       int            `yaml:"max_retries"`
	MinDelay         string         `yaml:"min_delay"`
	Telegram         TelegramConfig `yaml:"telegram"`
	Discord          ChannelConfig  `yaml:"discord"`
	Slack            ChannelConfig  `yaml:"slack"`
}

// ResolvePath picks the config file: the flag value, then $JOBFEED_CONFIG,
// then ./config.yaml.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse is Load for config bytes already in memory.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	timeout, err := parseDuration("http.timeout", raw.HTTP.Timeout, defaultHTTPTimeout)
	if err != nil {
		return nil, err
	}
	baseDelay, err := parseDuration("retry.base_delay", raw.Retry.BaseDelay, defaultRetryBaseDelay)
	if err != nil {
		return nil, err
	}
	maxDelay, err := parseDuration("retry.max_delay", raw.Retry.MaxDelay, defaultRetryMaxDelay)
	if err != nil {
		return nil, err
	}
	minDelay, err := parseDuration("rate_limit.min_delay", raw.RateLimit.MinDelay, defaultMinDelay)
	if err != nil {
		return nil, err
	}
	overrides := make(map[string]time.Duration, len(raw.RateLimit.Overrides))
	for family, value := range raw.RateLimit.Overrides {
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.overrides[%q]: %w", family, err)
		}
		overrides[strings.ToLower(family)] = d
	}
	notifyDelay, err := parseDuration("notify.min_delay", raw.Notify.MinDelay, 0)
	if err != nil {
		return nil, err
	}

	maxRetries := defaultMaxRetries
	if raw.Retry.MaxRetries != nil {
		maxRetries = *raw.Retry.MaxRetries
	}

	src := raw.Sources
	remoteOKTags := src.RemoteOK.Tags
	if src.RemoteOK.Enabled && len(remoteOKTags) == 0 {
		// No tag means the unfiltered feed.
		remoteOKTags = []string{""}
	}

	cfg := &Config{
		Schedule: withDefault(raw.Schedule, defaultSchedule),
		HTTP: HTTPConfig{
			Timeout:   timeout,
			UserAgent: withDefault(raw.HTTP.UserAgent, defaultUserAgent),
		},
		Retry: RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  baseDelay,
			MaxDelay:   maxDelay,
		},
		RateLimit: RateLimitConfig{
			MinDelay:  minDelay,
			Overrides: overrides,
		},
		Ingest: IngestConfig{
			Concurrency:         positiveOr(raw.Ingest.Concurrency, defaultConcurrency),
			SalaryMinBareAmount: raw.Ingest.SalaryMinBareAmount,
		},
		Sources: SourcesConfig{
			Lever:             family("lever", src.Lever.Enabled, src.Lever.Companies),
			Greenhouse:        family("greenhouse", src.Greenhouse.Enabled, src.Greenhouse.Boards),
			Ashby:             family("ashby", src.Ashby.Enabled, src.Ashby.Boards),
			RemoteOK:          family("remoteok", src.RemoteOK.Enabled, remoteOKTags),
			RSS:               family("rss", src.RSS.Enabled, src.RSS.Feeds),
			Synthetic:         family("synthetic", src.Synthetic.Enabled, src.Synthetic.Boards),
			SyntheticPerBoard: positiveOr(src.Synthetic.PerBoard, defaultSyntheticPer),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(withDefault(raw.Store.Driver, defaultStoreDriver)),
			DSN:    raw.Store.DSN,
		},
		Server: raw.Server,
		Notify: NotifyConfig{
			MaxPerSubscriber: positiveOr(raw.Notify.MaxPerSubscriber, defaultMaxPerSubscriber),
			MaxRetries:       raw.Notify.MaxRetries,
			MinDelay:         notifyDelay,
			Telegram:         raw.Notify.Telegram,
			Discord:          raw.Notify.Discord,
			Slack:            raw.Notify.Slack,
		},
	}
	if cfg.Ingest.SalaryMinBareAmount == 0 {
		cfg.Ingest.SalaryMinBareAmount = defaultMinBareSalary
	}
	if cfg.Store.Driver == "sqlite" && cfg.Store.DSN == "" {
		cfg.Store.DSN = defaultSQLitePath
	}
	if cfg.Notify.Telegram.BaseURL == "" {
		cfg.Notify.Telegram.BaseURL = defaultTelegramBaseURL
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTP.Timeout)
	}
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.BaseDelay <= 0 {
		return fmt.Errorf("retry.base_delay must be positive, got %v", cfg.Retry.BaseDelay)
	}
	if cfg.Retry.MaxDelay < cfg.Retry.BaseDelay {
		return fmt.Errorf("retry.max_delay must be at least retry.base_delay, got %v", cfg.Retry.MaxDelay)
	}
	if cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("rate_limit.min_delay must not be negative, got %v", cfg.RateLimit.MinDelay)
	}
	for family, d := range cfg.RateLimit.Overrides {
		if d < 0 {
			return fmt.Errorf("rate_limit.overrides[%q] must not be negative, got %v", family, d)
		}
	}
	if cfg.Ingest.SalaryMinBareAmount < 0 {
		return fmt.Errorf("ingest.salary_min_bare_amount must not be negative")
	}

	if len(cfg.Sources.Enabled()) == 0 {
		return fmt.Errorf("at least one source family must be enabled with identifiers")
	}
	for _, f := range cfg.Sources.Enabled() {
		for _, id := range f.Identifiers {
			if f.Family != "remoteok" && strings.TrimSpace(id) == "" {
				return fmt.Errorf("sources.%s has a blank entry", f.Family)
			}
		}
	}

	if !knownDrivers[cfg.Store.Driver] {
		return fmt.Errorf("store.driver %q is not one of sqlite, postgres, redis, memory", cfg.Store.Driver)
	}
	if (cfg.Store.Driver == "postgres" || cfg.Store.Driver == "redis") && cfg.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for the %s driver", cfg.Store.Driver)
	}

	if cfg.Server.Addr != "" && cfg.Server.Token == "" {
		return fmt.Errorf("server.token is required when server.addr is set")
	}

	if cfg.Notify.MaxRetries < 0 {
		return fmt.Errorf("notify.max_retries must not be negative, got %d", cfg.Notify.MaxRetries)
	}
	if cfg.Notify.MinDelay < 0 {
		return fmt.Errorf("notify.min_delay must not be negative, got %v", cfg.Notify.MinDelay)
	}
	if cfg.Notify.Telegram.Enabled && cfg.Notify.Telegram.BotToken == "" {
		return fmt.Errorf("notify.telegram.bot_token is required when telegram is enabled")
	}

	return nil
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func family(name string, enabled bool, ids []string) FamilyConfig {
	return FamilyConfig{Family: name, Enabled: enabled, Identifiers: ids}
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

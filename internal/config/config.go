package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for the news crawler.
type Config struct {
	Fetcher   FetcherConfig   `mapstructure:"fetcher"   yaml:"fetcher"`
	Crawl     CrawlConfig     `mapstructure:"crawl"     yaml:"crawl"`
	Store     StoreConfig     `mapstructure:"store"     yaml:"store"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// FetcherConfig controls the HTTP page fetcher.
type FetcherConfig struct {
	UserAgent      string        `mapstructure:"user_agent"      yaml:"user_agent"`
	ListingTimeout time.Duration `mapstructure:"listing_timeout" yaml:"listing_timeout"`
	DetailTimeout  time.Duration `mapstructure:"detail_timeout"  yaml:"detail_timeout"`
	MaxBodySize    int64         `mapstructure:"max_body_size"   yaml:"max_body_size"`
	TLSInsecure    bool          `mapstructure:"tls_insecure"    yaml:"tls_insecure"`
	MaxIdleConns   int           `mapstructure:"max_idle_conns"  yaml:"max_idle_conns"`
}

// CrawlConfig controls per-source crawling behavior. The delays are
// unconditional waits between units of work, not error backoff.
type CrawlConfig struct {
	MaxArticlesPerSource int           `mapstructure:"max_articles_per_source" yaml:"max_articles_per_source"`
	ArticleDelay         time.Duration `mapstructure:"article_delay"           yaml:"article_delay"`
	SourceDelay          time.Duration `mapstructure:"source_delay"            yaml:"source_delay"`
}

// StoreConfig controls the headline store.
type StoreConfig struct {
	URI                string `mapstructure:"uri"                  yaml:"uri"`
	Database           string `mapstructure:"database"             yaml:"database"`
	NewsCollection     string `mapstructure:"news_collection"      yaml:"news_collection"`
	AdminLogCollection string `mapstructure:"admin_log_collection" yaml:"admin_log_collection"`
}

// SchedulerConfig controls the fixed-time crawl schedule. Cron specs
// use standard five-field syntax.
type SchedulerConfig struct {
	Enabled     bool          `mapstructure:"enabled"       yaml:"enabled"`
	MorningSpec string        `mapstructure:"morning_spec"  yaml:"morning_spec"`
	MiddaySpec  string        `mapstructure:"midday_spec"   yaml:"midday_spec"`
	EveningSpec string        `mapstructure:"evening_spec"  yaml:"evening_spec"`
	NightSpec   string        `mapstructure:"night_spec"    yaml:"night_spec"`
	DevRun      bool          `mapstructure:"dev_run"       yaml:"dev_run"`
	DevRunDelay time.Duration `mapstructure:"dev_run_delay" yaml:"dev_run_delay"`
}

// APIConfig controls the admin HTTP server.
type APIConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port"    yaml:"port"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			ListingTimeout: 30 * time.Second,
			DetailTimeout:  10 * time.Second,
			MaxBodySize:    10 * 1024 * 1024, // 10MB
			MaxIdleConns:   100,
		},
		Crawl: CrawlConfig{
			MaxArticlesPerSource: 10,
			ArticleDelay:         2 * time.Second,
			SourceDelay:          3 * time.Second,
		},
		Store: StoreConfig{
			URI:                "mongodb://localhost:27017",
			Database:           "sporhub",
			NewsCollection:     "news",
			AdminLogCollection: "admin_logs",
		},
		Scheduler: SchedulerConfig{
			Enabled:     true,
			MorningSpec: "0 8 * * *",
			MiddaySpec:  "30 12 * * *",
			EveningSpec: "0 18 * * *",
			NightSpec:   "0 23 * * *",
			DevRunDelay: 3 * time.Second,
		},
		API: APIConfig{
			Enabled: true,
			Port:    8085,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

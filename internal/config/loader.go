package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	// Environment variable support
	v.SetEnvPrefix("NEWSCRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("newscrawler")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".newscrawler"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.listing_timeout", cfg.Fetcher.ListingTimeout)
	v.SetDefault("fetcher.detail_timeout", cfg.Fetcher.DetailTimeout)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)

	v.SetDefault("crawl.max_articles_per_source", cfg.Crawl.MaxArticlesPerSource)
	v.SetDefault("crawl.article_delay", cfg.Crawl.ArticleDelay)
	v.SetDefault("crawl.source_delay", cfg.Crawl.SourceDelay)

	v.SetDefault("store.uri", cfg.Store.URI)
	v.SetDefault("store.database", cfg.Store.Database)
	v.SetDefault("store.news_collection", cfg.Store.NewsCollection)
	v.SetDefault("store.admin_log_collection", cfg.Store.AdminLogCollection)

	v.SetDefault("scheduler.enabled", cfg.Scheduler.Enabled)
	v.SetDefault("scheduler.morning_spec", cfg.Scheduler.MorningSpec)
	v.SetDefault("scheduler.midday_spec", cfg.Scheduler.MiddaySpec)
	v.SetDefault("scheduler.evening_spec", cfg.Scheduler.EveningSpec)
	v.SetDefault("scheduler.night_spec", cfg.Scheduler.NightSpec)
	v.SetDefault("scheduler.dev_run", cfg.Scheduler.DevRun)
	v.SetDefault("scheduler.dev_run_delay", cfg.Scheduler.DevRunDelay)

	v.SetDefault("api.enabled", cfg.API.Enabled)
	v.SetDefault("api.port", cfg.API.Port)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

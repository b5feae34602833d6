package config

import (
	"fmt"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Fetcher.UserAgent == "" {
		return fmt.Errorf("fetcher.user_agent must not be empty")
	}
	if cfg.Fetcher.ListingTimeout <= 0 {
		return fmt.Errorf("fetcher.listing_timeout must be > 0")
	}
	if cfg.Fetcher.DetailTimeout <= 0 {
		return fmt.Errorf("fetcher.detail_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	if cfg.Crawl.MaxArticlesPerSource < 1 {
		return fmt.Errorf("crawl.max_articles_per_source must be >= 1, got %d", cfg.Crawl.MaxArticlesPerSource)
	}
	if cfg.Crawl.ArticleDelay < 0 {
		return fmt.Errorf("crawl.article_delay must be >= 0")
	}
	if cfg.Crawl.SourceDelay < 0 {
		return fmt.Errorf("crawl.source_delay must be >= 0")
	}

	if cfg.Store.URI == "" {
		return fmt.Errorf("store.uri must not be empty")
	}
	if cfg.Store.Database == "" {
		return fmt.Errorf("store.database must not be empty")
	}
	if cfg.Store.NewsCollection == "" {
		return fmt.Errorf("store.news_collection must not be empty")
	}

	if cfg.Scheduler.Enabled {
		for name, spec := range map[string]string{
			"scheduler.morning_spec": cfg.Scheduler.MorningSpec,
			"scheduler.midday_spec":  cfg.Scheduler.MiddaySpec,
			"scheduler.evening_spec": cfg.Scheduler.EveningSpec,
			"scheduler.night_spec":   cfg.Scheduler.NightSpec,
		} {
			if spec == "" {
				return fmt.Errorf("%s must not be empty when the scheduler is enabled", name)
			}
		}
	}

	if cfg.API.Enabled {
		if cfg.API.Port < 1 || cfg.API.Port > 65535 {
			return fmt.Errorf("api.port must be 1-65535, got %d", cfg.API.Port)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

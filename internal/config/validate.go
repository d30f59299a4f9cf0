package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Token.TokenID == "" {
		return errors.New("token.token_id is required")
	}
	if c.Token.Symbol == "" {
		return errors.New("token.symbol is required")
	}
	if c.Token.Decimals < 0 || c.Token.Decimals > 18 {
		return fmt.Errorf("token.decimals must be between 0 and 18, got %d", c.Token.Decimals)
	}
	if c.Token.TotalSupply < 0 {
		return errors.New("token.total_supply cannot be negative")
	}
	if c.Base.TokenID == c.Token.TokenID {
		return errors.New("base.token_id must differ from token.token_id")
	}

	if err := validateURL("api.base_url", c.API.BaseURL); err != nil {
		return err
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries cannot be negative")
	}
	if c.API.PageSize < 1 || c.API.PageSize > 500 {
		return fmt.Errorf("api.page_size must be between 1 and 500, got %d", c.API.PageSize)
	}

	if len(c.Pairs) == 0 {
		return errors.New("pairs must list at least one counter-asset")
	}
	symbols := make(map[string]bool, len(c.Pairs))
	for i, p := range c.Pairs {
		if p.Symbol == "" {
			return fmt.Errorf("pairs[%d].symbol is required", i)
		}
		if symbols[p.Symbol] {
			return fmt.Errorf("pairs[%d].symbol %q is duplicated", i, p.Symbol)
		}
		symbols[p.Symbol] = true
		if p.TokenID == c.Token.TokenID {
			return fmt.Errorf("pairs[%d].token_id cannot be the tracked token", i)
		}
		if p.Decimals < 0 || p.Decimals > 18 {
			return fmt.Errorf("pairs[%d].decimals must be between 0 and 18, got %d", i, p.Decimals)
		}
	}

	if c.Watcher.Interval <= 0 {
		return errors.New("watcher.interval must be positive")
	}
	if c.Watcher.SendDelay < 0 {
		return errors.New("watcher.send_delay cannot be negative")
	}
	if c.Watcher.SeenCapacity < 1 {
		return errors.New("watcher.seen_capacity must be >= 1")
	}

	if c.Notify.WebhookURL == "" {
		return errors.New("notify.webhook_url is required")
	}
	if err := validateURL("notify.webhook_url", c.Notify.WebhookURL); err != nil {
		return err
	}

	if c.Database.Enabled {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
		if c.Archive.BatchSize < 1 {
			return errors.New("archive.batch_size must be >= 1")
		}
		if c.Archive.BufferSize < 1 {
			return errors.New("archive.buffer_size must be >= 1")
		}
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}
	if c.Feed.Enabled && c.Feed.Path == c.Metrics.Path {
		return fmt.Errorf("feed.path %q collides with metrics.path", c.Feed.Path)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, raw)
	}
	return nil
}

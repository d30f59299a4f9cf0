package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID    = "buybot"
	DefaultLogLevel      = "info"
	DefaultAPIBaseURL    = "https://api-us.dexhunterv3.app"
	DefaultAPITimeout    = 15 * time.Second
	DefaultRetryBackoff  = 1 * time.Second
	DefaultPageSize      = 50
	DefaultBaseSymbol    = "ADA"
	DefaultBaseDecimals  = 6
	DefaultBaseSubunit   = "lovelace"
	DefaultPollInterval  = 15 * time.Second
	DefaultSendDelay     = 1 * time.Second
	DefaultSeenCapacity  = 1000
	DefaultNotifyTimeout = 10 * time.Second
	DefaultBotName       = "Buy Bot"
	DefaultExplorerURL   = "https://cardanoscan.io/transaction/"
	DefaultExplorerName  = "CardanoScan"
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 4
	DefaultMinConns      = 1
	DefaultBatchSize     = 100
	DefaultFlushInterval = 5 * time.Second
	DefaultBufferSize    = 1000
	DefaultFeedPath      = "/feed"
	DefaultFeedTimeout   = 5 * time.Second
	DefaultMetricsPort   = 9090
	DefaultMetricsPath   = "/metrics"
)

func (c *Config) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}

	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}
	if c.API.PageSize == 0 {
		c.API.PageSize = DefaultPageSize
	}

	// Base asset defaults (token_id stays empty: the base asset has no policy ID)
	if c.Base.Symbol == "" {
		c.Base.Symbol = DefaultBaseSymbol
	}
	if c.Base.Decimals == 0 {
		c.Base.Decimals = DefaultBaseDecimals
	}
	if c.Base.Subunit == "" {
		c.Base.Subunit = DefaultBaseSubunit
	}

	// Without explicit pairs, watch the base pair only.
	if len(c.Pairs) == 0 {
		c.Pairs = []AssetConfig{c.Base.AssetConfig}
	}

	// Watcher defaults
	if c.Watcher.Interval == 0 {
		c.Watcher.Interval = DefaultPollInterval
	}
	if c.Watcher.SendDelay == 0 {
		c.Watcher.SendDelay = DefaultSendDelay
	}
	if c.Watcher.SeenCapacity == 0 {
		c.Watcher.SeenCapacity = DefaultSeenCapacity
	}

	// Notify defaults
	if c.Notify.Timeout == 0 {
		c.Notify.Timeout = DefaultNotifyTimeout
	}
	if c.Notify.BotName == "" {
		c.Notify.BotName = DefaultBotName
	}
	if c.Notify.ExplorerURL == "" {
		c.Notify.ExplorerURL = DefaultExplorerURL
	}
	if c.Notify.ExplorerName == "" {
		c.Notify.ExplorerName = DefaultExplorerName
	}

	// Database / archive defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}
	if c.Archive.BatchSize == 0 {
		c.Archive.BatchSize = DefaultBatchSize
	}
	if c.Archive.FlushInterval == 0 {
		c.Archive.FlushInterval = DefaultFlushInterval
	}
	if c.Archive.BufferSize == 0 {
		c.Archive.BufferSize = DefaultBufferSize
	}

	// Feed defaults
	if c.Feed.Path == "" {
		c.Feed.Path = DefaultFeedPath
	}
	if c.Feed.WriteTimeout == 0 {
		c.Feed.WriteTimeout = DefaultFeedTimeout
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

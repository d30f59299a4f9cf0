package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/rickgao/dex-buybot/internal/model"
)

// Config is the root configuration for a buy watcher instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Logging  LoggingConfig  `yaml:"logging"`
	API      APIConfig      `yaml:"api"`
	Token    TokenConfig    `yaml:"token"`
	Base     BaseConfig     `yaml:"base"`
	Pairs    []AssetConfig  `yaml:"pairs"`
	Watcher  WatcherConfig  `yaml:"watcher"`
	Notify   NotifyConfig   `yaml:"notify"`
	Database DBConfig       `yaml:"database"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Feed     FeedConfig     `yaml:"feed"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// InstanceConfig identifies this watcher.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// SlogLevel maps the configured level to a slog.Level. Unknown values map to info.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// APIConfig holds DexHunter API settings.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	PartnerID    string        `yaml:"partner_id"` // sent as X-Partner-Id
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"` // 0 = one attempt per cycle
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	PageSize     int           `yaml:"page_size"`
}

// AssetConfig describes a token on the chain. The base asset has an empty TokenID.
type AssetConfig struct {
	Symbol   string `yaml:"symbol"`
	TokenID  string `yaml:"token_id"`
	Decimals int    `yaml:"decimals"`
}

// Asset converts the config entry to a model.Asset.
func (a AssetConfig) Asset() model.Asset {
	return model.Asset{Symbol: a.Symbol, TokenID: a.TokenID, Decimals: int32(a.Decimals)}
}

// PairAssets returns the configured counter-assets in watch order.
func (c *Config) PairAssets() []model.Asset {
	out := make([]model.Asset, len(c.Pairs))
	for i, p := range c.Pairs {
		out[i] = p.Asset()
	}
	return out
}

// TokenConfig describes the tracked token.
type TokenConfig struct {
	AssetConfig `yaml:",inline"`
	Name        string  `yaml:"name"`
	TotalSupply float64 `yaml:"total_supply"` // 0 = market cap unavailable
	ImageURL    string  `yaml:"image_url"`
}

// BaseConfig describes the base settlement asset prices are quoted in.
type BaseConfig struct {
	AssetConfig `yaml:",inline"`
	Subunit     string `yaml:"subunit"` // e.g. "lovelace"
}

// WatcherConfig holds poll cycle settings.
type WatcherConfig struct {
	Interval     time.Duration `yaml:"interval"`
	SendDelay    time.Duration `yaml:"send_delay"`
	SeenCapacity int           `yaml:"seen_capacity"`
}

// NotifyConfig holds webhook notification settings.
type NotifyConfig struct {
	WebhookURL     string        `yaml:"webhook_url"`
	Timeout        time.Duration `yaml:"timeout"`
	StartupMessage *bool         `yaml:"startup_message"`
	BotName        string        `yaml:"bot_name"`
	ExplorerURL    string        `yaml:"explorer_url"` // tx hash is appended
	ExplorerName   string        `yaml:"explorer_name"`
}

// SendStartupMessage reports whether a startup embed should be sent (default true).
func (n NotifyConfig) SendStartupMessage() bool {
	return n.StartupMessage == nil || *n.StartupMessage
}

// DBConfig holds the optional Postgres connection used by the buy archive.
type DBConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ArchiveConfig holds batch writer settings for the buy archive.
type ArchiveConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// FeedConfig holds the websocket live feed settings.
type FeedConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Path         string        `yaml:"path"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// MetricsConfig holds the HTTP server settings for /health, /metrics and the feed.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

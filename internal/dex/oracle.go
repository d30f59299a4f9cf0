package dex

import (
	"context"
	"log/slog"

	"github.com/rickgao/dex-buybot/internal/metrics"
	"github.com/shopspring/decimal"
)

// PriceAPI is the subset of the DexHunter client used for quotes.
type PriceAPI interface {
	GetBaseValue(ctx context.Context) (decimal.Decimal, error)
	GetAveragePrice(ctx context.Context, tokenID string) (decimal.Decimal, error)
}

// PriceOracle fetches point-in-time quotes. A zero result means unknown.
type PriceOracle struct {
	api     PriceAPI
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewPriceOracle creates a price oracle. m may be nil.
func NewPriceOracle(api PriceAPI, m *metrics.Metrics, logger *slog.Logger) *PriceOracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceOracle{
		api:     api,
		metrics: m,
		logger:  logger.With("component", "price_oracle"),
	}
}

// BaseAssetPrice returns the base asset price in USD, or 0 on failure.
func (o *PriceOracle) BaseAssetPrice(ctx context.Context) float64 {
	price, err := o.api.GetBaseValue(ctx)
	if err != nil {
		o.logger.Warn("base price fetch failed", "error", err)
		o.metrics.RecordUpstreamError(metrics.SourceBasePrice)
		return 0
	}
	return positive(price)
}

// TokenPriceInBase returns the token price in base asset, or 0 on failure.
func (o *PriceOracle) TokenPriceInBase(ctx context.Context, tokenID string) float64 {
	price, err := o.api.GetAveragePrice(ctx, tokenID)
	if err != nil {
		o.logger.Warn("token price fetch failed", "token_id", tokenID, "error", err)
		o.metrics.RecordUpstreamError(metrics.SourceTokenPrice)
		return 0
	}
	return positive(price)
}

// positive converts a quote to float64, mapping non-positive values to 0.
func positive(d decimal.Decimal) float64 {
	if !d.IsPositive() {
		return 0
	}
	f, _ := d.Float64()
	return f
}

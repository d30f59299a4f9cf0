package dex

import (
	"context"
	"log/slog"

	"github.com/rickgao/dex-buybot/internal/api"
	"github.com/rickgao/dex-buybot/internal/metrics"
	"github.com/rickgao/dex-buybot/internal/model"
)

// OrderAPI is the subset of the DexHunter client used for orders.
type OrderAPI interface {
	OrdersByPair(ctx context.Context, req api.OrdersByPairRequest) ([]model.Order, error)
}

// OrderFetcher retrieves completed buys of the tracked token.
type OrderFetcher struct {
	api      OrderAPI
	pageSize int
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewOrderFetcher creates an order fetcher. pageSize <= 0 uses the API default.
func NewOrderFetcher(orders OrderAPI, pageSize int, m *metrics.Metrics, logger *slog.Logger) *OrderFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = api.DefaultPageSize
	}
	return &OrderFetcher{
		api:      orders,
		pageSize: pageSize,
		metrics:  m,
		logger:   logger.With("component", "order_fetcher"),
	}
}

// CompletedBuys returns the most recent completed orders on the
// counter/tracked pair that bought the tracked token, in response order.
// Sells are excluded. Any failure yields an empty list.
func (f *OrderFetcher) CompletedBuys(ctx context.Context, counter, tracked model.Asset) []model.Order {
	req := api.CompletedOrdersRequest(counter.TokenID, tracked.TokenID, f.pageSize)

	orders, err := f.api.OrdersByPair(ctx, req)
	if err != nil {
		f.logger.Warn("order fetch failed", "pair", counter.Symbol, "error", err)
		f.metrics.RecordUpstreamError(metrics.SourceOrders)
		return []model.Order{}
	}

	buys := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if o.IsBuyOf(tracked.TokenID) {
			buys = append(buys, o)
		}
	}

	f.logger.Debug("orders fetched",
		"pair", counter.Symbol,
		"returned", len(orders),
		"buys", len(buys),
	)
	f.metrics.RecordOrdersFetched(counter.Symbol, len(buys))

	return buys
}

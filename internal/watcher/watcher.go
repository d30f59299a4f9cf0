package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rickgao/dex-buybot/internal/dedup"
	"github.com/rickgao/dex-buybot/internal/metrics"
	"github.com/rickgao/dex-buybot/internal/model"
	"github.com/rickgao/dex-buybot/internal/notify"
	"golang.org/x/sync/errgroup"
)

// PriceSource provides point-in-time quotes. Zero means unknown.
type PriceSource interface {
	BaseAssetPrice(ctx context.Context) float64
	TokenPriceInBase(ctx context.Context, tokenID string) float64
}

// OrderSource provides completed buys of the tracked token for one pair.
type OrderSource interface {
	CompletedBuys(ctx context.Context, counter, tracked model.Asset) []model.Order
}

// Formatter evaluates orders and renders notifications.
type Formatter interface {
	Evaluate(o model.Order, counter model.Asset, prices model.Prices) model.Buy
	Render(b model.Buy) notify.Payload
}

// Dispatcher delivers a queue of notifications in order.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobs []notify.Job) int
}

// Config holds watcher configuration.
type Config struct {
	Tracked      model.Asset
	Base         model.Asset
	Pairs        []model.Asset // Iterated in this order every cycle
	Interval     time.Duration
	SeenCapacity int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:     15 * time.Second,
		SeenCapacity: 1000,
	}
}

// CycleResult summarizes one poll cycle.
type CycleResult struct {
	Priming    bool // Cycle ran in priming mode
	Discovered int  // Buy orders returned across all pairs
	New        int  // Hashes not seen before
	Queued     int  // Notifications queued
	Dispatched int  // Notifications delivered
	Evicted    int
	Panicked   bool
}

// Status is a point-in-time view of the watcher for health checks.
type Status struct {
	Priming   bool      `json:"priming"`
	Seen      int       `json:"seen"`
	Cycles    int64     `json:"cycles"`
	LastCycle time.Time `json:"last_cycle,omitempty"`
}

// Watcher polls for new buys and dispatches notifications.
type Watcher struct {
	cfg        Config
	prices     PriceSource
	orders     OrderSource
	formatter  Formatter
	dispatcher Dispatcher
	tracker    *dedup.Tracker
	metrics    *metrics.Metrics
	logger     *slog.Logger

	priming   atomic.Bool
	cycles    atomic.Int64
	lastCycle atomic.Int64 // UnixNano

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Watcher in priming mode. m may be nil.
func New(cfg Config, prices PriceSource, orders OrderSource, formatter Formatter, dispatcher Dispatcher, m *metrics.Metrics, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.SeenCapacity <= 0 {
		cfg.SeenCapacity = def.SeenCapacity
	}

	w := &Watcher{
		cfg:        cfg,
		prices:     prices,
		orders:     orders,
		formatter:  formatter,
		dispatcher: dispatcher,
		tracker:    dedup.NewTracker(cfg.SeenCapacity),
		metrics:    m,
		logger:     logger.With("component", "watcher"),
	}
	w.priming.Store(true)
	m.SetPriming(true)
	return w
}

// Start begins the polling loop.
func (w *Watcher) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.run()

	w.logger.Info("watcher started",
		"interval", w.cfg.Interval,
		"pairs", len(w.cfg.Pairs),
		"seen_capacity", w.cfg.SeenCapacity,
	)

	return nil
}

// Stop gracefully shuts down the watcher, waiting for an in-flight cycle.
func (w *Watcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("watcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current watcher state.
func (w *Watcher) Status() Status {
	s := Status{
		Priming: w.priming.Load(),
		Seen:    w.tracker.Len(),
		Cycles:  w.cycles.Load(),
	}
	if ns := w.lastCycle.Load(); ns > 0 {
		s.LastCycle = time.Unix(0, ns).UTC()
	}
	return s
}

// run is the main polling loop.
func (w *Watcher) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	w.RunCycle(w.ctx)

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.RunCycle(w.ctx)
		}
	}
}

// RunCycle performs one poll cycle. It never panics; a panic inside the
// cycle ends it early, and the priming flip and eviction still happen.
func (w *Watcher) RunCycle(ctx context.Context) (res CycleResult) {
	start := time.Now()
	logger := w.logger.With("cycle_id", uuid.New().String())
	priming := w.priming.Load()
	res.Priming = priming

	defer func() {
		if r := recover(); r != nil {
			res.Panicked = true
			logger.Error("poll cycle panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}

		if priming {
			w.priming.Store(false)
			w.metrics.SetPriming(false)
			logger.Info("initial sync complete", "tracking", w.tracker.Len())
		}

		res.Evicted = w.tracker.EvictOverflow(w.cfg.SeenCapacity)
		if res.Evicted > 0 {
			logger.Info("evicted old transactions", "count", res.Evicted)
		}
		w.metrics.UpdateSeenSet(w.tracker.Len(), res.Evicted)

		w.cycles.Add(1)
		w.lastCycle.Store(time.Now().UnixNano())
		w.metrics.RecordCycle(time.Since(start).Seconds(), res.Panicked)

		logger.Debug("poll cycle complete",
			"discovered", res.Discovered,
			"new", res.New,
			"dispatched", res.Dispatched,
			"duration", time.Since(start),
		)
	}()

	prices := w.fetchPrices(ctx, logger)
	batches := w.fetchOrders(ctx, logger)

	var jobs []notify.Job
	for i, pair := range w.cfg.Pairs {
		for _, o := range batches[i] {
			res.Discovered++
			if o.TxHash == "" {
				logger.Warn("skipping order without tx hash", "pair", pair.Symbol, "order_id", o.ID)
				continue
			}
			if !w.tracker.Observe(o.TxHash) {
				continue
			}
			res.New++
			w.metrics.RecordBuyDetected(pair.Symbol)

			if priming {
				continue
			}

			logger.Info("new buy", "tx_hash", o.TxHash, "pair", pair.Symbol)
			buy := w.formatter.Evaluate(o, pair, prices)
			jobs = append(jobs, notify.Job{Buy: buy, Payload: w.formatter.Render(buy)})
		}
	}

	res.Queued = len(jobs)
	if len(jobs) > 0 {
		res.Dispatched = w.dispatcher.Dispatch(ctx, jobs)
	}

	return res
}

// fetchPrices quotes the base asset, the tracked token and every
// secondary counter-asset concurrently.
func (w *Watcher) fetchPrices(ctx context.Context, logger *slog.Logger) model.Prices {
	var (
		g       errgroup.Group
		baseUSD float64
		inBase  float64
		counter = make([]float64, len(w.cfg.Pairs))
	)

	g.Go(func() error {
		baseUSD = guard(logger, "base price", func() float64 { return w.prices.BaseAssetPrice(ctx) })
		return nil
	})
	g.Go(func() error {
		inBase = guard(logger, "token price", func() float64 {
			return w.prices.TokenPriceInBase(ctx, w.cfg.Tracked.TokenID)
		})
		return nil
	})
	for i, pair := range w.cfg.Pairs {
		if pair.TokenID == w.cfg.Base.TokenID {
			continue
		}
		g.Go(func() error {
			counter[i] = guard(logger, "counter price", func() float64 {
				return w.prices.TokenPriceInBase(ctx, pair.TokenID)
			})
			return nil
		})
	}
	g.Wait()

	p := model.Prices{
		BaseUSD:       baseUSD,
		TokenInBase:   inBase,
		CounterInBase: make(map[string]float64, len(w.cfg.Pairs)),
	}
	for i, pair := range w.cfg.Pairs {
		if pair.TokenID == w.cfg.Base.TokenID {
			p.CounterInBase[pair.TokenID] = 1
			continue
		}
		p.CounterInBase[pair.TokenID] = counter[i]
	}

	logger.Info("prices",
		"base_usd", p.BaseUSD,
		"token_in_base", p.TokenInBase,
		"token_usd", p.TokenUSD(),
	)
	return p
}

// fetchOrders fetches completed buys for every pair concurrently. Results
// are indexed like cfg.Pairs.
func (w *Watcher) fetchOrders(ctx context.Context, logger *slog.Logger) [][]model.Order {
	var g errgroup.Group
	batches := make([][]model.Order, len(w.cfg.Pairs))

	for i, pair := range w.cfg.Pairs {
		g.Go(func() error {
			batches[i] = guard(logger, "orders "+pair.Symbol, func() []model.Order {
				return w.orders.CompletedBuys(ctx, pair, w.cfg.Tracked)
			})
			return nil
		})
	}
	g.Wait()

	counts := make([]any, 0, 2*len(batches))
	for i, pair := range w.cfg.Pairs {
		counts = append(counts, pair.Symbol, len(batches[i]))
	}
	logger.Info("orders fetched", counts...)

	return batches
}

// guard runs fn, turning a panic into the zero value so one failing
// source cannot take down the others.
func guard[T any](logger *slog.Logger, source string, fn func() T) (v T) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("source panicked", "source", source, "panic", fmt.Sprint(r))
			var zero T
			v = zero
		}
	}()
	return fn()
}

package archive

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rickgao/dex-buybot/internal/metrics"
	"github.com/rickgao/dex-buybot/internal/model"
	"github.com/shopspring/decimal"
)

// WriterConfig holds batching settings.
type WriterConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	BufferSize    int // Pending buys before Record starts dropping
}

// DefaultWriterConfig returns the default batching settings.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     100,
		FlushInterval: 5 * time.Second,
		BufferSize:    1000,
	}
}

// WriterMetrics holds writer counters.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Errors    int64
	Dropped   int64
	Flushes   int64
}

// Batcher sends a batch of queued statements.
type Batcher interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BuyWriter writes buys to the buys table in batches.
type BuyWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input from the dispatcher
	input chan model.Buy

	// Database
	db Batcher

	// Batching
	batch       []buyRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	stats WriterMetrics
	prom  *metrics.Metrics
}

// buyRow is one row of the buys table.
type buyRow struct {
	ID               uuid.UUID
	TxHash           string
	Pair             string
	Spent            decimal.Decimal
	SpentSymbol      string
	SpentEstimated   bool
	Received         decimal.Decimal
	SpentUSD         *float64 // NULL when unknown
	TokenPriceInBase *float64
	TokenPriceUSD    *float64
	MarketCapBase    *float64
	Tier             string
	Sender           *string
	DexName          *string
	ExecutedAt       time.Time
}

// NewBuyWriter creates a new BuyWriter. m may be nil.
func NewBuyWriter(cfg WriterConfig, db Batcher, m *metrics.Metrics, logger *slog.Logger) *BuyWriter {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultWriterConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	return &BuyWriter{
		cfg:    cfg,
		input:  make(chan model.Buy, cfg.BufferSize),
		db:     db,
		logger: logger.With("component", "archive"),
		batch:  make([]buyRow, 0, cfg.BatchSize),
		prom:   m,
	}
}

// Record queues a buy for writing. It never blocks; when the buffer is
// full the buy is dropped and counted.
func (w *BuyWriter) Record(buy model.Buy) {
	select {
	case w.input <- buy:
	default:
		w.batchMu.Lock()
		w.stats.Dropped++
		w.batchMu.Unlock()
		w.prom.RecordArchiveDrop()
		w.logger.Warn("archive buffer full, dropping buy", "tx_hash", buy.TxHash)
	}
}

// Start begins consuming buys and writing to the database.
func (w *BuyWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("archive writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop drains queued buys and flushes them before returning.
func (w *BuyWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping archive writer")

	if w.cancel != nil {
		w.cancel()
	}

	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("archive writer stop timed out")
		return ctx.Err()
	}

	// Pick up anything queued after the consumer exited.
drain:
	for {
		select {
		case buy := <-w.input:
			w.handleBuy(ctx, buy)
		default:
			break drain
		}
	}

	// Final flush runs on the caller's context; the writer's own is cancelled.
	w.flushWith(ctx)
	w.logger.Info("archive writer stopped")

	return nil
}

// Stats returns current metrics.
func (w *BuyWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.stats
}

// consumeLoop reads from the input channel and accumulates batches.
func (w *BuyWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case buy := <-w.input:
			w.handleBuy(w.ctx, buy)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *BuyWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flushWith(w.ctx)
		}
	}
}

// handleBuy transforms and adds a buy to the batch.
func (w *BuyWriter) handleBuy(ctx context.Context, buy model.Buy) {
	row := transform(buy)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flushWith(ctx)
	}
}

// transform converts a Buy to a buyRow.
func transform(b model.Buy) buyRow {
	row := buyRow{
		ID:               b.ID,
		TxHash:           b.TxHash,
		Pair:             b.Pair,
		Spent:            b.Spent,
		SpentSymbol:      b.SpentSymbol,
		SpentEstimated:   b.SpentEstimated,
		Received:         b.Received,
		TokenPriceInBase: positive(b.TokenPriceInBase),
		TokenPriceUSD:    positive(b.TokenPriceUSD),
		MarketCapBase:    positive(b.MarketCapBase),
		Tier:             b.Tier.String(),
		Sender:           nonEmpty(b.Sender),
		DexName:          nonEmpty(b.DexName),
		ExecutedAt:       b.Timestamp.UTC(),
	}
	if b.SpentUSDKnown {
		usd := b.SpentUSD
		row.SpentUSD = &usd
	}
	return row
}

// flushWith writes the current batch to the database.
func (w *BuyWriter) flushWith(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]buyRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, batch)
	w.prom.RecordArchiveFlush(len(batch)-conflicts, err)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.stats.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.stats.Inserts += int64(len(batch) - conflicts)
	w.stats.Conflicts += int64(conflicts)
	w.stats.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed buys",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

const insertBuy = `
	INSERT INTO buys (id, tx_hash, pair, spent, spent_symbol, spent_estimated, received,
		spent_usd, token_price_in_base, token_price_usd, market_cap_base, tier, sender, dex_name, executed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (tx_hash) DO NOTHING
`

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *BuyWriter) batchInsert(ctx context.Context, rows []buyRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertBuy,
			r.ID, r.TxHash, r.Pair, r.Spent, r.SpentSymbol, r.SpentEstimated, r.Received,
			r.SpentUSD, r.TokenPriceInBase, r.TokenPriceUSD, r.MarketCapBase, r.Tier,
			r.Sender, r.DexName, r.ExecutedAt,
		)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}

func positive(f float64) *float64 {
	if f <= 0 {
		return nil
	}
	return &f
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

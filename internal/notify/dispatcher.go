package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/rickgao/dex-buybot/internal/metrics"
	"github.com/rickgao/dex-buybot/internal/model"
)

// Job is one queued notification.
type Job struct {
	Buy     model.Buy
	Payload Payload
}

// Recorder receives every dispatched buy, whether or not delivery succeeded.
type Recorder interface {
	Record(buy model.Buy)
}

// Dispatcher sends jobs sequentially with a delay between sends.
type Dispatcher struct {
	sender    Sender
	delay     time.Duration
	recorders []Recorder
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher. m may be nil.
func NewDispatcher(sender Sender, delay time.Duration, m *metrics.Metrics, logger *slog.Logger, recorders ...Recorder) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sender:    sender,
		delay:     delay,
		recorders: recorders,
		metrics:   m,
		logger:    logger.With("component", "dispatcher"),
	}
}

// Dispatch sends jobs in order and returns how many were delivered.
// Failed sends are logged and not retried. If ctx is cancelled the
// remaining jobs are dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, jobs []Job) int {
	sent := 0

	for i, job := range jobs {
		if i > 0 && d.delay > 0 {
			select {
			case <-ctx.Done():
				d.logger.Warn("dispatch interrupted", "dropped", len(jobs)-i)
				return sent
			case <-time.After(d.delay):
			}
		}
		if ctx.Err() != nil {
			d.logger.Warn("dispatch interrupted", "dropped", len(jobs)-i)
			return sent
		}

		err := d.sender.Send(ctx, job.Payload)
		d.metrics.RecordNotification(job.Buy.Pair, err)
		if err != nil {
			d.logger.Error("notification failed",
				"tx_hash", job.Buy.TxHash,
				"pair", job.Buy.Pair,
				"error", err,
			)
		} else {
			sent++
			d.logger.Info("notification sent",
				"tx_hash", job.Buy.TxHash,
				"pair", job.Buy.Pair,
				"spent_usd", job.Buy.SpentUSD,
			)
		}

		for _, r := range d.recorders {
			r.Record(job.Buy)
		}
	}

	return sent
}

// SendOne delivers a single payload outside the cycle queue.
func (d *Dispatcher) SendOne(ctx context.Context, p Payload) error {
	return d.sender.Send(ctx, p)
}

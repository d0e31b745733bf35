// Package worker consume la cola de eventos del ledger en background.
package worker

import (
	"context"
	"errors"
	"time"

	eventsredis "cold-chain-ledger/internal/adapters/events/redis"
	"cold-chain-ledger/internal/domain/lots"
	"cold-chain-ledger/internal/platform/logger"
	"cold-chain-ledger/internal/platform/metrics"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	// BRPOP bloquea hasta este tiempo y vuelve a mirar el ctx.
	DefaultPopTimeout = 5 * time.Second

	// Pausa tras un error de Redis que no es timeout.
	retryDelay = time.Second
)

// Queue es el subconjunto de *redis.Client que usa el worker.
type Queue interface {
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *goredis.StringSliceCmd
	LPush(ctx context.Context, key string, values ...any) *goredis.IntCmd
}

type AlertWorker struct {
	rdb     Queue
	queue   string
	workers int
	timeout time.Duration
	log     logger.Logger
	metrics *metrics.Metrics
}

type Options struct {
	Queue      string
	Workers    int
	PopTimeout time.Duration
	Logger     logger.Logger
	Metrics    *metrics.Metrics
}

func NewAlertWorker(rdb Queue, opts Options) *AlertWorker {
	w := &AlertWorker{
		rdb:     rdb,
		queue:   opts.Queue,
		workers: opts.Workers,
		timeout: opts.PopTimeout,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
	if w.queue == "" {
		w.queue = eventsredis.DefaultQueue
	}
	if w.workers <= 0 {
		w.workers = 1
	}
	if w.timeout <= 0 {
		w.timeout = DefaultPopTimeout
	}
	if w.log == nil {
		w.log = logger.Nop()
	}
	w.log = w.log.With(map[string]any{"component": "alert_worker", "queue": w.queue})
	return w
}

// Run bloquea hasta que ctx se cancela. Cada goroutine hace BRPOP sobre la cola.
func (w *AlertWorker) Run(ctx context.Context) error {
	w.log.Info("alert worker started", map[string]any{"workers": w.workers})

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		id := i
		g.Go(func() error {
			w.loop(gctx, id)
			return nil
		})
	}
	err := g.Wait()

	w.log.Info("alert worker stopped", nil)
	return err
}

func (w *AlertWorker) loop(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			return
		}

		res, err := w.rdb.BRPop(ctx, w.timeout, w.queue).Result()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error("brpop failed", map[string]any{"worker": id, "error": err.Error()})
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			continue
		}
		if len(res) < 2 {
			continue
		}
		w.Handle(ctx, res[1])
	}
}

// Handle procesa un mensaje crudo de la cola. Los que no se pueden decodificar
// van a la DLQ para inspección manual.
func (w *AlertWorker) Handle(ctx context.Context, raw string) {
	e, err := eventsredis.Decode([]byte(raw))
	if err != nil {
		w.log.Error("invalid ledger event", map[string]any{"error": err.Error()})
		w.deadLetter(ctx, raw)
		return
	}

	w.metrics.IncAlertProcessed(string(e.Type))

	switch e.Type {
	case lots.EventColdChainBreached:
		fields := map[string]any{
			"lot_id":       e.LotID,
			"status":       string(e.Status),
			"temp_min":     e.TempMin,
			"temp_max":     e.TempMax,
			"first_breach": e.FirstBreach,
		}
		if e.Record != nil {
			fields["value"] = e.Record.Value
			fields["recorded_by"] = string(e.Record.RecordedBy)
			fields["location"] = e.Record.Location
		}
		w.log.Warn("cold chain breached", fields)
	default:
		w.log.Debug("ledger event", map[string]any{
			"lot_id": e.LotID,
			"type":   string(e.Type),
			"status": string(e.Status),
		})
	}
}

func (w *AlertWorker) deadLetter(ctx context.Context, raw string) {
	key := eventsredis.DLQPrefix + w.queue
	if err := w.rdb.LPush(ctx, key, raw).Err(); err != nil {
		w.log.Error("dlq push failed", map[string]any{"dlq_key": key, "error": err.Error()})
	}
}

package simulator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"cold-chain-ledger/internal/domain/lots"
	"cold-chain-ledger/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Result de la simulación de un lote.
type Result struct {
	Summary LotSummary `yaml:"summary"`

	Readings int `yaml:"readings"`
	// Faults son las lecturas con falla simulada (no necesariamente fuera de rango).
	Faults int `yaml:"simulated_faults"`
	// Failed son las lecturas que el ledger rechazó.
	Failed int `yaml:"failed_readings"`
}

type Runner struct {
	ledger Ledger
	sc     Scenario
	rng    *rand.Rand
	log    logger.Logger
}

// NewRunner crea un runner para un lote. rand.Rand no es seguro entre
// goroutines: cada lote concurrente necesita su propio Runner.
func NewRunner(l Ledger, sc Scenario, seed uint64, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		ledger: l,
		sc:     sc,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		log:    log,
	}
}

// Run crea el lote, recorre las fases en orden, lo marca entregado y devuelve el resumen.
// Los participantes tienen que estar emitidos.
func (r *Runner) Run(ctx context.Context, lotID string) (Result, error) {
	log := r.log.With(map[string]any{"lot_id": lotID})

	if err := r.ledger.CreateLot(ctx, lotID, r.sc.TempMin, r.sc.TempMax); err != nil {
		return Result{}, fmt.Errorf("create lot %s: %w", lotID, err)
	}
	log.Info("lot created", map[string]any{"temp_min": r.sc.TempMin, "temp_max": r.sc.TempMax})

	var res Result
	for pi, sensor := range r.sc.Sensors() {
		n := r.sc.readings(r.sc.Phases[pi])
		log.Info("phase started", map[string]any{"phase": pi + 1, "role": string(sensor.Role), "readings": n})

		for i := 0; i < n; i++ {
			v, fault := sensor.Read(r.rng)
			if fault {
				res.Faults++
			}

			err := r.ledger.RecordTemperature(ctx, lotID, v, sensor.Role, sensor.Location)
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				res.Failed++
				log.Warn("reading rejected", map[string]any{"value": v, "role": string(sensor.Role), "error": err.Error()})
			} else {
				res.Readings++
				fields := map[string]any{"value": v, "role": string(sensor.Role)}
				if lots.OutOfRange(v, r.sc.TempMin, r.sc.TempMax) {
					log.Warn("temperature out of range", fields)
				} else {
					log.Debug("temperature recorded", fields)
				}
			}

			if i < n-1 {
				if err := sleep(ctx, r.sc.Interval); err != nil {
					return res, err
				}
			}
		}
	}

	if err := r.ledger.MarkDelivered(ctx, lotID); err != nil {
		return res, fmt.Errorf("deliver lot %s: %w", lotID, err)
	}

	s, err := r.ledger.Summary(ctx, lotID)
	if err != nil {
		return res, fmt.Errorf("summary %s: %w", lotID, err)
	}
	res.Summary = s
	log.Info("lot delivered", map[string]any{"breached": s.Breached, "records": s.Records})
	return res, nil
}

// Simulate emite participantes una vez y corre un Runner por lote en paralelo.
// Los resultados vuelven en el orden de ids. El primer error cancela el resto.
func Simulate(ctx context.Context, l Ledger, sc Scenario, ids []string, seed uint64, log logger.Logger) ([]Result, error) {
	if err := l.IssueParticipants(ctx); err != nil {
		return nil, fmt.Errorf("issue participants: %w", err)
	}

	results := make([]Result, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		runner := NewRunner(l, sc, seed+uint64(i), log)
		g.Go(func() error {
			res, err := runner.Run(gctx, id)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

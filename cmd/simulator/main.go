package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cold-chain-ledger/internal/adapters/participants/local"
	"cold-chain-ledger/internal/adapters/storage/memory"
	"cold-chain-ledger/internal/domain/lots"
	"cold-chain-ledger/internal/domain/participants"
	"cold-chain-ledger/internal/platform/logger"
	"cold-chain-ledger/internal/simulator"

	"gopkg.in/yaml.v3"
)

func main() {
	var (
		api      = flag.String("api", "http://localhost:8080", "URL de la API del ledger (vacío = ledger en memoria)")
		scenario = flag.String("scenario", "", "archivo YAML del escenario (default: vacuna -8..2 °C)")
		numLots  = flag.Int("lots", 1, "cantidad de lotes simulados en paralelo")
		prefix   = flag.String("prefix", "VAC-SIM", "prefijo de los ids de lote")
		seed     = flag.Uint64("seed", uint64(time.Now().UnixNano()), "semilla de los sensores")
		interval = flag.Duration("interval", -1, "pausa entre lecturas (negativo = la del escenario)")
	)
	flag.Parse()

	// Los logs van a stderr; stdout queda para el YAML de resultados.
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(os.Getenv("LOG_LEVEL")),
		Format: logger.ParseFormat(os.Getenv("LOG_FORMAT")),
		App:    "coldchain-simulator",
		Out:    os.Stderr,
	})

	if err := run(log, *api, *scenario, *numLots, *prefix, *seed, *interval); err != nil {
		log.Error("simulation failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(log logger.Logger, api, scenarioPath string, numLots int, prefix string, seed uint64, interval time.Duration) error {
	if numLots <= 0 {
		return fmt.Errorf("-lots must be positive")
	}

	sc := simulator.DefaultScenario()
	if scenarioPath != "" {
		loaded, err := simulator.LoadScenario(scenarioPath)
		if err != nil {
			return err
		}
		sc = loaded
	}
	if interval >= 0 {
		sc.Interval = interval
	}

	var ledger simulator.Ledger
	if api == "" {
		ledger = simulator.InProcess{
			Lots:         lots.NewService(memory.NewLotRepo(), lots.WithLogger(log)),
			Participants: participants.NewService(local.NewDirectory(), log),
		}
	} else {
		hl, err := simulator.NewHTTPLedger(api, 10*time.Second)
		if err != nil {
			return err
		}
		ledger = hl
	}

	ids := make([]string, numLots)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%03d", prefix, i+1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("simulation started", map[string]any{"lots": numLots, "seed": seed, "interval": sc.Interval.String()})
	results, err := simulator.Simulate(ctx, ledger, sc, ids, seed, log)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(map[string]any{"seed": seed, "results": results})
}

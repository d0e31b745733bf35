package router

import (
	"net/http"

	"cold-chain-ledger/internal/adapters/participants/local"
	mem "cold-chain-ledger/internal/adapters/storage/memory"
	"cold-chain-ledger/internal/domain/lots"
	"cold-chain-ledger/internal/domain/participants"
	"cold-chain-ledger/internal/middleware"
	"cold-chain-ledger/internal/platform/logger"
	"cold-chain-ledger/internal/platform/metrics"

	_ "cold-chain-ledger/docs" // swagger spec

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si viene, se usa como store del ledger. Si no, in-memory.
	Lots lots.Repository

	// Opcional: directorio de participantes. Default: local (uuid).
	Directory participants.Directory

	// Opcional: destino de los eventos del ledger. Default: ninguno.
	Publisher lots.Publisher

	Logger logger.Logger

	// Registry expone /metrics. Si es nil se crea uno propio.
	Registry *prometheus.Registry
	// Metrics debe estar registrado en Registry. Si es nil se crea sobre Registry.
	Metrics *metrics.Metrics
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New(reg)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	repo := opts.Lots
	if repo == nil {
		repo = mem.NewLotRepo()
	}
	dir := opts.Directory
	if dir == nil {
		dir = local.NewDirectory()
	}

	// Services por módulo
	participantsSvc := participants.NewService(dir, log.With(map[string]any{"module": "participants"}))
	lotsSvc := lots.NewService(repo,
		lots.WithPublisher(opts.Publisher),
		lots.WithLogger(log.With(map[string]any{"module": "lots"})),
		lots.WithMetrics(m),
	)

	// Rutas por módulo
	participants.RegisterRoutes(r, participantsSvc)
	lots.RegisterRoutes(r, lotsSvc, participantsSvc)

	return r
}

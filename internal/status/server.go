// Package status serves a fleet node's operational surface: a JSON
// snapshot of its view of the fleet, Prometheus metrics, liveness and
// readiness probes, and a WebSocket feed that pushes the snapshot to
// any connected dashboard as it changes.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slavakukuyev/elevator-fleet/internal/constants"
	"github.com/slavakukuyev/elevator-fleet/internal/dispatch"
	"github.com/slavakukuyev/elevator-fleet/internal/infra/config"
	"github.com/slavakukuyev/elevator-fleet/internal/infra/health"
	"github.com/slavakukuyev/elevator-fleet/internal/infra/observability"
)

// Server is the node's HTTP status surface.
type Server struct {
	node          *dispatch.Node
	cfg           *config.Config
	logger        *slog.Logger
	httpServer    *http.Server
	healthService *health.HealthService
	telemetry     *observability.TelemetryProvider
}

// snapshotView is the JSON shape served at /status and pushed over the
// WebSocket feed: the node's role plus its current view of the fleet.
type snapshotView struct {
	Role string      `json:"role"`
	Node interface{} `json:"state"`
}

// New builds a Server bound to node, wired for the endpoints cfg
// enables. telemetry may be nil, in which case requests are served
// without a tracing span.
func New(cfg *config.Config, node *dispatch.Node, logger *slog.Logger, telemetry *observability.TelemetryProvider) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", constants.ComponentStatusServer))

	s := &Server{
		node:          node,
		cfg:           cfg,
		logger:        logger,
		healthService: health.NewHealthService(5 * time.Second),
		telemetry:     telemetry,
	}
	s.setupHealthChecks()

	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/health/live", s.livenessHandler)
	mux.HandleFunc("/health/ready", s.readinessHandler)
	mux.HandleFunc("/health/detailed", s.detailedHealthHandler)

	if cfg.MetricsEnabled {
		mux.Handle(cfg.MetricsPath, promhttp.Handler())
	}
	if cfg.WebSocketEnabled {
		mux.HandleFunc(cfg.WebSocketPath, s.statusWebSocketHandler)
	}

	middlewares := []Middleware{RequestID(), Logging(logger), Recovery(logger), SecurityHeaders()}
	if telemetry != nil {
		middlewares = append([]Middleware{telemetry.TelemetryMiddleware()}, middlewares...)
	}
	chain := Chain(middlewares...)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.StatusPort),
		Handler:      chain(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

func (s *Server) setupHealthChecks() {
	s.healthService.Register(health.NewSystemResourceChecker(85.0, 1000))
	s.healthService.Register(health.NewLivenessChecker())

	dispatchChecker := health.NewComponentHealthChecker("dispatch", func(ctx context.Context) (bool, string, map[string]interface{}) {
		role := s.node.Role()
		snap := s.node.Snapshot()
		details := map[string]interface{}{
			"role":      role.String(),
			"iteration": snap.Iteration,
		}
		return true, "node participating in fleet", details
	})
	s.healthService.Register(dispatchChecker)
	s.healthService.Register(health.NewReadinessChecker(dispatchChecker))
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(s.logger, w, http.StatusOK, snapshotView{
		Role: s.node.Role().String(),
		Node: s.node.Snapshot(),
	})
}

func (s *Server) livenessHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.healthService.Check(r.Context(), "liveness")
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "liveness check failed")
		return
	}
	code := http.StatusOK
	if result.Status != health.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(s.logger, w, code, result)
}

func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.healthService.Check(r.Context(), "readiness")
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "readiness check failed")
		return
	}
	code := http.StatusOK
	if result.Status != health.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(s.logger, w, code, result)
}

func (s *Server) detailedHealthHandler(w http.ResponseWriter, r *http.Request) {
	overall, results := s.healthService.GetOverallStatus(r.Context())
	code := http.StatusOK
	if overall == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(s.logger, w, code, map[string]interface{}{
		"status":    overall,
		"timestamp": time.Now(),
		"checks":    results,
	})
}

// Start serves the status surface until Shutdown is called.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the status surface.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

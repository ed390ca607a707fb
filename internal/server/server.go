// Package server assembles the HTTP surface of the rxscribe dictation
// service: the three pipeline endpoints (transcribe, refine, extract), the
// health probes, and the Prometheus metrics endpoint, all behind the
// observability middleware.
//
// Every endpoint is stateless: a request carries everything it needs, one
// outbound vendor call resolves it, and nothing is cached or persisted
// between requests.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/medvox/rxscribe/internal/extract"
	"github.com/medvox/rxscribe/internal/health"
	"github.com/medvox/rxscribe/internal/observe"
	"github.com/medvox/rxscribe/internal/refine"
	"github.com/medvox/rxscribe/pkg/provider/stt"
)

const (
	readTimeout       = 60 * time.Second
	writeTimeout      = 120 * time.Second
	defaultDrainGrace = 15 * time.Second
)

// Deps carries the constructed collaborators the server routes requests to.
type Deps struct {
	// STT backs POST /api/transcribe.
	STT stt.Provider

	// STTName is the provider label used in metrics (e.g. "deepgram").
	STTName string

	// Extractor backs POST /api/extract.
	Extractor *extract.Extractor

	// Refiner backs POST /api/refine.
	Refiner *refine.Refiner

	// Metrics is optional; a nil value disables instrument recording.
	Metrics *observe.Metrics

	// Health serves the liveness and readiness probes. When nil a probe
	// handler without checkers is used.
	Health *health.Handler
}

// Config holds the server's network settings.
type Config struct {
	// ListenAddr is the TCP address to listen on (e.g. ":8080").
	ListenAddr string

	// DrainGrace bounds graceful shutdown. Zero means 15 seconds.
	DrainGrace time.Duration
}

// Server is the rxscribe HTTP server.
type Server struct {
	cfg       Config
	stt       stt.Provider
	sttName   string
	extractor *extract.Extractor
	refiner   *refine.Refiner
	metrics   *observe.Metrics
	httpSrv   *http.Server
}

// New assembles a Server from its dependencies.
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		cfg:       cfg,
		stt:       deps.STT,
		sttName:   deps.STTName,
		extractor: deps.Extractor,
		refiner:   deps.Refiner,
		metrics:   deps.Metrics,
	}
	if s.sttName == "" {
		s.sttName = "stt"
	}

	hb := deps.Health
	if hb == nil {
		hb = health.New()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transcribe", s.handleTranscribe)
	mux.HandleFunc("POST /api/refine", s.handleRefine)
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.Handle("GET /metrics", promhttp.Handler())
	hb.Register(mux)

	s.httpSrv = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      observe.Middleware(deps.Metrics)(mux),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Handler exposes the fully assembled handler chain. Used by tests via
// httptest.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// within the configured grace window. Returns nil on clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	grace := s.cfg.DrainGrace
	if grace == 0 {
		grace = defaultDrainGrace
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

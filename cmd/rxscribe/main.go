// Command rxscribe is the main entry point for the rxscribe voice
// prescription dictation server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/medvox/rxscribe/internal/config"
	"github.com/medvox/rxscribe/internal/extract"
	"github.com/medvox/rxscribe/internal/health"
	"github.com/medvox/rxscribe/internal/observe"
	"github.com/medvox/rxscribe/internal/refine"
	"github.com/medvox/rxscribe/internal/server"
	"github.com/medvox/rxscribe/pkg/provider/llm"
	"github.com/medvox/rxscribe/pkg/provider/llm/gemini"
	"github.com/medvox/rxscribe/pkg/provider/llm/openai"
	"github.com/medvox/rxscribe/pkg/provider/stt"
	"github.com/medvox/rxscribe/pkg/provider/stt/deepgram"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "rxscribe: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "rxscribe: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("rxscribe starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "rxscribe",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return 1
	}

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	sttProvider, err := reg.CreateSTT(cfg.Providers.STT)
	if err != nil {
		slog.Error("failed to build stt provider", "err", err)
		return 1
	}

	extractLLM, err := reg.CreateLLM(cfg.Providers.Extraction)
	if err != nil {
		slog.Error("failed to build extraction provider", "err", err)
		return 1
	}

	// The refinement gateway reuses the extraction provider unless the config
	// names its own.
	refineEntry := cfg.Providers.Refinement
	refineLLM := extractLLM
	refineName := cfg.Providers.Extraction.Name
	if refineEntry.Name != "" {
		refineLLM, err = reg.CreateLLM(refineEntry)
		if err != nil {
			slog.Error("failed to build refinement provider", "err", err)
			return 1
		}
		refineName = refineEntry.Name
	}

	// ── Gateways ──────────────────────────────────────────────────────────────
	extractor := extract.New(extractLLM,
		extract.WithMetrics(metrics),
		extract.WithProviderName(cfg.Providers.Extraction.Name),
	)
	refiner := refine.New(refineLLM,
		refine.WithMetrics(metrics),
		refine.WithProviderName(refineName),
	)

	hb := health.New(
		health.Checker{Name: "stt", Check: func(context.Context) error {
			if sttProvider == nil {
				return errors.New("stt provider not configured")
			}
			return nil
		}},
		health.Checker{Name: "extraction", Check: func(context.Context) error {
			if extractLLM == nil {
				return errors.New("extraction provider not configured")
			}
			return nil
		}},
	)

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := server.New(server.Config{
		ListenAddr: cfg.Server.ListenAddr,
		DrainGrace: time.Duration(cfg.Server.ShutdownGraceSeconds) * time.Second,
	}, server.Deps{
		STT:       sttProvider,
		STTName:   cfg.Providers.STT.Name,
		Extractor: extractor,
		Refiner:   refiner,
		Metrics:   metrics,
		Health:    hb,
	})

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires the vendor adapters that ship with rxscribe
// into reg. Each factory receives a config.ProviderEntry and constructs the
// provider from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterSTT("deepgram", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []deepgram.Option
		if entry.Model != "" {
			opts = append(opts, deepgram.WithModel(entry.Model))
		}
		if lang := entry.OptString("language"); lang != "" {
			opts = append(opts, deepgram.WithLanguage(lang))
		}
		if entry.BaseURL != "" {
			opts = append(opts, deepgram.WithBaseURL(entry.BaseURL))
		}
		return deepgram.New(entry.APIKey, opts...)
	})

	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		return openai.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterLLM("gemini", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []gemini.Option
		if entry.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(entry.BaseURL))
		}
		return gemini.New(entry.APIKey, entry.Model, opts...)
	})
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

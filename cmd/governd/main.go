// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command governd starts the Aleutian governance API server.
//
// Governd reviews AI security assessments and scores how much the
// resulting compliance evidence can be trusted:
//   - Tamper-evident evidence logs (hash-chained, BadgerDB-backed)
//   - Deterministic four-dimension trust scoring
//   - Optional LLM-assisted review enhancement
//
// Usage:
//
//	go run ./cmd/governd
//	go run ./cmd/governd -port 9090 -data /var/lib/aleutian/evidence
//
// Ephemeral store (demos, CI):
//
//	go run ./cmd/governd -in-memory
//
// With LLM enhancement (reviews may request an evaluator model):
//
//	OPENAI_API_KEY=sk-... go run ./cmd/governd
//
// With trace export:
//
//	OTEL_EXPORTER_OTLP_ENDPOINT=localhost:4317 go run ./cmd/governd
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/governance/health
//
//	# Verify evidence chains
//	curl -X POST http://localhost:8080/v1/governance/evidence/verify \
//	  -H "Content-Type: application/json" \
//	  -d '{"logs": ["scans", "probes"]}'
//
//	# Run a document review
//	curl -X POST http://localhost:8080/v1/governance/reviews \
//	  -H "Content-Type: application/json" \
//	  -d @soc2_bundle.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otlptrace "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AleutianAI/AleutianAudit/pkg/logging"
	"github.com/AleutianAI/AleutianAudit/services/governance"
	"github.com/AleutianAI/AleutianAudit/services/governance/observability"
	"github.com/AleutianAI/AleutianAudit/services/governance/routes"
	badgerstore "github.com/AleutianAI/AleutianAudit/services/governance/storage/badger"
	"github.com/AleutianAI/AleutianAudit/services/llm"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	dataDir := flag.String("data", "/var/lib/aleutian/evidence", "Evidence store directory")
	inMemory := flag.Bool("in-memory", false, "Use an ephemeral in-memory evidence store")
	logDir := flag.String("log-dir", "", "Directory for daily JSON log files (empty disables)")
	policyPath := flag.String("policy", "", "Scoring policy overlay file (empty uses built-in defaults)")
	flag.Parse()

	// Set Gin mode
	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	level := logging.LevelInfo
	if *debug {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  *logDir,
		Service: "governd",
		JSON:    !*debug,
	})
	defer logger.Close()
	log := logger.Slog()
	// Route package-level slog calls in the handlers through the same sinks.
	slog.SetDefault(log)

	shutdownTelemetry, err := setupTelemetry(context.Background(), *debug)
	if err != nil {
		log.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}

	// Open the evidence store
	storeCfg := badgerstore.DefaultConfig()
	storeCfg.Path = *dataDir
	storeCfg.Logger = log
	if *inMemory {
		storeCfg = badgerstore.InMemoryConfig()
		log.Warn("evidence store is in-memory; chains do not survive restarts")
	}
	store, err := badgerstore.NewStore(storeCfg)
	if err != nil {
		log.Error("failed to open evidence store", "path", *dataDir, "error", err)
		os.Exit(1)
	}

	// Build the engine config
	cfg := governance.DefaultConfig()
	if *policyPath != "" {
		policy, err := governance.LoadScoringPolicy(*policyPath)
		if err != nil {
			log.Error("failed to load scoring policy", "path", *policyPath, "error", err)
			os.Exit(1)
		}
		cfg.Policy = policy
		log.Info("scoring policy overlay loaded", "path", *policyPath)
	}

	evaluator, evaluatorEnabled := setupEvaluator(log)

	engine, err := governance.NewEngine(cfg, store, evaluator, log)
	if err != nil {
		log.Error("failed to create governance engine", "error", err)
		os.Exit(1)
	}

	// Setup router
	observability.InitMetrics()
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("governd"))
	if *debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	routes.RegisterRoutes(v1, engine, store)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	printBanner(*port, evaluatorEnabled)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting governd", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Handle graceful shutdown. The store must close cleanly or the
	// value log replays on next start.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down governd")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("evidence store close failed", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error("telemetry shutdown failed", "error", err)
	}
}

// setupTelemetry installs the global OpenTelemetry providers.
//
// Traces go to an OTLP collector when OTEL_EXPORTER_OTLP_ENDPOINT is
// set, to stdout in debug mode, and nowhere otherwise. Metrics always
// bridge to the Prometheus registry behind /metrics, next to the API
// counters from the observability package.
func setupTelemetry(ctx context.Context, debug bool) (func(context.Context) error, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", "governd"),
		attribute.String("service.version", governance.EngineVersion),
	)

	var shutdowns []func(context.Context) error

	var traceExporter sdktrace.SpanExporter
	switch {
	case os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "":
		exp, err := otlptrace.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("create OTLP trace exporter: %w", err)
		}
		traceExporter = exp
	case debug:
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		traceExporter = exp
	}

	if traceExporter != nil {
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		shutdowns = append(shutdowns, tp.Shutdown)
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	promExporter, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("create Prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	shutdowns = append(shutdowns, mp.Shutdown)

	return func(ctx context.Context) error {
		var firstErr error
		for _, fn := range shutdowns {
			if err := fn(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}, nil
}

// setupEvaluator wires the optional LLM evaluator.
//
// Returns a nil evaluator when no LLM is reachable; the engine then
// serves deterministic reports and warns on reviews that request
// enhancement.
func setupEvaluator(log *slog.Logger) (governance.Evaluator, bool) {
	client, err := llm.NewOpenAIClient()
	if err != nil {
		log.Warn("LLM evaluator not available", "error", err)
		log.Info("reviews will be fully deterministic; set OPENAI_API_KEY to enable enhancement")
		return nil, false
	}
	log.Info("LLM evaluator connected")
	return governance.NewLLMEvaluator(client), true
}

func printBanner(port int, evaluatorEnabled bool) {
	evaluatorStatus := "DISABLED (set OPENAI_API_KEY to enable)"
	if evaluatorEnabled {
		evaluatorStatus = "ENABLED"
	}

	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                     ALEUTIAN GOVERNANCE SERVER                    ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Trust scoring for AI security assessment evidence.               ║
║  LLM Enhancement: %-47s ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/governance/health             │  ║
║  │                                                             │  ║
║  │ # Verify evidence hash chains                               │  ║
║  │ curl -X POST \                                              │  ║
║  │   http://localhost:%d/v1/governance/evidence/verify \     │  ║
║  │   -d '{"logs": ["scans"]}'                                  │  ║
║  │                                                             │  ║
║  │ # Run a review                                              │  ║
║  │ curl -X POST http://localhost:%d/v1/governance/reviews \  │  ║
║  │   -H "Content-Type: application/json" -d @bundle.json       │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── Reviews: POST /v1/governance/reviews                         ║
║  ├── Evidence: POST /v1/governance/evidence/verify                ║
║  ├── Health: GET /v1/governance/health, /v1/governance/ready      ║
║  └── Metrics: GET /metrics (Prometheus)                           ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, evaluatorStatus, port, port, port)
}

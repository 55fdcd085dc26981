package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codesidh/bpts/internal/app"
	"github.com/codesidh/bpts/pkg/config"
	"github.com/codesidh/bpts/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	logger.Info("starting bpts worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	service := container.Prioritization
	service.Start(ctx)
	logger.Info("engines started",
		"recalc_interval", cfg.RecalcInterval,
		"auto_adjust_interval", cfg.AutoAdjustInterval,
		"escalation_interval", cfg.EscalationInterval,
	)

	if cfg.WorkerHealthAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			recalc, adjust, escalate := service.Stats()
			response := map[string]any{
				"status": "ok",
				"recalculation": map[string]any{
					"running":     recalc.IsRunning,
					"total_runs":  recalc.TotalRuns,
					"skipped":     recalc.TotalSkipped,
					"last_run_at": recalc.LastRunAt,
					"last_error":  recalc.LastError,
				},
				"auto_adjustment": map[string]any{
					"running":           adjust.IsRunning,
					"total_runs":        adjust.TotalRuns,
					"triggered":         adjust.TotalTriggered,
					"last_processed_at": adjust.LastProcessedAt,
				},
				"escalation": map[string]any{
					"running":      escalate.IsRunning,
					"total_runs":   escalate.TotalRuns,
					"escalated":    escalate.TotalEscalated,
					"last_scan_at": escalate.LastScanAt,
				},
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(response)
		})

		mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
			checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := container.DBConn.Ping(checkCtx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status": "not_ready",
					"error":  err.Error(),
				})
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "ready"})
		})

		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down worker")

	service.Stop()
	logger.Info("worker stopped")
}

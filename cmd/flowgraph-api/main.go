// Flowgraph API — HTTP сервер компиляции workflow документов.
//
// API:
//   - Компилирует документы синхронно (/api/v1/compile, /upload)
//   - Проверяет и разрешает ссылки на параметры (/validate, /resolve)
//   - Ставит асинхронные задачи в RabbitMQ (/api/v1/jobs), если брокер доступен
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Flowgraph/internal/api"
	"github.com/shaiso/Flowgraph/internal/config"
	"github.com/shaiso/Flowgraph/internal/mq"
	"github.com/shaiso/Flowgraph/internal/telemetry"
)

var startTime = time.Now()

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting flowgraph-api")

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts, err := cfg.CompilerOptions()
	if err != nil {
		logger.Error("invalid compiler options", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// RabbitMQ нужен только для /api/v1/jobs
	var publisher api.JobPublisher
	mqConn, err := mq.NewConnection(cfg.RabbitMQ.URL, "api", logger, mq.DeclareTopology)
	if err != nil {
		logger.Warn("RabbitMQ not available, async jobs disabled", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		publisher = mq.NewPublisher(mqConn, logger)
	}

	handler := api.NewHandler(api.Config{
		Options:        opts,
		MaxUploadBytes: cfg.API.MaxUploadBytes,
		Publisher:      publisher,
		Logger:         logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := cfg.APIAddr()

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening",
			"addr", addr,
			"strict", opts.Strict,
			"duplicates", opts.Duplicates,
			"merge", opts.Merge,
			"async_jobs", publisher != nil,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

// Flowgraph Worker — компилирует документы из очереди.
//
// Worker:
//   - Получает запросы из compile.requests
//   - Компилирует и отрисовывает граф
//   - Публикует результат в flowgraph.compile (reply_to или compile.results)
//   - Битые сообщения уходят в dlq.compile
//
// Workers масштабируются горизонтально.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Flowgraph/internal/config"
	"github.com/shaiso/Flowgraph/internal/mq"
	"github.com/shaiso/Flowgraph/internal/telemetry"
	"github.com/shaiso/Flowgraph/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting flowgraph-worker")

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

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Без брокера worker бесполезен
	mqConn, err := mq.NewConnection(cfg.RabbitMQ.URL, "worker", logger, mq.DeclareTopology)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")
	logger.Debug("topology ready", "topology", mq.TopologyInfo())

	w := worker.New(worker.Config{
		Options:   opts,
		Publisher: mq.NewPublisher(mqConn, logger),
		Conn:      mqConn,
		Prefetch:  cfg.Worker.Prefetch,
		Logger:    logger,
	})

	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		if !mqConn.IsConnected() || w.IsStopped() {
			rw.WriteHeader(http.StatusServiceUnavailable)
			rw.Write([]byte("rabbitmq disconnected"))
			return
		}
		rw.WriteHeader(http.StatusOK)
		rw.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := cfg.WorkerAddr()
	go func() {
		logger.Info("listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	w.Stop()
	logger.Info("flowgraph-worker stopped")
}

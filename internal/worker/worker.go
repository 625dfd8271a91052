package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shaiso/Flowgraph/internal/engine"
	"github.com/shaiso/Flowgraph/internal/mq"
)

// defaultPrefetch — сколько запросов consumer берёт из очереди заранее.
const defaultPrefetch = 10

// ResultPublisher публикует результаты компиляции.
// Реализуется *mq.Publisher.
type ResultPublisher interface {
	PublishCompileResult(ctx context.Context, replyTo string, payload mq.CompileResultPayload) error
}

// Worker компилирует документы из очереди compile.requests.
//
// Worker не хранит состояния между сообщениями: результат каждой
// компиляции сразу публикуется в flowgraph.compile. Несколько экземпляров
// могут потреблять из одной очереди.
type Worker struct {
	opts      engine.Options
	publisher ResultPublisher
	conn      *mq.Connection
	prefetch  int

	consumer *mq.Consumer

	// Lifecycle
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Worker.
type Config struct {
	// Options — настройки компилятора по умолчанию.
	// Запрос может переопределить strict, duplicates, merge и display.
	Options engine.Options

	// MQ
	Publisher ResultPublisher
	Conn      *mq.Connection

	// Prefetch — предвыборка consumer (default: 10).
	Prefetch int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		opts:      cfg.Options,
		publisher: cfg.Publisher,
		conn:      cfg.Conn,
		prefetch:  prefetch,
		logger:    logger,
	}
}

// Start запускает consumer очереди compile.requests.
func (w *Worker) Start(ctx context.Context) error {
	if w.conn == nil {
		return ErrNoConnection
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker", "prefetch", w.prefetch)

	w.consumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
		Queue: mq.QueueCompileRequests,
		Handlers: mq.Handlers{
			mq.MessageTypeCompileRequest: w.handleCompileRequest,
		},
		Prefetch: w.prefetch,
	})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("compile consumer error", "error", err)
		}
	}()

	w.logger.Info("worker started")
	return nil
}

// Stop останавливает Worker и ждёт завершения обработки.
func (w *Worker) Stop() {
	w.stoppedMu.Lock()
	w.stopped = true
	w.stoppedMu.Unlock()

	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}

	if w.consumer != nil {
		w.consumer.Stop()
	}

	w.wg.Wait()

	w.logger.Info("worker stopped")
}

// IsStopped проверяет, остановлен ли Worker.
func (w *Worker) IsStopped() bool {
	w.stoppedMu.RLock()
	defer w.stoppedMu.RUnlock()
	return w.stopped
}

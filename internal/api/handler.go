package api

import (
	"context"
	"log/slog"

	"github.com/shaiso/Flowgraph/internal/engine"
	"github.com/shaiso/Flowgraph/internal/mq"
)

// defaultMaxUploadBytes — лимит тела запроса, если не задан в Config.
const defaultMaxUploadBytes = 10 << 20

// JobPublisher ставит документы в очередь на асинхронную компиляцию.
// Реализуется *mq.Publisher.
type JobPublisher interface {
	PublishCompileRequest(ctx context.Context, payload mq.CompileRequestPayload) error
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	opts           engine.Options
	maxUploadBytes int64
	publisher      JobPublisher
	logger         *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	// Options — настройки компилятора по умолчанию.
	// Параметры запроса (?strict=, ?duplicates=, ...) переопределяют их.
	Options engine.Options

	// MaxUploadBytes — максимальный размер документа.
	MaxUploadBytes int64

	// Publisher — очередь для /api/v1/jobs. nil отключает асинхронную компиляцию.
	Publisher JobPublisher

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		opts:           cfg.Options,
		maxUploadBytes: maxBytes,
		publisher:      cfg.Publisher,
		logger:         logger,
	}
}

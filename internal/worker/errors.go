package worker

import "errors"

// Ошибки воркера.
var (
	// ErrNoConnection — worker запущен без соединения с RabbitMQ.
	ErrNoConnection = errors.New("rabbitmq connection is required")

	// ErrInvalidPayload — сообщение не удалось разобрать как запрос компиляции.
	ErrInvalidPayload = errors.New("invalid compile request payload")

	// ErrNoPublisher — некуда отправить результат.
	ErrNoPublisher = errors.New("result publisher is not configured")
)

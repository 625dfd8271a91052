package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Flowgraph/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeCompileRequest MessageType = "compile.request"
	MessageTypeCompileResult  MessageType = "compile.result"
)

// Статусы результата компиляции.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// CompileRequestPayload — запрос на асинхронную компиляцию.
type CompileRequestPayload struct {
	// JobID — идентификатор задания, возвращается в результате.
	JobID string `json:"job_id"`

	// Document — workflow документ (JSON).
	Document json.RawMessage `json:"document"`

	// Format — формат вывода (dot, mermaid, json).
	Format string `json:"format,omitempty"`

	// Strict — неразрешённые ссылки считаются ошибкой.
	Strict bool `json:"strict,omitempty"`

	// Duplicates, Merge, Display — переопределяют настройки компилятора worker.
	Duplicates string `json:"duplicates,omitempty"`
	Merge      string `json:"merge,omitempty"`
	Display    string `json:"display,omitempty"`

	// ReplyTo — routing key для результата в flowgraph.compile.
	// Пустое значение означает очередь compile.results.
	ReplyTo string `json:"reply_to,omitempty"`
}

// CompileResultPayload — результат компиляции.
type CompileResultPayload struct {
	JobID     string                   `json:"job_id"`
	Status    string                   `json:"status"` // SUCCEEDED или FAILED
	Format    string                   `json:"format,omitempty"`
	Rendered  string                   `json:"rendered,omitempty"`
	Issues    []domain.ValidationIssue `json:"issues"`
	Error     string                   `json:"error,omitempty"`
	ErrorCode string                   `json:"error_code,omitempty"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishCompileRequest публикует запрос на компиляцию.
// Потребитель: flowgraph-worker.
func (p *Publisher) PublishCompileRequest(ctx context.Context, payload CompileRequestPayload) error {
	return p.PublishJSON(ctx, ExchangeCompile, RoutingKeyRequest, MessageTypeCompileRequest, payload)
}

// ValidateReplyTo проверяет routing key для результата.
// Ключ запросов запрещён: результат попал бы обратно к worker.
func ValidateReplyTo(replyTo string) error {
	if RoutingKey(replyTo) == RoutingKeyRequest {
		return fmt.Errorf("%w: %q", ErrInvalidReplyTo, replyTo)
	}
	return nil
}

// PublishCompileResult публикует результат компиляции.
// Результат уходит по routing key replyTo, а без него — в compile.results.
func (p *Publisher) PublishCompileResult(ctx context.Context, replyTo string, payload CompileResultPayload) error {
	if err := ValidateReplyTo(replyTo); err != nil {
		return err
	}

	key := RoutingKeyResult
	if replyTo != "" {
		key = RoutingKey(replyTo)
	}

	return p.PublishJSON(ctx, ExchangeCompile, key, MessageTypeCompileResult, payload)
}

// PublishJSON публикует произвольный JSON payload.
func (p *Publisher) PublishJSON(ctx context.Context, exchange Exchange, routingKey RoutingKey, msgType MessageType, payload any) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, exchange, routingKey, msg)
}

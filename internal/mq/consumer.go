package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler обрабатывает сообщение одного типа.
// nil — ack; ошибка — nack с requeue; ошибка, обёрнутая Permanent, — в DLQ.
type Handler func(ctx context.Context, msg *Message) error

// Handlers сопоставляет тип сообщения с обработчиком.
type Handlers map[MessageType]Handler

// ConsumerConfig — конфигурация consumer.
type ConsumerConfig struct {
	// Queue — очередь, из которой читаются сообщения.
	Queue Queue

	// Handlers — обработчики по типу сообщения.
	// Сообщение без обработчика уходит в DLQ.
	Handlers Handlers

	// Prefetch — сколько неподтверждённых сообщений брокер отдаёт заранее.
	Prefetch int
}

// Consumer читает очередь и передаёт сообщения обработчику их типа.
//
// Решение по каждому сообщению (ack, requeue, DLQ) принимает dispatch;
// consumer только применяет его к доставке.
type Consumer struct {
	conn     *Connection
	logger   *slog.Logger
	queue    Queue
	handlers Handlers
	prefetch int

	cancelFunc context.CancelFunc
}

// NewConsumer создаёт Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}

	return &Consumer{
		conn:     conn,
		logger:   logger.With("queue", cfg.Queue),
		queue:    cfg.Queue,
		handlers: cfg.Handlers,
		prefetch: prefetch,
	}
}

// Start читает очередь до отмены контекста.
// При разрыве соединения consumer ждёт переподключения и подписывается заново.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel

	for {
		reconnected := c.conn.Reconnected()

		deliveries, err := c.subscribe()
		if err != nil {
			c.logger.Error("failed to subscribe", "error", err)
		} else {
			c.logger.Info("consumer started")
			c.drain(ctx, deliveries)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Warn("waiting for reconnect")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.conn.Done():
			return ErrClosed
		case <-reconnected:
		}
	}
}

// subscribe задаёт prefetch и подписывается на очередь.
func (c *Consumer) subscribe() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, ErrNoChannel
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		string(c.queue), // queue
		"",              // consumer tag (auto-generated)
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.queue, err)
	}

	return deliveries, nil
}

// drain обрабатывает доставки, пока канал открыт и контекст жив.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.settle(d, c.dispatch(ctx, d.Body))
		}
	}
}

// outcome — решение по сообщению.
type outcome int

const (
	outcomeAck outcome = iota
	outcomeRequeue
	outcomeDeadLetter
)

func (o outcome) String() string {
	switch o {
	case outcomeAck:
		return "ack"
	case outcomeRequeue:
		return "requeue"
	default:
		return "dead-letter"
	}
}

// dispatch разбирает сообщение и вызывает обработчик его типа.
func (c *Consumer) dispatch(ctx context.Context, body []byte) outcome {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		c.logger.Error("failed to unmarshal message", "error", err, "body", string(body))
		return outcomeDeadLetter
	}

	logger := c.logger.With("message_id", msg.ID, "type", msg.Type)

	handler, ok := c.handlers[msg.Type]
	if !ok {
		logger.Error("no handler for message", "error", ErrUnknownMessageType)
		return outcomeDeadLetter
	}

	logger.Debug("received message")

	if err := handler(ctx, &msg); err != nil {
		permanent := errors.Is(err, ErrPermanent)
		logger.Error("handler failed", "permanent", permanent, "error", err)
		if permanent {
			return outcomeDeadLetter
		}
		return outcomeRequeue
	}

	return outcomeAck
}

// settle применяет решение к доставке.
func (c *Consumer) settle(d amqp.Delivery, o outcome) {
	var err error
	switch o {
	case outcomeAck:
		err = d.Ack(false)
	case outcomeRequeue:
		err = d.Nack(false, true)
	default:
		err = d.Nack(false, false)
	}
	if err != nil {
		c.logger.Warn("failed to settle delivery", "outcome", o.String(), "error", err)
	}
}

// Stop останавливает consumer.
func (c *Consumer) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
}

// ParsePayload декодирует payload сообщения в T.
// После json.Unmarshal в Message payload хранится как map, поэтому
// он кодируется обратно и декодируется в нужный тип.
func ParsePayload[T any](msg *Message) (T, error) {
	var result T

	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return result, fmt.Errorf("marshal payload: %w", err)
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return result, fmt.Errorf("unmarshal payload: %w", err)
	}

	return result, nil
}

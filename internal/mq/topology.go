package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeCompile Exchange = "flowgraph.compile"
	ExchangeDLQ     Exchange = "flowgraph.dlq"
)

// Queues — имена очередей.
const (
	QueueCompileRequests Queue = "compile.requests"
	QueueCompileResults  Queue = "compile.results"
	QueueDLQCompile      Queue = "dlq.compile"
)

// Routing keys.
const (
	RoutingKeyRequest    RoutingKey = "request"
	RoutingKeyResult     RoutingKey = "result"
	RoutingKeyDLQCompile RoutingKey = "compile"
)

// DeclareTopology объявляет exchanges, очереди и привязки.
// Операции идемпотентны; передаётся в NewConnection как ChannelSetup,
// чтобы топология объявлялась при каждом подключении.
func DeclareTopology(ch *amqp.Channel) error {
	// 1. Создаём exchanges
	if err := declareExchanges(ch); err != nil {
		return err
	}

	// 2. Создаём queues
	if err := declareQueues(ch); err != nil {
		return err
	}

	// 3. Привязываем queues к exchanges
	return bindQueues(ch)
}

// declareExchanges создаёт обменники.
func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeCompile, "direct"},
		{ExchangeDLQ, "direct"},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

// declareQueues создаёт очереди.
func declareQueues(ch *amqp.Channel) error {
	// Аргументы для очередей с DLQ
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQCompile),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// compile.requests — с DLQ (нечитаемые запросы)
		{QueueCompileRequests, dlqArgs},

		// compile.results — результаты для тех, кто не указал reply_to
		{QueueCompileResults, nil},

		// dlq.compile — сама DLQ очередь
		{QueueDLQCompile, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

// bindQueues привязывает очереди к обменникам.
func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueCompileRequests, RoutingKeyRequest, ExchangeCompile},
		{QueueCompileResults, RoutingKeyResult, ExchangeCompile},
		{QueueDLQCompile, RoutingKeyDLQCompile, ExchangeDLQ},
	}

	for _, b := range bindings {
		err := ch.QueueBind(
			string(b.queue),      // queue name
			string(b.routingKey), // routing key
			string(b.exchange),   // exchange
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Flowgraph RabbitMQ Topology:

    flowgraph.compile (direct)
    ├── compile.requests [routing: request]
    │       Consumer: flowgraph-worker
    │       DLQ: dlq.compile
    └── compile.results [routing: result]
            Consumer: клиент (если не указан reply_to)

    flowgraph.dlq (direct)
    └── dlq.compile [routing: compile]
            Manual processing
  `
}

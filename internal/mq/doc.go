// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, ChannelSetup, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings (ChannelSetup)
//   - publisher.go  — публикация запросов и результатов компиляции
//   - consumer.go   — потребление очереди с обработчиком на каждый тип сообщения
//   - errors.go     — ошибки и пометка Permanent
//
// Типы сообщений:
//   - compile.request — документ для асинхронной компиляции
//   - compile.result  — отрисованный граф или ошибка
//
// Exchanges:
//   - flowgraph.compile — запросы и результаты
//   - flowgraph.dlq     — dead letter queue
package mq

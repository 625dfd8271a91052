// Package telemetry обеспечивает наблюдаемость сервисов.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики компиляций и HTTP запросов
//
// API и worker используют единый формат логирования
// и экспортируют метрики на /metrics endpoint.
package telemetry

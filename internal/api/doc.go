// Package api содержит HTTP API сервер компилятора.
//
// Структура:
//   - handler.go         — Handler с DI (настройки компилятора, publisher, logger)
//   - routes.go          — регистрация маршрутов
//   - middleware.go      — middleware (request id, logging, metrics, recovery)
//   - response.go        — унифицированные JSON-ответы и обработка ошибок
//   - dto.go             — Data Transfer Objects (request/response)
//   - compile_handler.go — /compile, /upload, /validate, /resolve, /example
//   - job_handler.go     — /jobs (асинхронная компиляция через RabbitMQ)
//
// Синтаксис тела определяется по Content-Type, а для загруженного
// файла — по расширению.
package api

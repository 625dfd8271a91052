// Package cli реализует инструмент командной строки Flowgraph.
//
// # Обзор
//
// CLI компилирует workflow документы в граф локально или, с флагом
// --api-url, через Flowgraph API. Локальный режим использует
// internal/engine и internal/render напрямую; настройки компилятора
// берутся из конфигурации (internal/config), флаги команд их переопределяют.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Flowgraph API: /compile, /validate, /resolve.
// Разбирает DataResponse и ErrorResponse.
//
//	client := cli.NewClient("http://localhost:8080")
//	resp, err := client.Compile(data, engine.SyntaxYAML, nil)
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Текст и таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.Encoder) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Warn/Error) — в stderr.
// Это позволяет использовать pipe: flowgraph compile flow.yaml | dot -Tsvg
//
// ## Commands
//
//   - compile FILE — граф в формате dot, mermaid или json
//   - validate FILE — неразрешённые ссылки, код выхода 1 при их наличии
//   - resolve FILE — документ с подставленными параметрами
//   - example — образец документа (JSON, с --yaml — YAML)
//
// Команды создаются фабричными функциями (NewCompileCmd и т.д.),
// принимающими clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags. clientFn возвращает
// nil в локальном режиме.
package cli

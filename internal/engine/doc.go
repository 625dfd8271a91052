// Package engine содержит компилятор workflow документов в граф.
//
// Включает:
//   - parser.go      — разбор документа из JSON, YAML или map[string]any
//   - references.go  — поиск ссылок на неопределённые параметры
//   - resolve.go     — подстановка $.parameters.<name>
//   - consolidate.go — группировка шагов параллельного блока по типу
//   - dag.go         — построение графа (fan-out / fan-in)
//   - label.go       — подписи узлов
//   - compiler.go    — фасад Compiler
//
// Компилятор не выполняет ввод-вывод и не пишет логи: это делают
// HTTP API, CLI и worker, которые его вызывают.
package engine

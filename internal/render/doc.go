// Package render переводит граф компилятора в текстовые форматы:
//   - dot.go     — Graphviz DOT с HTML-подписями
//   - mermaid.go — Mermaid flowchart
//   - json.go    — переносимое JSON описание (узлы, рёбра, подписи)
//
// Растеризация в картинку не входит: DOT и Mermaid отдаются
// внешним инструментам раскладки.
package render

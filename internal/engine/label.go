package engine

import (
	"strings"

	"github.com/shaiso/Flowgraph/internal/domain"
)

// MissingMarker дописывается к неразрешённой ссылке в подписи.
const MissingMarker = " (MISSING)"

// Bullet — маркер строки дочернего шага в подписи группы.
const Bullet = "•"

// LabelLine — строка подписи узла после заголовка.
type LabelLine struct {
	// Text — текст строки без маркера.
	Text string

	// Bullet — строка описывает дочерний шаг группы.
	Bullet bool

	// Missing — в строке есть неразрешённая ссылка.
	Missing bool
}

// FormatValue возвращает значение параметра для подписи.
// После Resolve ссылка может остаться только на отсутствующий параметр.
func FormatValue(v domain.Value) string {
	if v.IsReference() {
		return v.Raw() + MissingMarker
	}
	return v.Raw()
}

// FormatParams возвращает параметры как строки "key: value" в порядке документа.
func FormatParams(params domain.Params) []LabelLine {
	lines := make([]LabelLine, 0, len(params))
	for _, p := range params {
		lines = append(lines, LabelLine{
			Text:    p.Key + ": " + FormatValue(p.Value),
			Missing: p.Value.IsReference(),
		})
	}
	return lines
}

// formatChild сворачивает дочерний шаг группы в одну строку "name: k: v, k2: v2".
func formatChild(child GroupChild) LabelLine {
	line := LabelLine{Text: child.Name, Bullet: true}
	if len(child.Parameters) == 0 {
		return line
	}

	parts := make([]string, 0, len(child.Parameters))
	for _, p := range FormatParams(child.Parameters) {
		parts = append(parts, p.Text)
		line.Missing = line.Missing || p.Missing
	}
	line.Text += ": " + strings.Join(parts, ", ")
	return line
}

// Lines возвращает строки подписи без заголовка.
func (n *Node) Lines() []LabelLine {
	switch {
	case n.Kind == NodeConvergence:
		return nil
	case n.Kind == NodeGroup && n.Display != DisplayTable:
		lines := make([]LabelLine, 0, len(n.Children))
		for _, child := range n.Children {
			lines = append(lines, formatChild(child))
		}
		return lines
	default:
		return FormatParams(n.Params)
	}
}

// Label возвращает текстовую подпись: заголовок и строки через перевод строки.
// У узла схождения подпись пустая.
func (n *Node) Label() string {
	if n.Kind == NodeConvergence {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(n.Title)
	for _, line := range n.Lines() {
		sb.WriteByte('\n')
		if line.Bullet {
			sb.WriteString(Bullet + " ")
		}
		sb.WriteString(line.Text)
	}
	return sb.String()
}

// HasMissing — true, если в подписи есть неразрешённая ссылка.
func (n *Node) HasMissing() bool {
	for _, line := range n.Lines() {
		if line.Missing {
			return true
		}
	}
	return false
}

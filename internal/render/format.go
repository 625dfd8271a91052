package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shaiso/Flowgraph/internal/engine"
)

// ErrUnknownFormat — неподдерживаемый формат вывода.
var ErrUnknownFormat = errors.New("unknown output format")

// Format — формат вывода графа.
type Format string

const (
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
	FormatJSON    Format = "json"
)

// DefaultFormat используется, если формат не указан.
const DefaultFormat = FormatDOT

// Formats возвращает поддерживаемые форматы.
func Formats() []Format {
	return []Format{FormatDOT, FormatMermaid, FormatJSON}
}

// ParseFormat разбирает имя формата. Пустая строка даёт DefaultFormat.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return DefaultFormat, nil
	case FormatDOT, FormatMermaid, FormatJSON:
		return f, nil
	case "gv", "graphviz":
		return FormatDOT, nil
	default:
		return "", fmt.Errorf("%w: %q (want dot, mermaid or json)", ErrUnknownFormat, s)
	}
}

// ContentType возвращает MIME тип для HTTP ответа.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension возвращает расширение файла для формата.
func (f Format) Extension() string {
	switch f {
	case FormatDOT:
		return ".dot"
	case FormatMermaid:
		return ".mmd"
	default:
		return ".json"
	}
}

// Render отрисовывает граф в указанном формате.
func Render(g *engine.Graph, f Format) ([]byte, error) {
	if g == nil {
		return nil, errors.New("graph is nil")
	}

	switch f {
	case FormatDOT:
		return []byte(DOT(g)), nil
	case FormatMermaid:
		return []byte(Mermaid(g)), nil
	case FormatJSON:
		return JSON(g)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

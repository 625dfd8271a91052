package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/shaiso/Flowgraph/internal/engine"
)

// DOT возвращает граф в формате Graphviz.
//
// Подписи HTML-подобные: заголовок жирным, строки параметров по левому краю,
// неразрешённые ссылки красным. Группы одного параллельного блока стоят
// в одном ранге, узлы схождения рисуются точкой.
func DOT(g *engine.Graph) string {
	var sb strings.Builder
	sb.WriteString("digraph workflow {\n")
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    node [shape=rect, fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("    edge [arrowsize=0.7];\n\n")

	for _, node := range g.Nodes {
		if node.Kind == engine.NodeConvergence {
			fmt.Fprintf(&sb, "    %s [shape=point, width=0.1, label=\"\"];\n", dotID(node.ID))
			continue
		}
		fmt.Fprintf(&sb, "    %s [label=<%s>];\n", dotID(node.ID), dotLabel(node))
	}

	// Группы блока на одном уровне
	for _, ids := range blockGroups(g) {
		if len(ids) < 2 {
			continue
		}
		quoted := make([]string, len(ids))
		for i, id := range ids {
			quoted[i] = dotID(id)
		}
		fmt.Fprintf(&sb, "    { rank=same; %s; }\n", strings.Join(quoted, "; "))
	}

	if len(g.Edges) > 0 {
		sb.WriteByte('\n')
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&sb, "    %s -> %s;\n", dotID(e.From), dotID(e.To))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// dotLabel собирает HTML-подпись узла.
func dotLabel(node *engine.Node) string {
	var sb strings.Builder
	sb.WriteString("<b>")
	sb.WriteString(html.EscapeString(node.Title))
	sb.WriteString("</b>")

	for _, line := range node.Lines() {
		sb.WriteString(`<br align="left"/>`)

		text := html.EscapeString(line.Text)
		if line.Bullet {
			text = engine.Bullet + " " + text
		}
		if line.Missing {
			text = `<font color="red">` + text + `</font>`
		}
		sb.WriteString(text)
	}

	if len(node.Lines()) > 0 {
		sb.WriteString(`<br align="left"/>`)
	}
	return sb.String()
}

// dotID возвращает идентификатор в кавычках.
func dotID(id string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(id) + `"`
}

// blockGroups возвращает ID групп по блокам в порядке появления блоков.
func blockGroups(g *engine.Graph) [][]string {
	index := make(map[string]int)
	out := make([][]string, 0)

	for _, node := range g.Nodes {
		if node.Kind != engine.NodeGroup {
			continue
		}
		pos, ok := index[node.Block]
		if !ok {
			pos = len(out)
			index[node.Block] = pos
			out = append(out, nil)
		}
		out[pos] = append(out[pos], node.ID)
	}

	return out
}

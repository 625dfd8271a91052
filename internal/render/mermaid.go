package render

import (
	"fmt"
	"strings"

	"github.com/shaiso/Flowgraph/internal/engine"
)

// Mermaid возвращает граф как Mermaid flowchart.
//
// Идентификаторы узлов заменяются на n0, n1, ... : имена шагов могут
// содержать пробелы и символы, недопустимые в Mermaid.
//   - Шаг: [Rectangle]
//   - Группа: [[Subroutine]]
//   - Точка схождения: ((Circle)) без подписи
//
// Узлы с неразрешёнными ссылками получают класс missing.
func Mermaid(g *engine.Graph) string {
	ids := make(map[string]string, len(g.Nodes))
	for i, node := range g.Nodes {
		ids[node.ID] = fmt.Sprintf("n%d", i)
	}

	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	missing := make([]string, 0)
	for _, node := range g.Nodes {
		id := ids[node.ID]

		switch node.Kind {
		case engine.NodeConvergence:
			fmt.Fprintf(&sb, "    %s((\" \"))\n", id)
			continue
		case engine.NodeGroup:
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", id, mermaidLabel(node))
		default:
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, mermaidLabel(node))
		}

		if node.HasMissing() {
			missing = append(missing, id)
		}
	}

	for _, e := range g.Edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", ids[e.From], ids[e.To])
	}

	if len(missing) > 0 {
		sb.WriteString("\n    classDef missing stroke:#d32f2f,stroke-width:2px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s missing;\n", strings.Join(missing, ","))
	}

	return sb.String()
}

// mermaidLabel собирает подпись узла; строки разделяются <br/>.
func mermaidLabel(node *engine.Node) string {
	parts := []string{"<b>" + mermaidEscape(node.Title) + "</b>"}
	for _, line := range node.Lines() {
		text := mermaidEscape(line.Text)
		if line.Bullet {
			text = engine.Bullet + " " + text
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "<br/>")
}

// mermaidEscape заменяет символы, ломающие строку подписи.
func mermaidEscape(s string) string {
	r := strings.NewReplacer(`"`, "#quot;", "<", "#lt;", ">", "#gt;", "\n", " ")
	return r.Replace(s)
}

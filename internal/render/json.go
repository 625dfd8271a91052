package render

import (
	"encoding/json"

	"github.com/shaiso/Flowgraph/internal/engine"
)

// GraphJSON — переносимое описание графа.
type GraphJSON struct {
	Nodes []NodeJSON `json:"nodes"`
	Edges []EdgeJSON `json:"edges"`
}

// NodeJSON — узел графа.
type NodeJSON struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Title    string   `json:"title,omitempty"`
	Type     string   `json:"type,omitempty"`
	Block    string   `json:"block,omitempty"`
	Label    string   `json:"label"`
	Lines    []string `json:"lines,omitempty"`
	Children []string `json:"children,omitempty"`
	Missing  bool     `json:"missing,omitempty"`
}

// EdgeJSON — ребро графа.
type EdgeJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NewGraphJSON конвертирует граф в DTO.
func NewGraphJSON(g *engine.Graph) GraphJSON {
	out := GraphJSON{
		Nodes: make([]NodeJSON, 0, len(g.Nodes)),
		Edges: make([]EdgeJSON, 0, len(g.Edges)),
	}

	for _, node := range g.Nodes {
		n := NodeJSON{
			ID:      node.ID,
			Kind:    string(node.Kind),
			Title:   node.Title,
			Type:    node.StepType,
			Block:   node.Block,
			Label:   node.Label(),
			Missing: node.HasMissing(),
		}
		for _, line := range node.Lines() {
			n.Lines = append(n.Lines, line.Text)
		}
		for _, child := range node.Children {
			n.Children = append(n.Children, child.Name)
		}
		out.Nodes = append(out.Nodes, n)
	}

	for _, e := range g.Edges {
		out.Edges = append(out.Edges, EdgeJSON{From: e.From, To: e.To})
	}

	return out
}

// JSON сериализует граф с отступами.
func JSON(g *engine.Graph) ([]byte, error) {
	return json.MarshalIndent(NewGraphJSON(g), "", "  ")
}

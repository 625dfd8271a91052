package render_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Flowgraph/internal/engine"
	"github.com/shaiso/Flowgraph/internal/render"
)

const workflow = `{
	"parameters": {"region": "eu"},
	"workflow": [
		{"type": "Seq", "name": "Start", "parameters": {"zone": "$.parameters.region"}},
		{"type": "ParallelExecution", "name": "PB", "steps": [
			{"type": "Copy", "name": "c1", "parameters": {"src": "a & b"}},
			{"type": "Copy", "name": "c2", "parameters": {"src": "$.parameters.missing"}},
			{"type": "Notify", "name": "n1"}
		]}
	]
}`

func compile(t *testing.T, opts engine.Options) *engine.Graph {
	t.Helper()

	c, err := engine.NewCompiler(opts)
	require.NoError(t, err)

	result, err := c.CompileBytes([]byte(workflow), engine.SyntaxJSON)
	require.NoError(t, err)
	return result.Graph
}

func TestDOT(t *testing.T) {
	out := render.DOT(compile(t, engine.Options{}))

	assert.Contains(t, out, "digraph workflow {")
	assert.Contains(t, out, "rankdir=TB;")
	assert.Contains(t, out, `"Start" [label=<<b>Start</b><br align="left"/>zone: eu<br align="left"/>>];`)
	assert.Contains(t, out, `• c1: src: a &amp; b`)
	assert.Contains(t, out, `<font color="red">• c2: src: $.parameters.missing (MISSING)</font>`)
	assert.Contains(t, out, `{ rank=same; "Copy"; "Notify"; }`)
	assert.Contains(t, out, `"PB.join" [shape=point, width=0.1, label=""];`)
	assert.Contains(t, out, `"Start" -> "Copy";`)
	assert.Contains(t, out, `"Notify" -> "PB.join";`)
}

func TestDOT_EscapesIDs(t *testing.T) {
	g := compileDoc(t, `{"workflow": [{"type": "T", "name": "say \"hi\""}]}`)

	assert.Contains(t, render.DOT(g), `"say \"hi\"" [label=<<b>say &#34;hi&#34;</b>>];`)
}

func TestMermaid(t *testing.T) {
	out := render.Mermaid(compile(t, engine.Options{}))

	assert.Contains(t, out, "flowchart TD\n")
	assert.Contains(t, out, `n0["<b>Start</b><br/>zone: eu"]`)
	assert.Contains(t, out, `n1[["<b>Copy</b><br/>• c1: src: a & b<br/>• c2: src: $.parameters.missing (MISSING)"]]`)
	assert.Contains(t, out, `n3((" "))`)
	assert.Contains(t, out, "n0 --> n1")
	assert.Contains(t, out, "n2 --> n3")
	assert.Contains(t, out, "class n1 missing;")
}

func TestMermaid_NoMissingClass(t *testing.T) {
	g := compileDoc(t, `{"workflow": [{"type": "T", "name": "A"}]}`)

	assert.NotContains(t, render.Mermaid(g), "classDef missing")
}

func TestJSON(t *testing.T) {
	data, err := render.JSON(compile(t, engine.Options{Display: engine.DisplayTable, NoTrailingSink: true}))
	require.NoError(t, err)

	var got render.GraphJSON
	require.NoError(t, json.Unmarshal(data, &got))

	require.Len(t, got.Nodes, 3)
	assert.Equal(t, "Copy", got.Nodes[1].ID)
	assert.Equal(t, "group", got.Nodes[1].Kind)
	assert.Equal(t, "PB", got.Nodes[1].Block)
	assert.Equal(t, []string{"c1", "c2"}, got.Nodes[1].Children)
	assert.Equal(t, []string{"src: $.parameters.missing (MISSING)"}, got.Nodes[1].Lines)
	assert.True(t, got.Nodes[1].Missing)
	assert.Equal(t, []render.EdgeJSON{
		{From: "Start", To: "Copy"},
		{From: "Start", To: "Notify"},
	}, got.Edges)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want render.Format
	}{
		{in: "", want: render.FormatDOT},
		{in: "dot", want: render.FormatDOT},
		{in: "Graphviz", want: render.FormatDOT},
		{in: "mermaid", want: render.FormatMermaid},
		{in: " json ", want: render.FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := render.ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := render.ParseFormat("png")
	assert.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestRender(t *testing.T) {
	g := compile(t, engine.Options{})

	for _, f := range render.Formats() {
		out, err := render.Render(g, f)
		require.NoError(t, err, f)
		assert.NotEmpty(t, out, f)
	}

	_, err := render.Render(g, "svg")
	assert.ErrorIs(t, err, render.ErrUnknownFormat)
}

func compileDoc(t *testing.T, data string) *engine.Graph {
	t.Helper()

	doc, err := engine.Parse([]byte(data), engine.SyntaxAuto)
	require.NoError(t, err)

	result, err := engine.Compile(doc, engine.Options{})
	require.NoError(t, err)
	return result.Graph
}

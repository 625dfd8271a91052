package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Flowgraph/internal/api"
	"github.com/shaiso/Flowgraph/internal/engine"
)

const sampleYAML = `name: deploy
parameters:
  region: eu-west-1
workflow:
  - type: Seq
    name: Start
    parameters:
      region: $.parameters.region
  - type: ParallelExecution
    name: Fan
    steps:
      - type: Copy
        name: c1
        parameters:
          src: a
      - type: Copy
        name: c2
        parameters:
          src: b
  - type: Seq
    name: End
    parameters:
      zone: $.parameters.zone
`

const cleanJSON = `{"parameters": {"x": "1"}, "workflow": [
	{"type": "T", "name": "A", "parameters": {"k": "$.parameters.x"}},
	{"type": "T", "name": "B"}
]}`

// harness собирает команду с буферами вывода.
type harness struct {
	stdout bytes.Buffer
	stderr bytes.Buffer

	apiURL   string
	jsonMode bool
	options  engine.Options
}

func (h *harness) clientFn() *Client {
	if h.apiURL == "" {
		return nil
	}
	return NewClient(h.apiURL)
}

func (h *harness) outputFn() *Output {
	return NewOutputTo(h.jsonMode, &h.stdout, &h.stderr)
}

func (h *harness) optionsFn() (engine.Options, error) {
	return h.options, nil
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()

	root := &cobra.Command{Use: "flowgraph", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(
		NewCompileCmd(h.clientFn, h.outputFn, h.optionsFn),
		NewValidateCmd(h.clientFn, h.outputFn),
		NewResolveCmd(h.clientFn, h.outputFn),
		NewExampleCmd(h.outputFn),
	)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(""))
	return root.Execute()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	api.NewHandler(api.Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}).RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCompile_LocalDOT(t *testing.T) {
	h := &harness{}
	path := writeFile(t, "flow.yaml", sampleYAML)

	require.NoError(t, h.run(t, "compile", path))

	out := h.stdout.String()
	assert.True(t, strings.HasPrefix(out, "digraph"), out)
	assert.Contains(t, out, `"Start" -> "Copy"`)
	assert.Contains(t, out, `"Copy" -> "End"`)

	// Неразрешённая ссылка — предупреждение, а не ошибка
	assert.Contains(t, h.stderr.String(), "Warning: step End")
	assert.Contains(t, h.stderr.String(), "$.parameters.zone")
}

func TestCompile_StrictFlag(t *testing.T) {
	h := &harness{}
	path := writeFile(t, "flow.yaml", sampleYAML)

	err := h.run(t, "compile", "--strict", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrUndefinedParameter)
}

func TestCompile_StrictFromConfig(t *testing.T) {
	h := &harness{options: engine.Options{Strict: true}}
	path := writeFile(t, "flow.yaml", sampleYAML)

	assert.ErrorIs(t, h.run(t, "compile", path), engine.ErrUndefinedParameter)

	// Явный флаг сильнее конфигурации
	h.stdout.Reset()
	assert.NoError(t, h.run(t, "compile", "--strict=false", path))
}

func TestCompile_MermaidToFile(t *testing.T) {
	h := &harness{}
	path := writeFile(t, "flow.json", cleanJSON)
	outPath := filepath.Join(t.TempDir(), "graph.mmd")

	require.NoError(t, h.run(t, "compile", "--format", "mermaid", "--out", outPath, path))

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "flowchart TD")
	assert.Empty(t, h.stdout.String())
	assert.Contains(t, h.stderr.String(), "Graph written to")
}

func TestCompile_OutDirectory(t *testing.T) {
	h := &harness{}
	path := writeFile(t, "deploy.yaml", sampleYAML)
	dir := t.TempDir()

	require.NoError(t, h.run(t, "compile", "--format", "mermaid", "-o", dir, path))

	b, err := os.ReadFile(filepath.Join(dir, "deploy.mmd"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "flowchart TD")
}

func TestCompile_JSONMode(t *testing.T) {
	h := &harness{jsonMode: true}
	path := writeFile(t, "flow.yaml", sampleYAML)

	require.NoError(t, h.run(t, "compile", "--format", "json", path))

	var resp CompileResponse
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &resp))
	assert.Equal(t, "json", resp.Format)
	assert.True(t, json.Valid([]byte(resp.Rendered)))
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, "zone", resp.Issues[0].Parameter)
}

func TestCompile_NoSink(t *testing.T) {
	doc := `{"workflow": [
		{"type": "T", "name": "A"},
		{"type": "ParallelExecution", "name": "P", "steps": [
			{"type": "X", "name": "x1"},
			{"type": "Y", "name": "y1"}
		]}
	]}`
	path := writeFile(t, "flow.json", doc)

	h := &harness{}
	require.NoError(t, h.run(t, "compile", path))
	assert.Contains(t, h.stdout.String(), "P.join")

	h = &harness{}
	require.NoError(t, h.run(t, "compile", "--no-sink", path))
	assert.NotContains(t, h.stdout.String(), "P.join")
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
		is   error
	}{
		{
			name: "unknown format",
			args: func(t *testing.T) []string {
				return []string{"compile", "--format", "png", writeFile(t, "f.json", cleanJSON)}
			},
		},
		{
			name: "unknown duplicates policy",
			args: func(t *testing.T) []string {
				return []string{"compile", "--duplicates", "skip", writeFile(t, "f.json", cleanJSON)}
			},
			is: engine.ErrUnknownOption,
		},
		{
			name: "missing file",
			args: func(t *testing.T) []string {
				return []string{"compile", filepath.Join(t.TempDir(), "absent.json")}
			},
		},
		{
			name: "malformed document",
			args: func(t *testing.T) []string {
				return []string{"compile", writeFile(t, "f.json", `{"workflow": [{"name": "A"}]}`)}
			},
			is: engine.ErrMalformedDocument,
		},
		{
			name: "no file argument",
			args: func(t *testing.T) []string { return []string{"compile"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &harness{}
			err := h.run(t, tt.args(t)...)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestValidate_Local(t *testing.T) {
	t.Run("issues found", func(t *testing.T) {
		h := &harness{}
		err := h.run(t, "validate", writeFile(t, "flow.yaml", sampleYAML))

		assert.ErrorIs(t, err, ErrIssuesFound)
		assert.Contains(t, h.stdout.String(), "STEP")
		assert.Contains(t, h.stdout.String(), "$.parameters.zone")
	})

	t.Run("clean", func(t *testing.T) {
		h := &harness{}
		require.NoError(t, h.run(t, "validate", writeFile(t, "flow.json", cleanJSON)))
		assert.Contains(t, h.stderr.String(), "OK")
	})

	t.Run("json output", func(t *testing.T) {
		h := &harness{jsonMode: true}
		err := h.run(t, "validate", writeFile(t, "flow.yaml", sampleYAML))
		assert.ErrorIs(t, err, ErrIssuesFound)

		var resp ValidateResponse
		require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &resp))
		assert.False(t, resp.Valid)
		assert.Len(t, resp.Issues, 1)
	})
}

func TestResolve_Local(t *testing.T) {
	h := &harness{}
	require.NoError(t, h.run(t, "resolve", writeFile(t, "flow.yaml", sampleYAML)))

	var doc struct {
		Workflow []struct {
			Name       string            `json:"name"`
			Parameters map[string]string `json:"parameters"`
		} `json:"workflow"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &doc))
	require.Len(t, doc.Workflow, 3)
	assert.Equal(t, "eu-west-1", doc.Workflow[0].Parameters["region"])
	assert.Equal(t, "$.parameters.zone", doc.Workflow[2].Parameters["zone"])
}

func TestResolve_YAML(t *testing.T) {
	h := &harness{}
	require.NoError(t, h.run(t, "resolve", "--yaml", writeFile(t, "flow.yaml", sampleYAML)))

	out := h.stdout.String()
	assert.Contains(t, out, "region: eu-west-1")
	assert.NotContains(t, out, "region: $.parameters.region")
}

func TestExample_CompilesCleanly(t *testing.T) {
	for _, tt := range []struct {
		name string
		args []string
		file string
	}{
		{name: "json", args: []string{"example"}, file: "example.json"},
		{name: "yaml", args: []string{"example", "--yaml"}, file: "example.yaml"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			h := &harness{}
			require.NoError(t, h.run(t, tt.args...))
			assert.Contains(t, h.stdout.String(), "Firmware rollout")

			path := writeFile(t, tt.file, h.stdout.String())

			h = &harness{}
			require.NoError(t, h.run(t, "validate", path))

			h = &harness{}
			require.NoError(t, h.run(t, "compile", "--strict", "--format", "mermaid", path))
			assert.Contains(t, h.stdout.String(), "flowchart TD")
		})
	}
}

func TestRemote_CompileValidateResolve(t *testing.T) {
	srv := newAPIServer(t)
	path := writeFile(t, "flow.yaml", sampleYAML)

	h := &harness{apiURL: srv.URL}
	require.NoError(t, h.run(t, "compile", "--format", "mermaid", path))
	assert.Contains(t, h.stdout.String(), "flowchart TD")
	assert.Contains(t, h.stderr.String(), "Warning: step End")

	h = &harness{apiURL: srv.URL}
	assert.ErrorIs(t, h.run(t, "validate", path), ErrIssuesFound)

	h = &harness{apiURL: srv.URL}
	require.NoError(t, h.run(t, "resolve", path))
	assert.Contains(t, h.stdout.String(), "eu-west-1")
}

func TestRemote_APIError(t *testing.T) {
	srv := newAPIServer(t)
	path := writeFile(t, "flow.yaml", sampleYAML)

	h := &harness{apiURL: srv.URL}
	err := h.run(t, "compile", "--strict", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_DOCUMENT")
	assert.Contains(t, err.Error(), "undefined_parameter")
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Validate([]byte(cleanJSON), engine.SyntaxJSON)
	require.Error(t, err)
	assert.Equal(t, "API error: HTTP 502", err.Error())
}

func TestOutput_Table(t *testing.T) {
	var stdout bytes.Buffer
	out := NewOutputTo(false, &stdout, io.Discard)

	out.Table([]string{"STEP", "KIND"}, [][]string{{"A", "x"}})

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "----"))
}

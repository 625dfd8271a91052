package engine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shaiso/Flowgraph/internal/domain"
)

// mustParse разбирает документ или останавливает тест.
func mustParse(t *testing.T, data string) *domain.Document {
	t.Helper()

	doc, err := Parse([]byte(data), SyntaxAuto)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestParse_JSON(t *testing.T) {
	doc := mustParse(t, `{
		"$schema": "https://example.com/workflow.json",
		"name": "deploy",
		"parameters": {"region": "eu", "replicas": 3, "debug": true, "empty": null},
		"workflow": [
			{"type": "Seq", "name": "Start", "parameters": {"zone": "$.parameters.region", "a": "1"}}
		]
	}`)

	if doc.Name != "deploy" {
		t.Errorf("expected name deploy, got %q", doc.Name)
	}
	if doc.Schema != "https://example.com/workflow.json" {
		t.Errorf("unexpected $schema %q", doc.Schema)
	}

	// Порядок ключей и приведение скаляров к строке
	want := domain.Params{
		{Key: "region", Value: domain.Literal("eu")},
		{Key: "replicas", Value: domain.Literal("3")},
		{Key: "debug", Value: domain.Literal("true")},
		{Key: "empty", Value: domain.Literal("")},
	}
	if diff := cmp.Diff(want, doc.Parameters); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}

	step := doc.Workflow[0]
	if got := step.Parameters.Keys(); !cmp.Equal(got, []string{"zone", "a"}) {
		t.Errorf("expected step keys [zone a], got %v", got)
	}
	zone, _ := step.Parameters.Get("zone")
	if !zone.IsReference() || zone.Name() != "region" {
		t.Errorf("expected reference to region, got %v", zone)
	}
}

func TestParse_YAMLMatchesJSON(t *testing.T) {
	fromJSON := mustParse(t, `{
		"parameters": {"x": "5", "n": 2},
		"workflow": [
			{"type": "Seq", "name": "Start", "parameters": {"k": "$.parameters.x"}},
			{"type": "ParallelExecution", "name": "PB", "steps": [
				{"type": "X", "name": "c1", "parameters": {"obj": {"a": 1}}},
				{"type": "X", "name": "c2"}
			]}
		]
	}`)

	fromYAML := mustParse(t, `
parameters:
  x: "5"
  n: 2
workflow:
  - type: Seq
    name: Start
    parameters:
      k: $.parameters.x
  - type: ParallelExecution
    name: PB
    steps:
      - type: X
        name: c1
        parameters:
          obj: {a: 1}
      - type: X
        name: c2
`)

	if diff := cmp.Diff(fromJSON, fromYAML); diff != "" {
		t.Errorf("YAML document differs from JSON (-json +yaml):\n%s", diff)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field string
	}{
		{name: "empty input", data: "   "},
		{name: "invalid JSON", data: `{"workflow": [`},
		{name: "invalid YAML", data: "workflow: [unclosed"},
		{name: "missing workflow", data: `{"parameters": {}}`, field: "workflow"},
		{name: "step without type", data: `{"workflow": [{"name": "A"}]}`, field: "type"},
		{name: "step without name", data: `{"workflow": [{"type": "T"}]}`, field: "name"},
		{name: "block without steps", data: `{"workflow": [{"type": "ParallelExecution", "name": "PB"}]}`, field: "steps"},
		{name: "nested child without name", data: `{"workflow": [{"type": "ParallelExecution", "name": "PB", "steps": [{"type": "X"}]}]}`, field: "name"},
		{name: "parameters not an object", data: `{"workflow": [{"type": "T", "name": "A", "parameters": [1]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), SyntaxAuto)
			if !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("expected ErrMalformedDocument, got %v", err)
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if tt.field != "" && vErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, vErr.Field)
			}
		})
	}
}

func TestValidateStep_Path(t *testing.T) {
	doc := &domain.Document{
		Workflow: []domain.Step{
			{Type: "ParallelExecution", Name: "PB", Steps: []domain.Step{
				{Type: "X", Name: "c1"},
				{Type: "", Name: "c2"},
			}},
		},
	}

	err := Validate(doc)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.StepPath != "PB -> c2" {
		t.Errorf("expected step path %q, got %q", "PB -> c2", vErr.StepPath)
	}
}

func TestValidate_EmptyBlockAccepted(t *testing.T) {
	doc := mustParse(t, `{"workflow": [{"type": "ParallelExecution", "name": "PB", "steps": []}]}`)

	if doc.Workflow[0].Steps == nil {
		t.Error("expected empty non-nil steps")
	}
}

func TestDecodeRaw(t *testing.T) {
	raw := map[string]any{
		"name": "generic",
		"parameters": map[string]any{
			"b": "2",
			"a": 1,
		},
		"workflow": []any{
			map[string]any{
				"type":       "Seq",
				"name":       "Start",
				"parameters": map[string]any{"k": "$.parameters.a", "flag": false},
			},
			map[string]any{
				"type": "ParallelExecution",
				"name": "PB",
				"steps": []any{
					map[string]any{"type": "X", "name": "c1"},
				},
			},
		},
	}

	doc, err := DecodeRaw(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Порядок map не определён: ключи сортируются
	wantParams := domain.Params{
		{Key: "a", Value: domain.Literal("1")},
		{Key: "b", Value: domain.Literal("2")},
	}
	if diff := cmp.Diff(wantParams, doc.Parameters); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}

	wantStep := domain.Params{
		{Key: "flag", Value: domain.Literal("false")},
		{Key: "k", Value: domain.Reference("a")},
	}
	if diff := cmp.Diff(wantStep, doc.Workflow[0].Parameters); diff != "" {
		t.Errorf("step parameters mismatch (-want +got):\n%s", diff)
	}

	if len(doc.Workflow[1].Steps) != 1 {
		t.Errorf("expected 1 child, got %d", len(doc.Workflow[1].Steps))
	}
}

func TestDecodeRaw_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{name: "nil", raw: nil},
		{name: "no workflow", raw: map[string]any{"parameters": map[string]any{}}},
		{name: "workflow not a list", raw: map[string]any{"workflow": map[string]any{"a": 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRaw(tt.raw)
			if !errors.Is(err, ErrMalformedDocument) {
				t.Errorf("expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}

func TestSyntaxFrom(t *testing.T) {
	tests := []struct {
		input string
		fn    func(string) Syntax
		want  Syntax
	}{
		{input: "flow.json", fn: SyntaxFromFilename, want: SyntaxJSON},
		{input: "flow.YAML", fn: SyntaxFromFilename, want: SyntaxYAML},
		{input: "flow.yml", fn: SyntaxFromFilename, want: SyntaxYAML},
		{input: "flow.txt", fn: SyntaxFromFilename, want: SyntaxAuto},
		{input: "application/json; charset=utf-8", fn: SyntaxFromContentType, want: SyntaxJSON},
		{input: "application/x-yaml", fn: SyntaxFromContentType, want: SyntaxYAML},
		{input: "text/plain", fn: SyntaxFromContentType, want: SyntaxAuto},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := tt.fn(tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

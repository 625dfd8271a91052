package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/shaiso/Flowgraph/internal/domain"
)

func TestValidateReferences(t *testing.T) {
	doc := mustParse(t, `{
		"parameters": {"x": "5"},
		"workflow": [
			{"type": "T", "name": "A", "parameters": {"b": "$.parameters.nope", "a": "$.parameters.x", "c": "$.parameters.other"}},
			{"type": "ParallelExecution", "name": "PB", "steps": [
				{"type": "X", "name": "c1", "parameters": {"v": "$.parameters.gone"}},
				{"type": "X", "name": "c2", "parameters": {"v": "$.parameters.x"}}
			]}
		]
	}`)

	want := []domain.ValidationIssue{
		{StepPath: "A", Parameter: "b", Reference: "$.parameters.nope", Kind: domain.IssueUndefinedParameterReference},
		{StepPath: "A", Parameter: "c", Reference: "$.parameters.other", Kind: domain.IssueUndefinedParameterReference},
		{StepPath: "PB -> c1", Parameter: "v", Reference: "$.parameters.gone", Kind: domain.IssueUndefinedParameterReference},
	}

	got := ValidateReferences(doc)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateReferences_MalformedReference(t *testing.T) {
	doc := mustParse(t, `{
		"parameters": {"a": "1"},
		"workflow": [
			{"type": "T", "name": "A", "parameters": {"k": "$.parameters.a.b", "e": "$.parameters.", "ok": "$.parameters.a"}}
		]
	}`)

	want := []domain.ValidationIssue{
		{StepPath: "A", Parameter: "k", Reference: "$.parameters.a.b", Kind: domain.IssueMalformedParameterReference},
		{StepPath: "A", Parameter: "e", Reference: "$.parameters.", Kind: domain.IssueMalformedParameterReference},
	}

	got := ValidateReferences(doc)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}

	// Значение не подставляется: после Resolve строка остаётся как есть
	resolved := Resolve(doc)
	if v := resolved.Workflow[0].Parameters[0].Value; v.Raw() != "$.parameters.a.b" {
		t.Errorf("expected literal to be kept, got %q", v.Raw())
	}
}

func TestValidateReferences_EmptyWhenResolvable(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "no references", data: `{"workflow": [{"type": "T", "name": "A", "parameters": {"k": "v"}}]}`},
		{name: "all defined", data: `{"parameters": {"x": ""}, "workflow": [{"type": "T", "name": "A", "parameters": {"k": "$.parameters.x"}}]}`},
		{name: "embedded prefix is a literal", data: `{"workflow": [{"type": "T", "name": "A", "parameters": {"k": "see $.parameters.x"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.data)
			issues := ValidateReferences(doc)
			if issues == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(issues) != 0 {
				t.Errorf("expected no issues, got %v", issues)
			}

			// Пустой результат означает, что после Resolve ссылок не осталось
			if left := ValidateReferences(Resolve(doc)); len(left) != 0 {
				t.Errorf("expected no references after resolve, got %v", left)
			}
		})
	}
}

package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExampleDocument(t *testing.T) {
	doc := mustParse(t, ExampleDocument)

	result, err := Compile(doc, Options{Strict: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantNodes := []string{"Initialize experiment environment", "Firmware update", "Health check", "Collect results"}
	if diff := cmp.Diff(wantNodes, nodeIDs(result.Graph)); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}

	wantEdges := []Edge{
		{From: "Initialize experiment environment", To: "Firmware update"},
		{From: "Initialize experiment environment", To: "Health check"},
		{From: "Firmware update", To: "Collect results"},
		{From: "Health check", To: "Collect results"},
	}
	if diff := cmp.Diff(wantEdges, result.Graph.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}

	if got := result.Graph.Node("Firmware update").Children; len(got) != 2 {
		t.Errorf("expected 2 children in Firmware update, got %d", len(got))
	}
}

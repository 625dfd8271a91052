package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParams_JSONKeepsOrder(t *testing.T) {
	var p Params
	input := `{"zeta": "1", "alpha": 2, "mid": {"a": [1, 2]}, "none": null, "ref": "$.parameters.x"}`
	if err := json.Unmarshal([]byte(input), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"zeta", "alpha", "mid", "none", "ref"}
	if got := p.Keys(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected keys %v, got %v", want, got)
	}

	mid, _ := p.Get("mid")
	if mid.Raw() != `{"a":[1,2]}` {
		t.Errorf("expected compact JSON, got %q", mid.Raw())
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantJSON := `{"zeta":"1","alpha":"2","mid":"{\"a\":[1,2]}","none":"","ref":"$.parameters.x"}`
	if string(out) != wantJSON {
		t.Errorf("expected %s, got %s", wantJSON, out)
	}
}

func TestParams_JSONNull(t *testing.T) {
	p := Params{{Key: "a", Value: Literal("1")}}
	if err := json.Unmarshal([]byte(`null`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil params, got %v", p)
	}
}

func TestParams_JSONDuplicateKey(t *testing.T) {
	var p Params
	if err := json.Unmarshal([]byte(`{"a": "1", "b": "2", "a": "3"}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 2 {
		t.Fatalf("expected 2 params, got %d", len(p))
	}
	if v, _ := p.Get("a"); v.Raw() != "3" || p[0].Key != "a" {
		t.Errorf("expected a=3 at first position, got %v", p)
	}
}

func TestParams_YAML(t *testing.T) {
	var p Params
	input := "zeta: 1\nalpha: $.parameters.x\nlist: [a, b]\nnone: ~\n"
	if err := yaml.Unmarshal([]byte(input), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strings.Join(p.Keys(), ","); got != "zeta,alpha,list,none" {
		t.Errorf("unexpected key order %s", got)
	}
	if v, _ := p.Get("alpha"); !v.IsReference() {
		t.Errorf("expected reference, got %v", v)
	}
	if v, _ := p.Get("list"); v.Raw() != `["a","b"]` {
		t.Errorf("expected JSON list, got %q", v.Raw())
	}
	if v, _ := p.Get("none"); v.Raw() != "" {
		t.Errorf("expected empty value for null, got %q", v.Raw())
	}

	out, err := yaml.Marshal(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(out), "zeta: \"1\"\nalpha: $.parameters.x\n") {
		t.Errorf("unexpected YAML:\n%s", out)
	}
}

func TestParams_YAMLNotMapping(t *testing.T) {
	var p Params
	if err := yaml.Unmarshal([]byte("[1, 2]"), &p); err == nil {
		t.Error("expected error for sequence")
	}
}

func TestParams_SetAndClone(t *testing.T) {
	p := NewParams(map[string]string{"b": "2", "a": "1"})
	if got := strings.Join(p.Keys(), ","); got != "a,b" {
		t.Errorf("expected sorted keys, got %s", got)
	}

	clone := p.Clone()
	clone.Set("a", Literal("changed"))
	clone.Set("c", Literal("3"))

	if v, _ := p.Get("a"); v.Raw() != "1" {
		t.Error("clone shares storage with original")
	}
	if got := strings.Join(clone.Keys(), ","); got != "a,b,c" {
		t.Errorf("unexpected clone keys %s", got)
	}

	lookup := clone.Lookup()
	if lookup["a"] != "changed" || lookup["c"] != "3" {
		t.Errorf("unexpected lookup %v", lookup)
	}
}

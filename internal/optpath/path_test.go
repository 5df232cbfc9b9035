package optpath

import (
	"errors"
	"testing"
)

func TestParsePathMixedNotation(t *testing.T) {
	nodes, err := ParsePath(`defaults.thresholds.steps[1]["dash-color"]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Node{
		Field{Name: "defaults"},
		Field{Name: "thresholds"},
		Field{Name: "steps"},
		ArrayIndex{Index: 1},
		QuotedKey{Name: "dash-color"},
	}
	if len(nodes) != len(want) {
		t.Fatalf("expected %d nodes, got %d (%#v)", len(want), len(nodes), nodes)
	}
	for i := range want {
		if nodes[i] != want[i] {
			t.Fatalf("node %d: expected %#v, got %#v", i, want[i], nodes[i])
		}
	}
}

func TestParsePathRejectsBadBrackets(t *testing.T) {
	for _, p := range []string{"a[", "a[x]", "a[-1]"} {
		if _, err := ParsePath(p); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("path %q: expected ErrInvalidPath, got %v", p, err)
		}
	}
}

func TestParseSegmentsKeepsDotsInKeys(t *testing.T) {
	nodes, err := ParseSegments([]string{"custom", "a.b", "steps[2][0]"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Node{
		Field{Name: "custom"},
		Field{Name: "a.b"},
		Field{Name: "steps"},
		ArrayIndex{Index: 2},
		ArrayIndex{Index: 0},
	}
	if len(nodes) != len(want) {
		t.Fatalf("expected %d nodes, got %#v", len(want), nodes)
	}
	for i := range want {
		if nodes[i] != want[i] {
			t.Fatalf("node %d: expected %#v, got %#v", i, want[i], nodes[i])
		}
	}
}

func TestReconstructPathRoundTrip(t *testing.T) {
	in := `a.b[0]["c-d"].e`
	nodes, err := ParsePath(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ReconstructPath(nodes); got != in {
		t.Fatalf("expected %q, got %q", in, got)
	}
}

func TestGet(t *testing.T) {
	root := map[string]interface{}{
		"a": []interface{}{map[string]interface{}{"b": "x"}},
	}
	v, err := Get(root, "a[0].b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "x" {
		t.Fatalf("expected x, got %v", v)
	}
	if _, err := Get(root, "a[3]"); err == nil {
		t.Fatalf("expected out of range error")
	}
	if _, err := Get(root, "missing.key"); err == nil {
		t.Fatalf("expected missing key error")
	}
}

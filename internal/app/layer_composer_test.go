package app

import "testing"

func TestComposeLayersReplacesRows(t *testing.T) {
	base := "line0\nline1\nline2\nline3"

	result := composeLayers(base,
		layerOverlay{Row: 1, Block: "A"},
		layerOverlay{Row: 2, Block: "B\nC\nD"},
	)

	want := "line0\nA\nB\nC"
	if result != want {
		t.Fatalf("unexpected composed output:\nwant:\n%s\n\ngot:\n%s", want, result)
	}
}

func TestComposeLayersIgnoresNegativeRows(t *testing.T) {
	base := "a\nb"
	if got := composeLayers(base, layerOverlay{Row: -1, Block: "x"}); got != base {
		t.Fatalf("expected base unchanged, got %q", got)
	}
}

package app

import (
	"strings"
	"testing"
)

func TestBuildStyleConfigDisablesDocumentOuterMargins(t *testing.T) {
	for _, dark := range []bool{true, false} {
		cfg := buildStyleConfig(dark)
		if cfg.Document.StylePrimitive.BlockPrefix != "" || cfg.Document.StylePrimitive.BlockSuffix != "" {
			t.Fatalf("expected empty document block prefix/suffix (dark=%v)", dark)
		}
		if cfg.Document.Margin == nil || *cfg.Document.Margin != 0 {
			t.Fatalf("expected document margin 0 (dark=%v)", dark)
		}
	}
}

func TestEscapeMarkdownNeutralizesBlockSyntax(t *testing.T) {
	got := escapeMarkdown("# release\n- item\n1. first\nplain `code`")
	want := "\\# release\n\\- item\n\\1. first\nplain \\`code\\`"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderMarkdownFallsBackForEmptyInput(t *testing.T) {
	if got := renderMarkdown("\n\n", 40); got != "" {
		t.Fatalf("expected empty render, got %q", got)
	}
	out := renderMarkdown("## main", 40)
	if !strings.Contains(out, "main") {
		t.Fatalf("expected heading text in render, got %q", out)
	}
}

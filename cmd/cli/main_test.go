package main

import (
	"strings"
	"testing"
)

func TestTokenPreview(t *testing.T) {
	long := strings.Repeat("a", 64)
	if got := tokenPreview(long); got != long[:20] {
		t.Fatalf("expected 20-char preview, got %q", got)
	}
	// Truncated or corrupt token files must not panic the preview.
	for _, short := range []string{"", "x", strings.Repeat("b", 20)} {
		if got := tokenPreview(short); got != short {
			t.Fatalf("expected short token %q unchanged, got %q", short, got)
		}
	}
}

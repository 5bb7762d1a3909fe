package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// TestTruncate verifies listing titles are shortened on rune boundaries so
// multi-byte titles never render as broken characters.
func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten..", 13, "exactly ten.."},
		{"a much longer title than fits", 10, "a much ..."},
		{"日本語のタイトルですとても長い", 10, "日本語のタイトル..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
		}
		if tt.in != got && !strings.HasSuffix(got, "...") {
			t.Errorf("truncated %q missing ellipsis: %q", tt.in, got)
		}
	}
}

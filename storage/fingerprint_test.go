package storage

import "testing"

// TestFingerprintStability verifies known title fingerprints stay fixed:
// existing artifacts on disk depend on them.
func TestFingerprintStability(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"hello", "5d41402abc4b2a76b9719d911017c592"},
		{"", "d41d8cd98f00b204e9800998ecf8427e"},
		{"The Daily Show - Full Episode", "9268ee586effffaf8c55f0903c5856ea"},
	}
	for _, tt := range tests {
		if got := Fingerprint(tt.title); got != tt.want {
			t.Errorf("Fingerprint(%q) = %s, want %s", tt.title, got, tt.want)
		}
	}
}

// TestFingerprintNoNormalization verifies that near-identical titles yield
// distinct fingerprints: identity is byte-for-byte.
func TestFingerprintNoNormalization(t *testing.T) {
	base := Fingerprint("Episode One")
	variants := []string{
		"episode one",
		"Episode One ",
		" Episode One",
		"Episode  One",
	}
	for _, v := range variants {
		if Fingerprint(v) == base {
			t.Errorf("Fingerprint(%q) collides with Fingerprint(%q)", v, "Episode One")
		}
	}
}

// TestFingerprintFormat verifies the output is 32 lowercase hex characters.
func TestFingerprintFormat(t *testing.T) {
	fp := Fingerprint("some title with unicode: 日本語")
	if len(fp) != 32 {
		t.Fatalf("len(fp) = %d, want 32", len(fp))
	}
	for _, r := range fp {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			t.Errorf("fingerprint contains non-hex character %q", r)
		}
	}
}

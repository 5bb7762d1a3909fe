package youtube

import "testing"

// TestClassifyExtractorError tables the yt-dlp stderr patterns against the
// causes they must map to.
func TestClassifyExtractorError(t *testing.T) {
	tests := []struct {
		stderr string
		want   Cause
	}{
		{"ERROR: [youtube] abc: Video unavailable", CauseDeleted},
		{"ERROR: [youtube] abc: Private video. Sign in if you've been granted access", CausePrivate},
		{"ERROR: [youtube] abc: This video is not available", CauseRegionLocked},
		{"ERROR: unable to download webpage: timed out", CauseUnknown},
		{"", CauseUnknown},
	}
	for _, tt := range tests {
		if got := classifyExtractorError(tt.stderr); got != tt.want {
			t.Errorf("classifyExtractorError(%q) = %s, want %s", tt.stderr, got, tt.want)
		}
	}
}

// TestIsUnavailable verifies the sentinel check behind probe results.
func TestIsUnavailable(t *testing.T) {
	if !isUnavailable(ErrVideoUnavailable) {
		t.Error("isUnavailable(ErrVideoUnavailable) = false")
	}
	if !isUnavailable(ErrSourceNotFound) {
		t.Error("isUnavailable(ErrSourceNotFound) = false")
	}
	if isUnavailable(ErrRateLimited) {
		t.Error("isUnavailable(ErrRateLimited) = true")
	}
}

// TestDiagnosisString verifies the log-facing rendering.
func TestDiagnosisString(t *testing.T) {
	ok := Diagnosis{VideoID: "abc", Available: true}
	if got := ok.String(); got != "video abc: available" {
		t.Errorf("String() = %q", got)
	}

	bad := Diagnosis{VideoID: "abc", Cause: CausePrivate, Detail: "sign in required"}
	want := "video abc: unavailable (private): sign in required"
	if got := bad.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

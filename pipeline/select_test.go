package pipeline

import (
	"context"
	"testing"
)

// TestSelectLatestAvailableFirstHit verifies the first live candidate wins
// and later ones are never probed.
func TestSelectLatestAvailableFirstHit(t *testing.T) {
	prober := &fakeProber{}
	cs := candidates("v5", "v4", "v3")

	sel, err := SelectLatestAvailable(context.Background(), prober, cs, 3)
	if err != nil {
		t.Fatalf("SelectLatestAvailable() error = %v", err)
	}
	if sel.Selected == nil || sel.Selected.ID != "v5" {
		t.Fatalf("Selected = %+v, want v5", sel.Selected)
	}
	if prober.probeCalls != 1 {
		t.Errorf("probeCalls = %d, want 1", prober.probeCalls)
	}
}

// TestSelectLatestAvailableBound verifies the look-back never probes beyond
// its bound.
func TestSelectLatestAvailableBound(t *testing.T) {
	prober := &fakeProber{unavailable: map[string]bool{
		"v5": true, "v4": true, "v3": true, "v2": true, "v1": true,
	}}
	cs := candidates("v5", "v4", "v3", "v2", "v1")

	sel, err := SelectLatestAvailable(context.Background(), prober, cs, 2)
	if err != nil {
		t.Fatalf("SelectLatestAvailable() error = %v", err)
	}
	if sel.Selected != nil {
		t.Errorf("Selected = %+v, want nil", sel.Selected)
	}
	if prober.probeCalls != 2 {
		t.Errorf("probeCalls = %d, want bound of 2", prober.probeCalls)
	}
	if len(sel.Unavailable) != 2 {
		t.Errorf("Unavailable = %v, want 2 entries", sel.Unavailable)
	}
}

// TestSelectLatestAvailableDiagnosesLast verifies exhaustion triggers one
// deep diagnosis of the last probed candidate.
func TestSelectLatestAvailableDiagnosesLast(t *testing.T) {
	prober := &fakeProber{unavailable: map[string]bool{"v2": true, "v1": true}}
	cs := candidates("v2", "v1")

	sel, err := SelectLatestAvailable(context.Background(), prober, cs, 5)
	if err != nil {
		t.Fatalf("SelectLatestAvailable() error = %v", err)
	}
	if sel.Diagnosis == nil {
		t.Fatal("Diagnosis = nil, want diagnosis of last candidate")
	}
	if sel.Diagnosis.VideoID != "v1" {
		t.Errorf("Diagnosis.VideoID = %s, want v1", sel.Diagnosis.VideoID)
	}
	if prober.diagnoseCalls != 1 {
		t.Errorf("diagnoseCalls = %d, want 1", prober.diagnoseCalls)
	}
}

// TestSelectLatestAvailableEmpty verifies empty input selects nothing and
// probes nothing.
func TestSelectLatestAvailableEmpty(t *testing.T) {
	prober := &fakeProber{}
	sel, err := SelectLatestAvailable(context.Background(), prober, nil, 5)
	if err != nil {
		t.Fatalf("SelectLatestAvailable() error = %v", err)
	}
	if sel.Selected != nil || sel.Probed != 0 {
		t.Errorf("selection = %+v, want empty", sel)
	}
	if prober.diagnoseCalls != 0 {
		t.Errorf("diagnoseCalls = %d, want 0 for empty input", prober.diagnoseCalls)
	}
}

// TestSelectLatestAvailableCancellation verifies a cancelled context stops
// the walk.
func TestSelectLatestAvailableCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SelectLatestAvailable(ctx, &fakeProber{}, candidates("v1"), 1)
	if err == nil {
		t.Fatal("SelectLatestAvailable() error = nil, want context error")
	}
}

package feed

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"tubefeed/config"
	"tubefeed/storage"
	"tubefeed/youtube"
)

func testSubscription() config.Subscription {
	return config.Subscription{
		Name:        "news",
		Title:       "Daily News",
		Description: "News as audio",
		Enabled:     true,
		Category:    "News & Politics",
		Author:      "Newsroom",
	}
}

func writeArtifact(t *testing.T, store *storage.ArtifactStore, sub, title string, withThumb bool) string {
	t.Helper()
	fp := storage.Fingerprint(title)
	if _, err := store.EnsureSubscriptionDir(sub); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.AudioPath(sub, fp), []byte("audio-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	if withThumb {
		if err := os.WriteFile(store.ThumbnailPath(sub, fp), []byte("img"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return fp
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

// TestRebuildProducesValidRSS verifies the document parses as RSS 2.0 and
// carries the channel metadata.
func TestRebuildProducesValidRSS(t *testing.T) {
	store := storage.NewArtifactStore(t.TempDir(), "webp")
	synth := NewSynthesizer(store, "https://feeds.example.com", "de")
	synth.Now = fixedClock
	sub := testSubscription()

	cs := []youtube.Candidate{
		{ID: "vid1", Title: "Morning Briefing", Uploader: "Example", DurationSeconds: 3725},
		{ID: "vid2", Title: "Evening Recap", DurationSeconds: 125},
	}
	writeArtifact(t, store, "news", "Morning Briefing", true)
	writeArtifact(t, store, "news", "Evening Recap", false)

	if err := synth.Rebuild(sub, cs); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	data, err := os.ReadFile(synth.FeedPath("news"))
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := gofeed.NewParser().ParseString(string(data))
	if err != nil {
		t.Fatalf("generated feed does not parse: %v", err)
	}

	if parsed.Title != "Daily News" {
		t.Errorf("Title = %q", parsed.Title)
	}
	if parsed.Description != "News as audio" {
		t.Errorf("Description = %q", parsed.Description)
	}
	if parsed.Language != "de" {
		t.Errorf("Language = %q, want de", parsed.Language)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(parsed.Items))
	}

	item := parsed.Items[0]
	if item.Title != "Morning Briefing" {
		t.Errorf("Items[0].Title = %q", item.Title)
	}
	if item.GUID != "https://www.youtube.com/watch?v=vid1" {
		t.Errorf("GUID = %q, want watch URL", item.GUID)
	}
	if len(item.Enclosures) != 1 {
		t.Fatalf("Enclosures = %v, want one", item.Enclosures)
	}
	enc := item.Enclosures[0]
	wantURL := "https://feeds.example.com/news/" + storage.Fingerprint("Morning Briefing") + ".mp3"
	if enc.URL != wantURL {
		t.Errorf("enclosure URL = %q, want %q", enc.URL, wantURL)
	}
	if enc.Type != "audio/mpeg" {
		t.Errorf("enclosure type = %q", enc.Type)
	}
	if enc.Length != "11" {
		t.Errorf("enclosure length = %q, want 11 (file size)", enc.Length)
	}
	if item.ITunesExt == nil || item.ITunesExt.Duration != "1:02:05" {
		t.Errorf("itunes duration = %+v, want 1:02:05", item.ITunesExt)
	}
	// One channel-level category plus one per item.
	if got := strings.Count(string(data), `<itunes:category text="News &amp; Politics">`); got != 3 {
		t.Errorf("itunes:category count = %d, want 3 (channel + both items)", got)
	}

	// The newest episode has a thumbnail, so it becomes the channel art.
	wantImage := "https://feeds.example.com/news/" + storage.Fingerprint("Morning Briefing") + ".webp"
	if parsed.ITunesExt == nil || parsed.ITunesExt.Image != wantImage {
		t.Errorf("channel image = %+v, want %s", parsed.ITunesExt, wantImage)
	}
}

// TestRebuildHonorsFeedSettings verifies the explicit and type knobs reach
// the channel element instead of the built-in defaults.
func TestRebuildHonorsFeedSettings(t *testing.T) {
	store := storage.NewArtifactStore(t.TempDir(), "webp")
	synth := NewSynthesizer(store, "http://localhost", "en")
	synth.Explicit = "yes"
	synth.Type = "serial"
	synth.Now = fixedClock
	sub := testSubscription()

	writeArtifact(t, store, "news", "Part One", false)
	cs := []youtube.Candidate{{ID: "v1", Title: "Part One"}}
	if err := synth.Rebuild(sub, cs); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	doc := readFile(t, synth.FeedPath("news"))
	if !strings.Contains(doc, "<itunes:explicit>yes</itunes:explicit>") {
		t.Error("configured explicit value missing from channel")
	}
	if !strings.Contains(doc, "<itunes:type>serial</itunes:type>") {
		t.Error("configured feed type missing from channel")
	}
}

// TestRebuildDropsUnmatchedArtifacts verifies artifacts with no candidate
// stay on disk but leave the document.
func TestRebuildDropsUnmatchedArtifacts(t *testing.T) {
	store := storage.NewArtifactStore(t.TempDir(), "webp")
	synth := NewSynthesizer(store, "http://localhost", "en")
	synth.Now = fixedClock
	sub := testSubscription()

	matched := writeArtifact(t, store, "news", "Known Episode", false)
	orphan := writeArtifact(t, store, "news", "Forgotten Episode", false)

	cs := []youtube.Candidate{{ID: "vid1", Title: "Known Episode"}}
	if err := synth.Rebuild(sub, cs); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	data, err := os.ReadFile(synth.FeedPath("news"))
	if err != nil {
		t.Fatal(err)
	}
	doc := string(data)
	if !strings.Contains(doc, matched) {
		t.Error("matched artifact missing from feed")
	}
	if strings.Contains(doc, orphan) {
		t.Error("orphan artifact present in feed")
	}
	if !store.HasAudio("news", orphan) {
		t.Error("orphan artifact removed from disk")
	}
}

// TestRebuildReplacesWholeDocument verifies a rebuild never appends to a
// previous document.
func TestRebuildReplacesWholeDocument(t *testing.T) {
	store := storage.NewArtifactStore(t.TempDir(), "webp")
	synth := NewSynthesizer(store, "http://localhost", "en")
	synth.Now = fixedClock
	sub := testSubscription()

	writeArtifact(t, store, "news", "First", false)
	first := []youtube.Candidate{{ID: "v1", Title: "First"}}
	if err := synth.Rebuild(sub, first); err != nil {
		t.Fatal(err)
	}

	// Second build with a different candidate set.
	writeArtifact(t, store, "news", "Second", false)
	second := []youtube.Candidate{{ID: "v2", Title: "Second"}}
	if err := synth.Rebuild(sub, second); err != nil {
		t.Fatal(err)
	}

	parsed, err := gofeed.NewParser().ParseString(readFile(t, synth.FeedPath("news")))
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1 (document replaced)", len(parsed.Items))
	}
	if parsed.Items[0].Title != "Second" {
		t.Errorf("Items[0].Title = %q, want Second", parsed.Items[0].Title)
	}
}

// TestRebuildEmptyDirectory verifies an empty subscription still gets a
// well-formed document with zero items.
func TestRebuildEmptyDirectory(t *testing.T) {
	store := storage.NewArtifactStore(t.TempDir(), "webp")
	synth := NewSynthesizer(store, "http://localhost", "en")
	synth.Now = fixedClock
	sub := testSubscription()

	if err := synth.Rebuild(sub, nil); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	parsed, err := gofeed.NewParser().ParseString(readFile(t, synth.FeedPath("news")))
	if err != nil {
		t.Fatalf("empty feed does not parse: %v", err)
	}
	if len(parsed.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(parsed.Items))
	}
}

// TestFormatDuration tables the duration rendering.
func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, ""},
		{59, "0:59"},
		{61, "1:01"},
		{600, "10:00"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

package pipeline

import (
	"context"
	"fmt"
	"io"

	"tubefeed/config"
	"tubefeed/storage"
	"tubefeed/youtube"
)

// Analysis is the report of a dry run over one source: what a real pass
// would do, without writing anything.
type Analysis struct {
	Source       string
	TotalFound   int
	Checked      int
	Available    int
	Unavailable  int
	Selected     *youtube.Candidate
	FileExists   bool
	WillDownload bool
}

// Analyze performs the listing and probing of a real pass but stops short of
// every write: no download, no feed rebuild, no directory creation.
func (p *Pipeline) Analyze(ctx context.Context, sub config.Subscription, src config.Source, store *storage.ArtifactStore) (*Analysis, error) {
	a := &Analysis{Source: src.Name}

	resolver, err := p.resolver(src.Kind)
	if err != nil {
		return nil, err
	}

	candidates, err := resolver.ListCandidates(ctx, src.URL, src.MaxVideos)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", src.Name, err)
	}
	if len(candidates) == 0 {
		// Same rescue a real pass performs for empty flat listings.
		latest, err := resolver.LatestCandidate(ctx, src.URL)
		if err != nil {
			return nil, fmt.Errorf("latest %s: %w", src.Name, err)
		}
		if latest != nil {
			candidates = []youtube.Candidate{*latest}
		}
	}
	a.TotalFound = len(candidates)

	selection, err := SelectLatestAvailable(ctx, p.Prober, candidates, src.MaxVideos)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", src.Name, err)
	}
	a.Checked = selection.Probed
	a.Unavailable = len(selection.Unavailable)
	a.Available = a.Checked - a.Unavailable
	a.Selected = selection.Selected

	if a.Selected != nil {
		a.FileExists = store.HasAudio(sub.Name, storage.Fingerprint(a.Selected.Title))
		a.WillDownload = !a.FileExists
	}
	return a, nil
}

// Report writes a human-readable summary of the analysis.
func (a *Analysis) Report(w io.Writer) {
	fmt.Fprintf(w, "source %s: %d found, %d checked, %d available, %d unavailable\n",
		a.Source, a.TotalFound, a.Checked, a.Available, a.Unavailable)
	switch {
	case a.Selected == nil:
		fmt.Fprintf(w, "  nothing to download\n")
	case a.FileExists:
		fmt.Fprintf(w, "  would skip %q (already downloaded)\n", a.Selected.Title)
	default:
		fmt.Fprintf(w, "  would download %q (%s)\n", a.Selected.Title, a.Selected.ID)
	}
}

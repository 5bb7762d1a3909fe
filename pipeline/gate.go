package pipeline

import (
	"context"
	"fmt"
	"log"

	"tubefeed/storage"
	"tubefeed/youtube"
)

// AcquisitionGate decides whether a selected candidate actually gets
// downloaded. The gate is what makes repeated cycles idempotent: an artifact
// whose audio file already exists is never fetched again, whatever its
// metadata looks like now.
type AcquisitionGate struct {
	Store    *storage.ArtifactStore
	Prober   Prober
	Acquirer Acquirer

	// DownloadsEnabled is the kill switch. When false the gate reports the
	// artifact as present-but-not-downloaded and touches nothing.
	DownloadsEnabled bool
}

// EnsureDownloaded makes sure the candidate's artifacts exist under the
// subscription directory. Returns the artifact; Downloaded is false only
// when the kill switch skipped the fetch and no file backs the artifact.
func (g *AcquisitionGate) EnsureDownloaded(ctx context.Context, subscription string, c youtube.Candidate) (*storage.Artifact, error) {
	fp := storage.Fingerprint(c.Title)

	if g.Store.HasAudio(subscription, fp) {
		log.Printf("tubefeed: %q already downloaded, skipping", c.Title)
		return g.Store.Lookup(subscription, fp)
	}

	if !g.DownloadsEnabled {
		log.Printf("tubefeed: downloads disabled, skipping %q", c.Title)
		return &storage.Artifact{Fingerprint: fp}, nil
	}

	// The candidate may have been probed a while ago; recheck right before
	// spending bandwidth on it.
	ok, err := g.Prober.IsAvailable(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("preflight %s: %w", c.ID, youtube.ErrVideoUnavailable)
	}

	if _, err := g.Store.EnsureSubscriptionDir(subscription); err != nil {
		return nil, err
	}

	if err := g.Acquirer.Acquire(ctx, c.ID, g.Store.Stem(subscription, fp)); err != nil {
		return nil, err
	}
	log.Printf("tubefeed: downloaded %q as %s", c.Title, fp)

	artifact, err := g.Store.Lookup(subscription, fp)
	if err != nil {
		return nil, fmt.Errorf("artifact missing after download of %s: %w", c.ID, err)
	}
	return artifact, nil
}

// Package pipeline composes one fetch-select-download-publish pass over a
// single source: list candidates, pick the newest fetchable one, acquire its
// audio if it is not already on disk, and rebuild the subscription feed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tubefeed/config"
	"tubefeed/feed"
	"tubefeed/youtube"
)

// Resolver lists the candidates of one source URL, newest first.
type Resolver interface {
	ListCandidates(ctx context.Context, url string, limit int) ([]youtube.Candidate, error)
	LatestCandidate(ctx context.Context, url string) (*youtube.Candidate, error)
}

// Prober checks whether a single video is fetchable.
type Prober interface {
	IsAvailable(ctx context.Context, videoID string) (bool, error)
	Diagnose(ctx context.Context, videoID string) (*youtube.Diagnosis, error)
}

// Acquirer downloads one video's artifacts to a path stem.
type Acquirer interface {
	Acquire(ctx context.Context, videoID, stem string) error
}

// Result summarizes one pass over a source.
type Result struct {
	Source      string
	Found       int
	Selected    *youtube.Candidate
	Downloaded  bool
	FeedRebuilt bool
}

// Pipeline wires the collaborators of a pass. Resolvers are looked up per
// source kind so channels and playlists can list differently.
type Pipeline struct {
	Resolvers   map[config.SourceKind]Resolver
	Prober      Prober
	Gate        *AcquisitionGate
	Synthesizer *feed.Synthesizer
}

// resolver returns the resolver for a source kind, falling back to the
// channel resolver for unknown kinds.
func (p *Pipeline) resolver(kind config.SourceKind) (Resolver, error) {
	if r, ok := p.Resolvers[kind]; ok {
		return r, nil
	}
	if r, ok := p.Resolvers[config.SourceKindChannel]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("no resolver for source kind %q", kind)
}

// ProcessSource runs one full pass for a source inside a subscription.
// The feed is only rebuilt when a candidate was selected and its artifact
// exists afterwards; an exhausted selection leaves the feed untouched.
func (p *Pipeline) ProcessSource(ctx context.Context, sub config.Subscription, src config.Source) (*Result, error) {
	result := &Result{Source: src.Name}

	resolver, err := p.resolver(src.Kind)
	if err != nil {
		return result, err
	}

	candidates, err := resolver.ListCandidates(ctx, src.URL, src.MaxVideos)
	if err != nil {
		return result, fmt.Errorf("list %s: %w", src.Name, err)
	}
	if len(candidates) == 0 {
		// Some listings come back empty even for live sources; a single
		// newest-entry lookup is the cheaper second opinion.
		latest, err := resolver.LatestCandidate(ctx, src.URL)
		if err != nil {
			return result, fmt.Errorf("latest %s: %w", src.Name, err)
		}
		if latest == nil {
			log.Printf("tubefeed: source %s has no videos", src.Name)
			return result, nil
		}
		candidates = []youtube.Candidate{*latest}
	}
	result.Found = len(candidates)

	selection, err := SelectLatestAvailable(ctx, p.Prober, candidates, src.MaxVideos)
	if err != nil {
		return result, fmt.Errorf("select %s: %w", src.Name, err)
	}
	if selection.Selected == nil {
		if selection.Diagnosis != nil {
			log.Printf("tubefeed: source %s exhausted %d candidates, %s",
				src.Name, selection.Probed, selection.Diagnosis)
		} else {
			log.Printf("tubefeed: source %s exhausted %d candidates", src.Name, selection.Probed)
		}
		return result, nil
	}
	result.Selected = selection.Selected

	artifact, err := p.Gate.EnsureDownloaded(ctx, sub.Name, *selection.Selected)
	if err != nil {
		if errors.Is(err, youtube.ErrVideoUnavailable) {
			log.Printf("tubefeed: video %s became unavailable before download", selection.Selected.ID)
			return result, nil
		}
		return result, fmt.Errorf("acquire %s: %w", selection.Selected.ID, err)
	}
	result.Downloaded = artifact.Downloaded

	if err := p.Synthesizer.Rebuild(sub, candidates); err != nil {
		return result, err
	}
	result.FeedRebuilt = true
	return result, nil
}

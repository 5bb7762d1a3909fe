package youtube

import (
	"context"
	"strings"
)

// ChannelDirectory lists a channel's uploads via the channel's videos tab.
type ChannelDirectory struct {
	ytdlp *Ytdlp
}

// NewChannelDirectory creates a directory over a channel URL.
func NewChannelDirectory(y *Ytdlp) *ChannelDirectory {
	return &ChannelDirectory{ytdlp: y}
}

// normalizeChannelURL points the listing at the videos tab so the flat
// listing returns uploads instead of the channel home page mix of shelves.
func normalizeChannelURL(url string) string {
	url = strings.TrimRight(url, "/")
	for _, tab := range []string{"/videos", "/streams", "/shorts", "/featured"} {
		if strings.HasSuffix(url, tab) {
			return strings.TrimSuffix(url, tab) + "/videos"
		}
	}
	return url + "/videos"
}

func (d *ChannelDirectory) ListCandidates(ctx context.Context, url string, limit int) ([]Candidate, error) {
	playlist, err := d.ytdlp.listFlat(ctx, normalizeChannelURL(url), limit)
	if err != nil {
		return nil, err
	}
	candidates := d.ytdlp.hydrate(ctx, playlist.Entries)
	SortNewestFirst(candidates)
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (d *ChannelDirectory) LatestCandidate(ctx context.Context, url string) (*Candidate, error) {
	candidates, err := d.ListCandidates(ctx, url, 1)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[0], nil
}

// PlaylistDirectory lists a playlist. Playlist order is the curator's order,
// so entries keep their playlist position and the newest-first sort falls
// back to that position when upload dates are missing.
type PlaylistDirectory struct {
	ytdlp *Ytdlp
}

// NewPlaylistDirectory creates a directory over a playlist URL.
func NewPlaylistDirectory(y *Ytdlp) *PlaylistDirectory {
	return &PlaylistDirectory{ytdlp: y}
}

func (d *PlaylistDirectory) ListCandidates(ctx context.Context, url string, limit int) ([]Candidate, error) {
	playlist, err := d.ytdlp.listFlat(ctx, url, limit)
	if err != nil {
		return nil, err
	}
	candidates := d.ytdlp.hydrate(ctx, playlist.Entries)
	for i := range candidates {
		candidates[i].PlaylistPosition = i + 1
	}
	SortNewestFirst(candidates)
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (d *PlaylistDirectory) LatestCandidate(ctx context.Context, url string) (*Candidate, error) {
	candidates, err := d.ListCandidates(ctx, url, 1)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[0], nil
}

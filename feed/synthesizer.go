package feed

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"tubefeed/config"
	"tubefeed/storage"
	"tubefeed/youtube"
)

// FeedFileName is the name of the feed document inside each subscription
// directory.
const FeedFileName = "feed.xml"

// Synthesizer writes the RSS document for a subscription. It never appends:
// each rebuild starts from the directory scan, so items for artifacts that
// disappeared are dropped and a half-finished previous run leaves no trace.
type Synthesizer struct {
	Store *storage.ArtifactStore

	// BaseURL is the public URL the data directory is served under.
	// Enclosure URLs are absolute, rooted here.
	BaseURL string

	// Language is the RFC 5646 language tag of the channel.
	// Defaults to "en".
	Language string

	// Explicit is the itunes:explicit value of the channel. Defaults to "no".
	Explicit string

	// Type is the itunes:type of the channel. Defaults to "episodic".
	Type string

	// Now is the clock used for publication dates. Defaults to time.Now.
	Now func() time.Time
}

// NewSynthesizer creates a feed synthesizer.
func NewSynthesizer(store *storage.ArtifactStore, baseURL, language string) *Synthesizer {
	return &Synthesizer{Store: store, BaseURL: baseURL, Language: language}
}

func (s *Synthesizer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Synthesizer) language() string {
	if s.Language != "" {
		return s.Language
	}
	return "en"
}

func (s *Synthesizer) explicit() string {
	if s.Explicit != "" {
		return s.Explicit
	}
	return "no"
}

func (s *Synthesizer) feedType() string {
	if s.Type != "" {
		return s.Type
	}
	return "episodic"
}

// FeedPath returns where the subscription's feed document lives.
func (s *Synthesizer) FeedPath(subscription string) string {
	return filepath.Join(s.Store.SubscriptionDir(subscription), FeedFileName)
}

// artifactURL builds the absolute enclosure URL for a file in the
// subscription directory.
func (s *Synthesizer) artifactURL(subscription, file string) string {
	base := strings.TrimRight(s.BaseURL, "/")
	return base + "/" + subscription + "/" + file
}

// Rebuild regenerates the subscription's feed from the artifacts on disk.
// candidates supplies the metadata; artifacts whose fingerprint matches no
// candidate title are left out of the document but kept on disk.
func (s *Synthesizer) Rebuild(sub config.Subscription, candidates []youtube.Candidate) error {
	fingerprints, err := s.Store.ListFingerprints(sub.Name)
	if err != nil {
		return fmt.Errorf("scan artifacts for %s: %w", sub.Name, err)
	}

	byFingerprint := make(map[string]youtube.Candidate, len(candidates))
	for _, c := range candidates {
		byFingerprint[storage.Fingerprint(c.Title)] = c
	}

	now := s.now()
	items := make([]itemXML, 0, len(fingerprints))
	var channelImage *imageXML

	// Walk candidates in listing order so the feed stays newest first
	// regardless of directory iteration order.
	for _, c := range candidates {
		fp := storage.Fingerprint(c.Title)
		if !contains(fingerprints, fp) {
			continue
		}
		item := s.item(sub, c, fp, now)
		if channelImage == nil && item.ItunesImage != nil {
			// The newest episode's thumbnail doubles as the channel art.
			channelImage = item.ItunesImage
		}
		items = append(items, item)
	}

	doc := rssXML{
		Version:  rssVersion,
		ItunesNS: itunesNamespace,
		Channel: channelXML{
			Title:          channelTitle(sub),
			Link:           strings.TrimRight(s.BaseURL, "/"),
			Description:    channelDescription(sub),
			Language:       s.language(),
			LastBuildDate:  formatPubDate(now),
			ItunesAuthor:   sub.Author,
			ItunesSummary:  channelDescription(sub),
			ItunesExplicit: s.explicit(),
			ItunesType:     s.feedType(),
			ItunesCategory: categoryXML{Text: sub.Category},
			ItunesImage:    channelImage,
			Items:          items,
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("render feed for %s: %w", sub.Name, err)
	}
	data := append([]byte(xml.Header), out...)
	data = append(data, '\n')

	if err := storage.WriteFileAtomic(s.FeedPath(sub.Name), data); err != nil {
		return fmt.Errorf("write feed for %s: %w", sub.Name, err)
	}
	return nil
}

func (s *Synthesizer) item(sub config.Subscription, c youtube.Candidate, fingerprint string, now time.Time) itemXML {
	author := c.Uploader
	if author == "" {
		author = sub.Author
	}

	item := itemXML{
		Title:       c.Title,
		Description: fmt.Sprintf("Episode from %s: %s", channelTitle(sub), c.Title),
		GUID:        guidXML{IsPermaLink: true, Value: c.WatchURL()},
		PubDate:     formatPubDate(now),
		Enclosure: enclosureXML{
			URL:    s.artifactURL(sub.Name, fingerprint+storage.AudioExt),
			Length: s.Store.AudioSize(sub.Name, fingerprint),
			Type:   "audio/mpeg",
		},
		ItunesAuthor:   author,
		ItunesSummary:  c.Title,
		ItunesDuration: formatDuration(c.DurationSeconds),
	}
	if sub.Category != "" {
		item.ItunesCategory = &categoryXML{Text: sub.Category}
	}

	if artifact, err := s.Store.Lookup(sub.Name, fingerprint); err == nil && artifact.ThumbnailPath != "" {
		item.ItunesImage = &imageXML{
			Href: s.artifactURL(sub.Name, fingerprint+"."+s.Store.ThumbnailFormat),
		}
	}
	return item
}

func channelTitle(sub config.Subscription) string {
	if sub.Title != "" {
		return sub.Title
	}
	return sub.Name
}

func channelDescription(sub config.Subscription) string {
	if sub.Description != "" {
		return sub.Description
	}
	return fmt.Sprintf("Audio episodes from %s", channelTitle(sub))
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

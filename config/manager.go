package config

import (
	"fmt"
	"log"
	"os"

	"tubefeed/storage"
)

// defaultConfigYAML is written when no config file exists yet, so a fresh
// checkout produces something runnable to edit.
const defaultConfigYAML = `# tubefeed configuration
global:
  check_interval: 10        # minutes between polling cycles
  max_videos: 5             # how many newest candidates to probe per source
  base_url: http://localhost
  data_dir: data
  downloads_enabled: true

subscriptions:
  news:
    enabled: true
    title: News
    description: Audio feed built from tracked news channels
    category: News & Politics
    sources:
      example_channel:
        enabled: false
        type: channel
        url: https://www.youtube.com/@example
      example_playlist:
        enabled: false
        type: playlist
        url: https://www.youtube.com/playlist?list=EXAMPLE

download:
  format: bestaudio/best
  audio_codec: mp3
  audio_quality: "192"
  thumbnail_format: webp
  write_subtitles: false
  write_automatic_subtitles: false

feed:
  default_language: en
  explicit: "no"
  type: episodic

diagnostics:
  enabled: true
`

// Manager owns the configuration file: it loads it at startup and persists
// the whole document atomically after every management operation.
type Manager struct {
	path string
	cfg  *Config
}

// Load reads and validates the configuration at path. A missing file is
// bootstrapped with a commented default configuration first.
func Load(path string) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		log.Printf("tubefeed: %s not found, writing default configuration", path)
		if err := storage.WriteFileAtomic(path, []byte(defaultConfigYAML)); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		data = []byte(defaultConfigYAML)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return &Manager{path: path, cfg: cfg}, nil
}

// Config returns the loaded configuration.
func (m *Manager) Config() *Config { return m.cfg }

// Path returns the configuration file path.
func (m *Manager) Path() string { return m.path }

// Save persists the whole configuration atomically.
func (m *Manager) Save() error {
	data, err := m.cfg.marshal()
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := storage.WriteFileAtomic(m.path, data); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// SubscriptionByName returns a pointer to the named subscription.
func (m *Manager) SubscriptionByName(name string) (*Subscription, error) {
	for i := range m.cfg.Subscriptions {
		if m.cfg.Subscriptions[i].Name == name {
			return &m.cfg.Subscriptions[i], nil
		}
	}
	return nil, fmt.Errorf("subscription %q not found", name)
}

// SourceByName searches all subscriptions for the named source.
func (m *Manager) SourceByName(name string) (*Source, *Subscription, error) {
	for i := range m.cfg.Subscriptions {
		sub := &m.cfg.Subscriptions[i]
		for j := range sub.Sources {
			if sub.Sources[j].Name == name {
				return &sub.Sources[j], sub, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("source %q not found", name)
}

// AddSubscription adds a new subscription and persists the configuration.
func (m *Manager) AddSubscription(sub Subscription) error {
	for _, existing := range m.cfg.Subscriptions {
		if existing.Name == sub.Name {
			return fmt.Errorf("subscription %q already exists", sub.Name)
		}
	}
	if sub.Category == "" {
		sub.Category = DefaultCategory
	}
	m.cfg.Subscriptions = append(m.cfg.Subscriptions, sub)
	if err := m.cfg.Validate(); err != nil {
		return err
	}
	return m.Save()
}

// RemoveSubscription deletes the named subscription and all of its sources.
func (m *Manager) RemoveSubscription(name string) error {
	kept := m.cfg.Subscriptions[:0]
	for _, sub := range m.cfg.Subscriptions {
		if sub.Name != name {
			kept = append(kept, sub)
		}
	}
	m.cfg.Subscriptions = kept
	return m.Save()
}

// SetSubscriptionEnabled toggles a subscription and persists.
func (m *Manager) SetSubscriptionEnabled(name string, enabled bool) error {
	sub, err := m.SubscriptionByName(name)
	if err != nil {
		return err
	}
	sub.Enabled = enabled
	return m.Save()
}

// AddSource adds a source to the named subscription. When subscription is
// empty, the source goes to the first enabled subscription, creating a
// "default" subscription if there is none.
func (m *Manager) AddSource(subscription string, src Source) error {
	if src.CheckInterval == 0 {
		src.CheckInterval = m.cfg.Global.Int("check_interval", DefaultCheckInterval)
	}
	if src.MaxVideos == 0 {
		src.MaxVideos = m.cfg.Global.Int("max_videos", DefaultMaxVideos)
	}

	var target *Subscription
	if subscription != "" {
		sub, err := m.SubscriptionByName(subscription)
		if err != nil {
			return err
		}
		target = sub
	} else if enabled := m.cfg.EnabledSubscriptions(); len(enabled) > 0 {
		target, _ = m.SubscriptionByName(enabled[0].Name)
	} else {
		m.cfg.Subscriptions = append(m.cfg.Subscriptions, Subscription{
			Name:        "default",
			Title:       "Default Subscription",
			Description: "Default subscription",
			Enabled:     true,
			Category:    DefaultCategory,
		})
		target = &m.cfg.Subscriptions[len(m.cfg.Subscriptions)-1]
	}

	if src.Category == "" {
		src.Category = target.Category
	}
	if src.Author == "" {
		src.Author = target.Author
	}
	target.Sources = append(target.Sources, src)

	if err := m.cfg.Validate(); err != nil {
		// Roll back so the in-memory graph stays consistent with disk.
		target.Sources = target.Sources[:len(target.Sources)-1]
		return err
	}
	return m.Save()
}

// RemoveSource deletes the named source from every subscription.
func (m *Manager) RemoveSource(name string) error {
	for i := range m.cfg.Subscriptions {
		sub := &m.cfg.Subscriptions[i]
		kept := sub.Sources[:0]
		for _, src := range sub.Sources {
			if src.Name != name {
				kept = append(kept, src)
			}
		}
		sub.Sources = kept
	}
	return m.Save()
}

// SetSourceEnabled toggles a source and persists.
func (m *Manager) SetSourceEnabled(name string, enabled bool) error {
	src, _, err := m.SourceByName(name)
	if err != nil {
		return err
	}
	src.Enabled = enabled
	return m.Save()
}

// SourceStatus is a flattened listing row for the management CLI.
type SourceStatus struct {
	Name         string
	Subscription string
	URL          string
	Kind         SourceKind
	// Enabled is the effective flag: a source counts as enabled only when
	// its subscription is enabled too.
	Enabled       bool
	CheckInterval int
	MaxVideos     int
}

// ListSources returns every source with its effective status.
func (m *Manager) ListSources() []SourceStatus {
	var out []SourceStatus
	for _, sub := range m.cfg.Subscriptions {
		for _, src := range sub.Sources {
			out = append(out, SourceStatus{
				Name:          src.Name,
				Subscription:  sub.Name,
				URL:           src.URL,
				Kind:          src.Kind,
				Enabled:       src.Enabled && sub.Enabled,
				CheckInterval: src.CheckInterval,
				MaxVideos:     src.MaxVideos,
			})
		}
	}
	return out
}

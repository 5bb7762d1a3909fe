// Package config loads, validates and persists the subscription/source graph
// and the global, download and feed settings from config.yaml.
package config

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks configuration validation failures. A broken
// configuration cannot safely drive any polling cycle, so this is the only
// error class that is fatal at startup.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// SourceKind distinguishes the two resolution paths for a source.
type SourceKind string

const (
	// SourceKindChannel tracks a channel's uploads.
	SourceKindChannel SourceKind = "channel"
	// SourceKindPlaylist tracks a playlist.
	SourceKindPlaylist SourceKind = "playlist"
)

// Source is one channel or playlist tracked for new content. A source is
// owned by exactly one subscription and is immutable during a polling cycle;
// it changes only through the management operations on Manager.
type Source struct {
	Name    string
	URL     string
	Kind    SourceKind
	Enabled bool

	// CheckInterval is the poll interval in minutes.
	CheckInterval int
	// MaxVideos is the look-back count: how many of the newest candidates
	// are probed for availability before giving up.
	MaxVideos int

	// Display overrides for feed generation. Empty means "derive a default".
	CustomTitle       string
	CustomDescription string
	Category          string
	Author            string
}

// Subscription is a named group of sources sharing one output feed.
type Subscription struct {
	Name        string
	Title       string
	Description string
	Enabled     bool
	Category    string
	Author      string
	Sources     []Source
}

// EnabledSources returns the sources of this subscription that are enabled.
func (s Subscription) EnabledSources() []Source {
	var out []Source
	for _, src := range s.Sources {
		if src.Enabled {
			out = append(out, src)
		}
	}
	return out
}

// Settings is a get-with-default view over one free-form settings section.
type Settings map[string]any

// String returns the string value for key, or def when absent or not a string.
func (s Settings) String(key, def string) string {
	if v, ok := s[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return def
}

// Int returns the integer value for key, or def when absent or not an integer.
func (s Settings) Int(key string, def int) int {
	if v, ok := s[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}

// Bool returns the boolean value for key, or def when absent or not a boolean.
func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Config is the full parsed configuration.
type Config struct {
	Global        Settings
	Download      Settings
	Feed          Settings
	Logging       Settings
	Diagnostics   Settings
	Subscriptions []Subscription
}

// Defaults applied when the corresponding key or field is absent.
const (
	DefaultCheckInterval = 10 // minutes
	DefaultMaxVideos     = 5
	DefaultCategory      = "News & Politics"
	DefaultBaseURL       = "http://localhost"
	DefaultDataDir       = "data"
)

// --- YAML schema (maps keyed by name, as in config.yaml) ---

type rawConfig struct {
	Global        Settings                   `yaml:"global"`
	Subscriptions map[string]rawSubscription `yaml:"subscriptions"`
	Download      Settings                   `yaml:"download"`
	Feed          Settings                   `yaml:"feed"`
	Logging       Settings                   `yaml:"logging,omitempty"`
	Diagnostics   Settings                   `yaml:"diagnostics,omitempty"`
}

type rawSubscription struct {
	Enabled     *bool                `yaml:"enabled"`
	Title       string               `yaml:"title"`
	Description string               `yaml:"description"`
	Category    string               `yaml:"category"`
	Author      string               `yaml:"author,omitempty"`
	Sources     map[string]rawSource `yaml:"sources"`
}

type rawSource struct {
	Enabled           *bool  `yaml:"enabled"`
	Type              string `yaml:"type"`
	URL               string `yaml:"url"`
	CustomTitle       string `yaml:"custom_title,omitempty"`
	CustomDescription string `yaml:"custom_description,omitempty"`
	CheckInterval     int    `yaml:"check_interval"`
	MaxVideos         int    `yaml:"max_videos"`
	Category          string `yaml:"category"`
	Author            string `yaml:"author,omitempty"`
}

// Parse decodes YAML configuration data, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", ErrInvalidConfig, err)
	}

	cfg := &Config{
		Global:      orEmpty(raw.Global),
		Download:    orEmpty(raw.Download),
		Feed:        orEmpty(raw.Feed),
		Logging:     orEmpty(raw.Logging),
		Diagnostics: orEmpty(raw.Diagnostics),
	}

	globalInterval := cfg.Global.Int("check_interval", DefaultCheckInterval)
	globalMaxVideos := cfg.Global.Int("max_videos", DefaultMaxVideos)

	// Map order is not significant; sort by name so repeated loads iterate
	// deterministically.
	subNames := make([]string, 0, len(raw.Subscriptions))
	for name := range raw.Subscriptions {
		subNames = append(subNames, name)
	}
	sort.Strings(subNames)

	for _, subName := range subNames {
		rawSub := raw.Subscriptions[subName]
		sub := Subscription{
			Name:        subName,
			Title:       rawSub.Title,
			Description: rawSub.Description,
			Enabled:     boolOr(rawSub.Enabled, true),
			Category:    stringOr(rawSub.Category, DefaultCategory),
			Author:      rawSub.Author,
		}

		srcNames := make([]string, 0, len(rawSub.Sources))
		for name := range rawSub.Sources {
			srcNames = append(srcNames, name)
		}
		sort.Strings(srcNames)

		for _, srcName := range srcNames {
			rawSrc := rawSub.Sources[srcName]
			src := Source{
				Name:              srcName,
				URL:               rawSrc.URL,
				Kind:              SourceKind(stringOr(rawSrc.Type, string(SourceKindChannel))),
				Enabled:           boolOr(rawSrc.Enabled, true),
				CheckInterval:     intOr(rawSrc.CheckInterval, globalInterval),
				MaxVideos:         intOr(rawSrc.MaxVideos, globalMaxVideos),
				CustomTitle:       rawSrc.CustomTitle,
				CustomDescription: rawSrc.CustomDescription,
				Category:          stringOr(rawSrc.Category, sub.Category),
				Author:            stringOr(rawSrc.Author, sub.Author),
			}
			sub.Sources = append(sub.Sources, src)
		}

		cfg.Subscriptions = append(cfg.Subscriptions, sub)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the subscription/source graph for problems that would make
// polling unsafe.
func (c *Config) Validate() error {
	seenSources := make(map[string]string) // source name -> owning subscription
	for _, sub := range c.Subscriptions {
		if sub.Name == "" {
			return fmt.Errorf("%w: subscription with empty name", ErrInvalidConfig)
		}
		for _, src := range sub.Sources {
			if src.URL == "" {
				return fmt.Errorf("%w: source %q has no url", ErrInvalidConfig, src.Name)
			}
			if src.Kind != SourceKindChannel && src.Kind != SourceKindPlaylist {
				return fmt.Errorf("%w: source %q has unknown type %q", ErrInvalidConfig, src.Name, src.Kind)
			}
			if src.MaxVideos < 1 {
				return fmt.Errorf("%w: source %q max_videos must be >= 1", ErrInvalidConfig, src.Name)
			}
			if src.CheckInterval < 1 {
				return fmt.Errorf("%w: source %q check_interval must be >= 1", ErrInvalidConfig, src.Name)
			}
			if owner, dup := seenSources[src.Name]; dup {
				return fmt.Errorf("%w: source %q defined in both %q and %q", ErrInvalidConfig, src.Name, owner, sub.Name)
			}
			seenSources[src.Name] = sub.Name
		}
	}
	return nil
}

// marshal converts the config back into the YAML map schema.
func (c *Config) marshal() ([]byte, error) {
	raw := rawConfig{
		Global:        c.Global,
		Download:      c.Download,
		Feed:          c.Feed,
		Logging:       c.Logging,
		Diagnostics:   c.Diagnostics,
		Subscriptions: make(map[string]rawSubscription, len(c.Subscriptions)),
	}

	for _, sub := range c.Subscriptions {
		enabled := sub.Enabled
		rawSub := rawSubscription{
			Enabled:     &enabled,
			Title:       sub.Title,
			Description: sub.Description,
			Category:    sub.Category,
			Author:      sub.Author,
			Sources:     make(map[string]rawSource, len(sub.Sources)),
		}
		for _, src := range sub.Sources {
			srcEnabled := src.Enabled
			rawSub.Sources[src.Name] = rawSource{
				Enabled:           &srcEnabled,
				Type:              string(src.Kind),
				URL:               src.URL,
				CustomTitle:       src.CustomTitle,
				CustomDescription: src.CustomDescription,
				CheckInterval:     src.CheckInterval,
				MaxVideos:         src.MaxVideos,
				Category:          src.Category,
				Author:            src.Author,
			}
		}
		raw.Subscriptions[sub.Name] = rawSub
	}

	return yaml.Marshal(raw)
}

// BaseURL returns the base URL used to build absolute enclosure links.
func (c *Config) BaseURL() string {
	return c.Global.String("base_url", DefaultBaseURL)
}

// DataDir returns the output root that holds per-subscription directories.
func (c *Config) DataDir() string {
	return c.Global.String("data_dir", DefaultDataDir)
}

// DownloadsEnabled reports whether the acquisition step may touch the
// network; false is the kill switch used for integration testing.
func (c *Config) DownloadsEnabled() bool {
	return c.Global.Bool("downloads_enabled", true)
}

// EnabledSubscriptions returns the subscriptions that are enabled.
func (c *Config) EnabledSubscriptions() []Subscription {
	var out []Subscription
	for _, sub := range c.Subscriptions {
		if sub.Enabled {
			out = append(out, sub)
		}
	}
	return out
}

func orEmpty(s Settings) Settings {
	if s == nil {
		return Settings{}
	}
	return s
}

func stringOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func intOr(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func boolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

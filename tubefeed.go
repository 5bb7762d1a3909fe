package tubefeed

import (
	"log"
	"time"

	"tubefeed/config"
	"tubefeed/feed"
	"tubefeed/pipeline"
	"tubefeed/runner"
	"tubefeed/storage"
	"tubefeed/youtube"
)

// NewRunner builds a fully wired runner from a loaded configuration. The
// download, feed and diagnostics sections select the backends: an API key
// switches availability probing to the Data API with yt-dlp as fallback.
func NewRunner(mgr *config.Manager, opts runner.Options) *runner.Runner {
	cfg := mgr.Config()

	ytdlp := youtube.NewYtdlp()
	if path := cfg.Download.String("ytdlp_path", ""); path != "" {
		ytdlp.Path = path
	}
	if timeout := cfg.Download.Int("timeout_seconds", 0); timeout > 0 {
		ytdlp.Timeout = time.Duration(timeout) * time.Second
	}

	downloader := youtube.NewAudioDownloader(ytdlp)
	downloader.Format = cfg.Download.String("format", downloader.Format)
	downloader.AudioCodec = cfg.Download.String("audio_codec", downloader.AudioCodec)
	downloader.AudioQuality = cfg.Download.String("audio_quality", downloader.AudioQuality)
	downloader.ThumbnailFormat = cfg.Download.String("thumbnail_format", downloader.ThumbnailFormat)
	downloader.WriteSubtitles = cfg.Download.Bool("write_subtitles", false)
	downloader.WriteAutoSubtitles = cfg.Download.Bool("write_automatic_subtitles", false)

	store := storage.NewArtifactStore(cfg.DataDir(), downloader.ThumbnailFormat)

	var prober pipeline.Prober
	ytdlpProber := youtube.NewProber(ytdlp,
		float64(cfg.Diagnostics.Int("probes_per_second", 2)))
	prober = ytdlpProber
	if key := cfg.Global.String("youtube_api_key", ""); key != "" {
		apiProber, err := youtube.NewAPIProber(key)
		if err != nil {
			log.Printf("tubefeed: API prober unavailable, using yt-dlp: %v", err)
		} else {
			apiProber.SetFallback(ytdlpProber)
			prober = apiProber
		}
	}

	synth := feed.NewSynthesizer(store, cfg.BaseURL(), cfg.Feed.String("default_language", "en"))
	synth.Explicit = cfg.Feed.String("explicit", "no")
	synth.Type = cfg.Feed.String("type", "episodic")

	p := &pipeline.Pipeline{
		Resolvers: map[config.SourceKind]pipeline.Resolver{
			config.SourceKindChannel:  youtube.NewChannelDirectory(ytdlp),
			config.SourceKindPlaylist: youtube.NewPlaylistDirectory(ytdlp),
		},
		Prober: prober,
		Gate: &pipeline.AcquisitionGate{
			Store:            store,
			Prober:           prober,
			Acquirer:         downloader,
			DownloadsEnabled: cfg.DownloadsEnabled(),
		},
		Synthesizer: synth,
	}

	return &runner.Runner{
		Manager:  mgr,
		Pipeline: p,
		Store:    store,
		Options:  opts,
	}
}

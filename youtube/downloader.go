package youtube

import (
	"context"
	"fmt"
)

// AudioDownloader fetches a video's audio track and thumbnail through
// yt-dlp's extract-audio pipeline. The output is addressed by a path stem;
// yt-dlp appends the extension for each artifact.
type AudioDownloader struct {
	ytdlp *Ytdlp

	// Format is the yt-dlp format selector. Defaults to "bestaudio/best".
	Format string

	// AudioCodec is the target audio codec. Defaults to "mp3".
	AudioCodec string

	// AudioQuality is the target quality for the audio conversion.
	// Defaults to "192K".
	AudioQuality string

	// ThumbnailFormat is the image format thumbnails are converted to.
	// Defaults to "webp".
	ThumbnailFormat string

	// WriteSubtitles also fetches uploaded subtitles when set.
	WriteSubtitles bool

	// WriteAutoSubtitles also fetches auto-generated subtitles when set.
	WriteAutoSubtitles bool
}

// NewAudioDownloader creates a downloader with default settings.
func NewAudioDownloader(y *Ytdlp) *AudioDownloader {
	return &AudioDownloader{
		ytdlp:           y,
		Format:          "bestaudio/best",
		AudioCodec:      "mp3",
		AudioQuality:    "192K",
		ThumbnailFormat: "webp",
	}
}

func (d *AudioDownloader) format() string {
	if d.Format != "" {
		return d.Format
	}
	return "bestaudio/best"
}

func (d *AudioDownloader) codec() string {
	if d.AudioCodec != "" {
		return d.AudioCodec
	}
	return "mp3"
}

func (d *AudioDownloader) quality() string {
	if d.AudioQuality != "" {
		return d.AudioQuality
	}
	return "192K"
}

func (d *AudioDownloader) thumbnailFormat() string {
	if d.ThumbnailFormat != "" {
		return d.ThumbnailFormat
	}
	return "webp"
}

// Acquire downloads the audio and thumbnail of one video to the given path
// stem. On success the artifacts land at stem+".mp3" (or the configured
// codec's extension) and stem+"."+thumbnail format.
func (d *AudioDownloader) Acquire(ctx context.Context, videoID, stem string) error {
	args := []string{
		"-f", d.format(),
		"-x",
		"--audio-format", d.codec(),
		"--audio-quality", d.quality(),
		"--write-thumbnail",
		"--convert-thumbnails", d.thumbnailFormat(),
		"--no-warnings",
		"-o", stem + ".%(ext)s",
	}
	if d.WriteSubtitles {
		args = append(args, "--write-subs")
	}
	if d.WriteAutoSubtitles {
		args = append(args, "--write-auto-subs")
	}
	args = append(args, watchURL(videoID))

	if _, err := d.ytdlp.run(ctx, args...); err != nil {
		return fmt.Errorf("download %s: %w", videoID, err)
	}
	return nil
}

// Package tubefeed turns YouTube channels and playlists into podcast feeds.
//
// It polls configured sources, downloads the newest available video of each
// as an audio episode, and publishes an RSS document that podcast clients
// can subscribe to. Episodes are deduplicated by a fingerprint of the video
// title, so repeated cycles never download or publish the same episode
// twice.
//
// Overview
//
// A cycle runs four stages per source:
//
//   - list: fetch the newest candidates of the channel or playlist
//   - select: probe candidates newest first until one is fetchable
//   - acquire: download audio and thumbnail unless already on disk
//   - publish: rebuild the subscription's RSS feed from the files on disk
//
// Quick Start
//
// Run a single cycle over every enabled subscription:
//
//	mgr, err := config.Load("sources_config.yml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	r := tubefeed.NewRunner(mgr, runner.Options{})
//	if err := r.AcquireLock(5 * time.Second); err != nil {
//		log.Fatal(err)
//	}
//	defer r.ReleaseLock()
//	result, err := r.RunOnce(ctx)
//
// Or poll forever until the context is cancelled:
//
//	err := r.Run(ctx)
//
// Configuration
//
// Configuration lives in a YAML file. A missing file is bootstrapped with a
// commented default. Subscriptions group sources; each source is a channel
// or playlist URL with its own look-back and interval settings, inheriting
// unset values from the global section.
//
// Error Handling
//
// All operations return errors that support the standard patterns:
//
//	if errors.Is(err, tubefeed.ErrVideoUnavailable) {
//		fmt.Println("video is gone")
//	}
//
//	var resErr *tubefeed.ResolverError
//	if errors.As(err, &resErr) {
//		fmt.Printf("listing %s failed: %v\n", resErr.Source, resErr.Err)
//	}
//
// Dependencies
//
// tubefeed requires yt-dlp to be installed and on PATH, or its location set
// in the download section of the configuration.
//
// Install yt-dlp: https://github.com/yt-dlp/yt-dlp
package tubefeed

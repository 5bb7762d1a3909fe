// Package runner drives cycles over the configured subscriptions: one-shot,
// filtered, dry-run, or an endless polling loop with graceful shutdown.
package runner

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"tubefeed/config"
	"tubefeed/pipeline"
	"tubefeed/storage"
)

// DefaultInterval is the pause between polling cycles.
const DefaultInterval = 600 * time.Second

// Options narrows or alters what a cycle does.
type Options struct {
	// Subscription restricts the cycle to one subscription by name.
	Subscription string

	// Source restricts the cycle to one source by name.
	Source string

	// DryRun reports what would happen without writing anything.
	DryRun bool

	// Interval overrides DefaultInterval for the polling loop.
	Interval time.Duration

	// Out receives dry-run reports. Defaults to os.Stdout.
	Out io.Writer
}

func (o Options) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

func (o Options) interval() time.Duration {
	if o.Interval > 0 {
		return o.Interval
	}
	return DefaultInterval
}

// CycleResult summarizes one cycle over all subscriptions.
type CycleResult struct {
	ID         string
	Sources    int
	Succeeded  int
	Failed     int
	Downloaded int
}

// Runner executes cycles. One Runner owns its data directory for its whole
// lifetime: the directory lock is taken once, not per cycle.
type Runner struct {
	Manager  *config.Manager
	Pipeline *pipeline.Pipeline
	Store    *storage.ArtifactStore
	Options  Options

	lock *storage.DirLock
}

// AcquireLock takes the exclusive lock on the data directory. A second
// runner on the same tree fails fast instead of corrupting feeds.
func (r *Runner) AcquireLock(timeout time.Duration) error {
	if err := os.MkdirAll(r.Store.Root, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	lock := storage.NewDirLock(r.Store.Root)
	if err := lock.Lock(timeout); err != nil {
		return fmt.Errorf("lock data dir %s: %w", r.Store.Root, err)
	}
	r.lock = lock
	return nil
}

// ReleaseLock releases the data directory lock if held.
func (r *Runner) ReleaseLock() {
	if r.lock != nil {
		if err := r.lock.Unlock(); err != nil {
			log.Printf("tubefeed: release lock: %v", err)
		}
		r.lock = nil
	}
}

// subscriptions applies the subscription filter to the enabled set.
func (r *Runner) subscriptions() []config.Subscription {
	subs := r.Manager.Config().EnabledSubscriptions()
	if r.Options.Subscription == "" {
		return subs
	}
	for _, sub := range subs {
		if sub.Name == r.Options.Subscription {
			return []config.Subscription{sub}
		}
	}
	return nil
}

// sources applies the source filter to a subscription's enabled sources.
func (r *Runner) sources(sub config.Subscription) []config.Source {
	srcs := sub.EnabledSources()
	if r.Options.Source == "" {
		return srcs
	}
	for _, src := range srcs {
		if src.Name == r.Options.Source {
			return []config.Source{src}
		}
	}
	return nil
}

// RunOnce executes a single cycle over every enabled subscription and
// source that passes the filters. A failing source is logged and skipped;
// it never aborts the rest of the cycle.
func (r *Runner) RunOnce(ctx context.Context) (*CycleResult, error) {
	result := &CycleResult{ID: uuid.New().String()}

	subs := r.subscriptions()
	if len(subs) == 0 {
		log.Printf("tubefeed: cycle %s: no enabled subscriptions match", result.ID)
		return result, nil
	}

	log.Printf("tubefeed: cycle %s: processing %d subscriptions", result.ID, len(subs))
	for _, sub := range subs {
		for _, src := range r.sources(sub) {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			result.Sources++
			if err := r.processSource(ctx, sub, src, result); err != nil {
				result.Failed++
				log.Printf("tubefeed: source %s failed: %v", src.Name, err)
				continue
			}
			result.Succeeded++
		}
	}

	log.Printf("tubefeed: cycle %s done: %d/%d sources succeeded, %d downloaded",
		result.ID, result.Succeeded, result.Sources, result.Downloaded)
	return result, nil
}

// processSource runs one source through the pipeline, or through the dry-run
// analyzer. Panics from a backend are contained to the source.
func (r *Runner) processSource(ctx context.Context, sub config.Subscription, src config.Source, result *CycleResult) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic processing %s: %v", src.Name, rec)
		}
	}()

	if r.Options.DryRun {
		analysis, err := r.Pipeline.Analyze(ctx, sub, src, r.Store)
		if err != nil {
			return err
		}
		analysis.Report(r.Options.out())
		return nil
	}

	res, err := r.Pipeline.ProcessSource(ctx, sub, src)
	if err != nil {
		return err
	}
	if res.Downloaded {
		result.Downloaded++
	}
	return nil
}

// Run executes cycles until the context is cancelled. Between cycles it
// sleeps in one-second slices so cancellation is honored promptly. The loop
// ends on its own when no enabled subscription remains.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if len(r.Manager.Config().EnabledSubscriptions()) == 0 {
			log.Printf("tubefeed: no enabled subscriptions, stopping loop")
			return nil
		}

		if _, err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("tubefeed: cycle failed: %v", err)
		}

		if err := sleep(ctx, r.Options.interval()); err != nil {
			return err
		}
	}
}

// sleep waits for the duration in one-second increments, returning early
// when the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		step := time.Second
		if rest := time.Until(deadline); rest < step {
			step = rest
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step):
		}
	}
	return nil
}

// Package crawler runs the periodic sweep: fetch each target's likes,
// classify them, persist the new ones and hand them to the notifier.
package crawler

import (
	"context"
	"time"

	"likeswatch/pkg/logger"
	"likeswatch/pkg/models"
	"likeswatch/pkg/novelty"
	"likeswatch/pkg/storage"
)

// LikesSource produces a target's liked posts in platform delivery order
type LikesSource interface {
	FetchLikes(ctx context.Context, accountID string, limit int) ([]models.Post, error)
}

// Notifier relays one new post to the target's channel
type Notifier interface {
	Notify(ctx context.Context, target models.Target, post models.Post) error
}

// Config controls the sweep loop
type Config struct {
	Interval     time.Duration
	FetchLimit   int
	SweepOnStart bool
}

// Orchestrator owns the sweep loop. Targets are processed sequentially; one
// browser session cannot serve concurrent listings.
type Orchestrator struct {
	source   LikesSource
	store    storage.Store
	filter   *novelty.Filter
	notifier Notifier
	logger   logger.Logger
	cfg      Config
}

func New(source LikesSource, store storage.Store, notifier Notifier, cfg Config, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		source:   source,
		store:    store,
		filter:   novelty.NewFilter(store),
		notifier: notifier,
		logger:   log,
		cfg:      cfg,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
// Sweeps never overlap; a slow sweep simply delays the next tick's work.
func (o *Orchestrator) Run(ctx context.Context) {
	if o.cfg.SweepOnStart {
		o.Sweep(ctx)
	}

	ticker := time.NewTicker(o.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("crawl loop stopping")
			return
		case <-ticker.C:
			o.Sweep(ctx)
		}
	}
}

// sweepStats aggregates one full sweep for the summary log line
type sweepStats struct {
	targets   int
	failed    int
	fetched   int
	new       int
	notified  int
	already   int
	muted     int
	noPhoto   int
	firstRuns int
}

// Sweep processes every target once. A failing target is logged with its
// identity and skipped; it never aborts the rest of the sweep.
func (o *Orchestrator) Sweep(ctx context.Context) {
	started := time.Now()

	targets, err := o.store.ListTargets(ctx)
	if err != nil {
		o.logger.WithError(err).Error("sweep aborted, cannot list targets")
		return
	}
	mutes, err := o.store.ListMuteRules(ctx)
	if err != nil {
		o.logger.WithError(err).Error("sweep aborted, cannot list mute rules")
		return
	}

	var stats sweepStats
	stats.targets = len(targets)

	for _, target := range targets {
		if ctx.Err() != nil {
			return
		}
		if err := o.sweepTarget(ctx, target, mutes, &stats); err != nil {
			stats.failed++
			o.logger.WithError(err).WithFields(map[string]interface{}{
				"target_id":   target.AccountID,
				"target_name": target.DisplayName,
			}).Error("target sweep failed")
		}
	}

	o.logger.InfoWithFields("sweep completed", map[string]interface{}{
		"targets":    stats.targets,
		"failed":     stats.failed,
		"fetched":    stats.fetched,
		"new":        stats.new,
		"notified":   stats.notified,
		"already":    stats.already,
		"muted":      stats.muted,
		"no_photo":   stats.noPhoto,
		"first_runs": stats.firstRuns,
		"duration":   time.Since(started),
	})
}

// sweepTarget fetches, classifies and relays one target's likes. On the
// target's first sweep the batch only seeds history; notifying would replay
// the account's entire backlog.
func (o *Orchestrator) sweepTarget(ctx context.Context, target models.Target, mutes []models.MuteRule, stats *sweepStats) error {
	seen, err := o.store.CountSeen(ctx, target.AccountID)
	if err != nil {
		return err
	}
	firstRun := seen == 0
	if firstRun {
		stats.firstRuns++
	}

	posts, err := o.source.FetchLikes(ctx, target.AccountID, o.cfg.FetchLimit)
	if err != nil {
		return err
	}
	stats.fetched += len(posts)

	result, err := o.filter.Classify(ctx, target.AccountID, posts, mutes)
	if err != nil {
		return err
	}
	stats.already += result.AlreadyNotified
	stats.muted += result.Muted
	stats.noPhoto += result.NoPhoto
	stats.new += len(result.New)

	for _, post := range result.New {
		// Persist first: a notification for an unrecorded post could be
		// duplicated on the next sweep
		if err := o.store.Save(ctx, target.AccountID, post); err != nil {
			o.logger.WithError(err).WithFields(map[string]interface{}{
				"target_id": target.AccountID,
				"post_id":   post.PostID,
			}).Error("failed to persist post, skipping its notification")
			continue
		}
		if firstRun {
			continue
		}
		if err := o.notifier.Notify(ctx, target, post); err != nil {
			o.logger.WithError(err).WithFields(map[string]interface{}{
				"target_id": target.AccountID,
				"post_id":   post.PostID,
			}).Error("failed to notify, post stays recorded")
			continue
		}
		stats.notified++
	}
	return nil
}

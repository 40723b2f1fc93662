// Package storage persists monitored targets, captured posts and their dedup
// records.
package storage

import (
	"context"

	"likeswatch/pkg/models"
)

// Store is the persistence surface the crawl engine depends on
type Store interface {
	// ListTargets returns all monitored accounts, in insertion order
	ListTargets(ctx context.Context) ([]models.Target, error)

	// ListMuteRules returns all suppression patterns
	ListMuteRules(ctx context.Context) ([]models.MuteRule, error)

	// Exists reports whether a (target, post) pair has been recorded
	Exists(ctx context.Context, targetID, postID string) (bool, error)

	// CountSeen returns how many posts have been recorded for the target
	CountSeen(ctx context.Context, targetID string) (int, error)

	// Save records the post and its capture in one transaction. Saving an
	// already-recorded pair is a no-op, never an error.
	Save(ctx context.Context, targetID string, post models.Post) error

	// GetPost returns a previously saved post, or nil when unknown
	GetPost(ctx context.Context, postID string) (*models.Post, error)

	Close() error
}

// Admin extends Store with the maintenance operations the CLI exposes
type Admin interface {
	Store

	AddTarget(ctx context.Context, target models.Target) error
	RemoveTarget(ctx context.Context, accountID string) error
	AddMuteRule(ctx context.Context, rule models.MuteRule) error
	RemoveMuteRule(ctx context.Context, pattern string) error
}

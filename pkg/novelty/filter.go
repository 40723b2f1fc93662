package novelty

import (
	"context"
	"strings"

	errs "likeswatch/pkg/errors"
	"likeswatch/pkg/models"
)

// HistoryLookup answers whether a post has already been recorded for a target
type HistoryLookup interface {
	Exists(ctx context.Context, targetID, postID string) (bool, error)
}

// Result partitions one fetched batch. New preserves the batch's input order.
type Result struct {
	New             []models.Post
	AlreadyNotified int
	Muted           int
	NoPhoto         int
}

// Total returns how many posts the batch contained
func (r Result) Total() int {
	return len(r.New) + r.AlreadyNotified + r.Muted + r.NoPhoto
}

// Filter decides which fetched posts are worth relaying
type Filter struct {
	history HistoryLookup
}

func NewFilter(history HistoryLookup) *Filter {
	return &Filter{history: history}
}

// Classify partitions posts into new, already notified, muted and photo-less.
// Posts without at least one photo are dropped before any history lookup, so
// video-only likes never consume storage reads. A history lookup failure
// aborts the whole batch rather than risking duplicate notifications.
func (f *Filter) Classify(ctx context.Context, targetID string, posts []models.Post, mutes []models.MuteRule) (Result, error) {
	var result Result
	for _, post := range posts {
		if !post.HasPhoto() {
			result.NoPhoto++
			continue
		}

		exists, err := f.history.Exists(ctx, targetID, post.PostID)
		if err != nil {
			return Result{}, errs.Wrap(errs.ErrorTypeStorage, "history lookup failed", err)
		}
		if exists {
			result.AlreadyNotified++
			continue
		}

		if matchesMute(post, mutes) {
			result.Muted++
			continue
		}

		result.New = append(result.New, post)
	}
	return result, nil
}

// matchesMute reports whether any rule's pattern occurs in the post text,
// case-insensitively.
func matchesMute(post models.Post, mutes []models.MuteRule) bool {
	if len(mutes) == 0 {
		return false
	}
	text := strings.ToLower(post.Text)
	for _, rule := range mutes {
		if rule.Pattern == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(rule.Pattern)) {
			return true
		}
	}
	return false
}

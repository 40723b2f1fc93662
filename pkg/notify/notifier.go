// Package notify renders captured posts into chat notifications and delivers
// them at a bounded pace.
package notify

import (
	"context"
	"fmt"

	"likeswatch/pkg/chat"
	errs "likeswatch/pkg/errors"
	"likeswatch/pkg/logger"
	"likeswatch/pkg/models"
	"likeswatch/pkg/ratelimit"
)

// embedColor matches the platform's brand blue
const embedColor = 0x1d9bf0

// Notifier delivers one notification per new post
type Notifier struct {
	backend chat.Backend
	pacer   ratelimit.Limiter
	logger  logger.Logger
}

// New creates a Notifier. The pacer spaces out consecutive sends so a large
// sweep does not burst into the channel.
func New(backend chat.Backend, pacer ratelimit.Limiter, log logger.Logger) *Notifier {
	return &Notifier{backend: backend, pacer: pacer, logger: log}
}

// Notify sends one post to the target's channel. A target without a usable
// channel is skipped with a warning, not failed, so one misconfigured target
// cannot stall the sweep.
func (n *Notifier) Notify(ctx context.Context, target models.Target, post models.Post) error {
	if target.NotifyChannelID == "" {
		n.logger.WithField("target_id", target.AccountID).Warn("target has no notify channel, skipping notification")
		return nil
	}

	ok, err := n.backend.ChannelExists(ctx, target.NotifyChannelID)
	if err != nil || !ok {
		n.logger.WithError(err).WithFields(map[string]interface{}{
			"target_id":  target.AccountID,
			"channel_id": target.NotifyChannelID,
		}).Warn("notify channel unavailable, skipping notification")
		return nil
	}

	n.pacer.Wait()

	msg := renderMessage(target, post)
	if _, err := n.backend.SendMessage(ctx, target.NotifyChannelID, msg); err != nil {
		return errs.Wrap(errs.ErrorTypeTransport, "failed to send notification", err)
	}

	n.logger.DebugWithFields("notification sent", map[string]interface{}{
		"target_id":  target.AccountID,
		"post_id":    post.PostID,
		"channel_id": target.NotifyChannelID,
	})
	return nil
}

// renderMessage builds the notification: one embed per photo sharing the
// post's permalink, details on the first, attribution footer on the last.
func renderMessage(target models.Target, post models.Post) chat.Message {
	photos := post.PhotoMedia()
	permalink := post.Permalink()

	embeds := make([]chat.Embed, 0, len(photos))
	if len(photos) == 0 {
		// Upstream filtering guarantees a photo; fall back to a bare card
		embeds = append(embeds, chat.Embed{URL: permalink, Color: embedColor})
	}
	for i, photo := range photos {
		e := chat.Embed{
			URL:      permalink,
			Color:    embedColor,
			ImageURL: photo.URL,
		}
		if len(photos) >= 2 {
			e.Title = fmt.Sprintf("%d / %d", i+1, len(photos))
		}
		embeds = append(embeds, e)
	}

	first := &embeds[0]
	first.AuthorName = fmt.Sprintf("%s (@%s)", post.AuthorName, post.AuthorHandle)
	first.AuthorURL = "https://twitter.com/" + post.AuthorHandle
	first.AuthorIconURL = post.AuthorAvatarURL
	first.Description = post.Text
	first.Fields = []chat.Field{
		{Name: "Retweets", Value: fmt.Sprintf("%d", post.RetweetCount), Inline: true},
		{Name: "Likes", Value: fmt.Sprintf("%d", post.LikeCount), Inline: true},
		{Name: "URL", Value: permalink},
	}

	last := &embeds[len(embeds)-1]
	last.FooterText = fmt.Sprintf("%s likes", target.DisplayName)
	createdAt := post.CreatedAt
	last.Timestamp = &createdAt

	return chat.Message{
		Embeds: embeds,
		Buttons: []chat.Button{
			{Label: "Like", CustomID: chat.LikeCustomID(post.PostID)},
			{Label: "Open", TargetURL: permalink},
			{Label: "Like intent", TargetURL: "https://twitter.com/intent/like?tweet_id=" + post.PostID},
			{Label: "Retweet intent", TargetURL: "https://twitter.com/intent/retweet?tweet_id=" + post.PostID},
		},
	}
}

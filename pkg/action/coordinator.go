// Package action drives the interactive like control: authorization, the
// remote like attempt with one retry, and the fallback path when both
// attempts fail.
package action

import (
	"context"
	"fmt"

	"likeswatch/pkg/chat"
	"likeswatch/pkg/logger"
	"likeswatch/pkg/retry"
)

const likeAttempts = 2

// RemoteLiker submits a like through the instrumented browser session
type RemoteLiker interface {
	LikePost(ctx context.Context, postID string) (alreadyLiked bool, err error)
}

// Coordinator handles like-control clicks end to end
type Coordinator struct {
	liker   RemoteLiker
	backend chat.Backend
	ownerID string
	logger  logger.Logger
}

func NewCoordinator(liker RemoteLiker, backend chat.Backend, ownerID string, log logger.Logger) *Coordinator {
	return &Coordinator{liker: liker, backend: backend, ownerID: ownerID, logger: log}
}

// Handle processes one like-control click. Only the configured owner may use
// the control; anyone else is refused without touching the message. The click
// is acknowledged before the remote attempt so the service never times the
// interaction out while the browser works.
func (c *Coordinator) Handle(ctx context.Context, in chat.Interaction) {
	log := c.logger.WithFields(map[string]interface{}{
		"post_id":      in.PostID(),
		"requester_id": in.RequesterID(),
	})

	if in.RequesterID() != c.ownerID {
		log.Warn("like control clicked by non-owner")
		if err := in.Refuse(ctx, "This control belongs to the watch owner."); err != nil {
			log.WithError(err).Error("failed to refuse interaction")
		}
		return
	}

	if err := in.Acknowledge(ctx); err != nil {
		log.WithError(err).Error("failed to acknowledge interaction")
		return
	}

	var alreadyLiked bool
	err := retry.Do(func() error {
		var likeErr error
		alreadyLiked, likeErr = c.liker.LikePost(ctx, in.PostID())
		return likeErr
	}, &retry.Config{
		MaxAttempts: likeAttempts,
		Backoff:     retry.NoBackoff(),
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		OnRetry: func(attempt int, err error) {
			log.WithError(err).Warn("like attempt failed, retrying")
			if respondErr := in.Respond(ctx, fmt.Sprintf("First attempt failed (%v), retrying...", err)); respondErr != nil {
				log.WithError(respondErr).Error("failed to update interaction status")
			}
		},
	})

	if err != nil {
		c.fail(ctx, in, log, err)
		return
	}

	text := "Liked."
	if alreadyLiked {
		text = "Already liked, nothing to do."
	}
	if respondErr := in.Respond(ctx, text); respondErr != nil {
		log.WithError(respondErr).Error("failed to report like result")
	}
	if disableErr := in.DisableControl(ctx); disableErr != nil {
		log.WithError(disableErr).Error("failed to disable like control")
	}
	log.WithField("already_liked", alreadyLiked).Info("like request completed")
}

// fail reports the exhausted attempts on the interaction and falls back to a
// DM carrying the error, a jump link and a fresh control so the owner can try
// again later.
func (c *Coordinator) fail(ctx context.Context, in chat.Interaction, log logger.Logger, cause error) {
	log.WithError(cause).Error("like request failed after retries")

	if err := in.Respond(ctx, fmt.Sprintf("Could not like the post: %v", cause)); err != nil {
		log.WithError(err).Error("failed to report like failure")
	}

	dm := chat.Message{
		Content: fmt.Sprintf("Liking failed after %d attempts: %v\n%s", likeAttempts, cause, in.MessageLink()),
		Buttons: []chat.Button{
			{Label: "Like", CustomID: chat.LikeCustomID(in.PostID())},
		},
	}
	if err := c.backend.SendDirectMessage(ctx, in.RequesterID(), dm); err != nil {
		log.WithError(err).Error("failed to send fallback direct message")
	}
}

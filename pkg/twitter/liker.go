package twitter

import (
	"context"
	"fmt"
	"time"

	errs "likeswatch/pkg/errors"
)

const (
	likeSelector   = `div[role="button"][data-testid="like"]`
	unlikeSelector = `div[role="button"][data-testid="unlike"]`
	toastSelector  = `div#layers div[role="alert"][data-testid="toast"]`

	likeWaitTimeout    = 5 * time.Second
	controlWaitTimeout = 7 * time.Second
	overallLikeTimeout = 8 * time.Second
)

type likeResult struct {
	alreadyLiked bool
	err          error
}

// LikePost opens the status page and clicks the like control. The presence
// of an unlike control means the post is already liked, which is reported as
// success. A platform error toast is surfaced as a remote action failure
// with the toast's text.
func (c *Client) LikePost(ctx context.Context, postID string) (alreadyLiked bool, err error) {
	page, err := c.session.NewPage(ctx)
	if err != nil {
		return false, err
	}
	defer page.Close()

	if err := page.Navigate(fmt.Sprintf("%s/i/status/%s", c.baseURL, postID)); err != nil {
		return false, err
	}

	// The three controls race: whichever appears first decides the outcome
	results := make(chan likeResult, 3)

	go func() {
		el, waitErr := page.WaitElement(likeSelector, likeWaitTimeout)
		if waitErr != nil {
			return
		}
		if clickErr := el.Click(); clickErr != nil {
			results <- likeResult{err: errs.Wrap(errs.ErrorTypeRemoteAction, "failed to click like control", clickErr)}
			return
		}
		results <- likeResult{}
	}()

	go func() {
		if _, waitErr := page.WaitElement(unlikeSelector, controlWaitTimeout); waitErr != nil {
			return
		}
		results <- likeResult{alreadyLiked: true}
	}()

	go func() {
		el, waitErr := page.WaitElement(toastSelector, controlWaitTimeout)
		if waitErr != nil {
			return
		}
		detail, textErr := el.Text()
		if textErr != nil || detail == "" {
			detail = "unknown platform error"
		}
		results <- likeResult{err: errs.New(errs.ErrorTypeRemoteAction, detail)}
	}()

	select {
	case res := <-results:
		if res.err != nil {
			c.logger.WithError(res.err).WithField("post_id", postID).Warn("like attempt failed")
			return false, res.err
		}
		c.logger.InfoWithFields("like submitted", map[string]interface{}{
			"post_id":       postID,
			"already_liked": res.alreadyLiked,
		})
		return res.alreadyLiked, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(overallLikeTimeout):
		return false, errs.New(errs.ErrorTypeRemoteAction, "no like control appeared on the status page")
	}
}

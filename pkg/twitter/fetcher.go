package twitter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"likeswatch/pkg/browser"
	errs "likeswatch/pkg/errors"
	"likeswatch/pkg/logger"
	"likeswatch/pkg/models"
)

const (
	defaultResolveTimeout  = 10 * time.Second
	defaultResponseTimeout = 10 * time.Second
	defaultScrollInterval  = time.Second
	defaultPollInterval    = 500 * time.Millisecond

	notFoundSentinel = "404"

	// likesAPIFragment identifies the single paginated API backing the
	// likes listing page
	likesAPIFragment = "/Likes"
)

// Client drives a browser session through account resolution, listing
// pagination and like submission.
type Client struct {
	session *browser.Session
	baseURL string
	logger  logger.Logger

	resolveTimeout  time.Duration
	responseTimeout time.Duration
	scrollInterval  time.Duration
	pollInterval    time.Duration
}

// NewClient creates a fetch client over a connected browser session
func NewClient(session *browser.Session, baseURL string, log logger.Logger) *Client {
	return &Client{
		session:         session,
		baseURL:         strings.TrimRight(baseURL, "/"),
		logger:          log,
		resolveTimeout:  defaultResolveTimeout,
		responseTimeout: defaultResponseTimeout,
		scrollInterval:  defaultScrollInterval,
		pollInterval:    defaultPollInterval,
	}
}

// ResolveHandle maps an opaque account id to the handle needed to open its
// listing page, by following the platform's id-lookup redirect.
func (c *Client) ResolveHandle(ctx context.Context, accountID string) (string, error) {
	lookupURL := fmt.Sprintf("%s/i/user/%s", c.baseURL, accountID)

	page, err := c.session.NewPage(ctx)
	if err != nil {
		return "", err
	}
	defer page.Close()

	if err := page.Navigate(lookupURL); err != nil {
		return "", err
	}

	deadline := time.Now().Add(c.resolveTimeout)
	href := lookupURL
	for time.Now().Before(deadline) {
		current, err := page.URL()
		if err == nil && current != lookupURL {
			href = current
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	return classifyResolvedURL(href, lookupURL, accountID)
}

// classifyResolvedURL turns the post-redirect location into a handle or a
// typed resolution failure.
func classifyResolvedURL(href, lookupURL, accountID string) (string, error) {
	if href == lookupURL {
		return "", errs.New(errs.ErrorTypeResolutionTimeout, "no redirect from id lookup")
	}
	parts := strings.Split(strings.TrimRight(href, "/"), "/")
	handle := parts[len(parts)-1]
	if handle == notFoundSentinel {
		return "", errs.New(errs.ErrorTypeNotFound, "account not found")
	}
	if handle == "" || handle == accountID {
		return "", errs.New(errs.ErrorTypeResolutionTimeout, "failed to resolve handle")
	}
	return handle, nil
}

// FetchLikes collects up to limit liked posts for the account, in platform
// delivery order (most recent like first). A shorter result is the normal
// exhausted condition, not an error.
func (c *Client) FetchLikes(ctx context.Context, accountID string, limit int) ([]models.Post, error) {
	handle, err := c.ResolveHandle(ctx, accountID)
	if err != nil {
		return nil, err
	}

	page, err := c.session.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	// The tap must be listening before navigation or the first page of
	// results is lost
	tap := page.AttachTap(func(url string) bool {
		return strings.Contains(url, likesAPIFragment)
	})
	defer tap.Detach()

	if err := page.Navigate(fmt.Sprintf("%s/%s/likes", c.baseURL, handle)); err != nil {
		return nil, err
	}

	// Scroll on a fixed cadence, independent of fetch completion, to keep
	// the listing requesting further pages
	scrollDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(c.scrollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-scrollDone:
				return
			case <-ticker.C:
				_ = page.ScrollToBottom()
			}
		}
	}()
	defer close(scrollDone)

	posts := c.collect(ctx, tap, limit)

	c.logger.InfoWithFields("likes fetched", map[string]interface{}{
		"account_id": accountID,
		"handle":     handle,
		"count":      len(posts),
		"limit":      limit,
	})
	return posts, nil
}

// responseTap is the buffered-response source the collector drains
type responseTap interface {
	Take() ([]byte, bool)
}

// collect drains buffered responses into an ordered, id-deduplicated
// accumulator until the limit is reached or responses stop arriving.
func (c *Client) collect(ctx context.Context, tap responseTap, limit int) []models.Post {
	var posts []models.Post
	seen := make(map[string]bool)

	for len(posts) < limit {
		body, ok := c.waitResponse(ctx, tap)
		if !ok {
			break // exhausted
		}

		result, err := ParseLikesPage(body)
		if err != nil {
			c.logger.WithError(err).Warn("dropping undecodable likes response")
			continue
		}
		if result.Skipped > 0 || result.Malformed > 0 {
			c.logger.DebugWithFields("entries dropped during normalization", map[string]interface{}{
				"skipped":   result.Skipped,
				"malformed": result.Malformed,
			})
		}

		for _, post := range result.Posts {
			if seen[post.PostID] {
				continue
			}
			seen[post.PostID] = true
			posts = append(posts, post)
			if len(posts) >= limit {
				break
			}
		}
	}
	return posts
}

// waitResponse polls the tap until a response is buffered or the per-attempt
// timeout elapses. Timeout is the normal terminal condition of a listing.
func (c *Client) waitResponse(ctx context.Context, tap responseTap) ([]byte, bool) {
	deadline := time.Now().Add(c.responseTimeout)
	for {
		if body, ok := tap.Take(); ok {
			return body, true
		}
		if time.Now().After(deadline) {
			return nil, false
		}
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(c.pollInterval):
		}
	}
}

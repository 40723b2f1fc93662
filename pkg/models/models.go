package models

import "time"

// MediaKind is the platform's media type discriminator.
type MediaKind string

const (
	MediaPhoto       MediaKind = "photo"
	MediaVideo       MediaKind = "video"
	MediaAnimatedGIF MediaKind = "animated_gif"
)

// MediaSize describes one rendition of a media entry.
type MediaSize struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MediaRef is one media attachment of a Post.
type MediaRef struct {
	MediaID string      `json:"media_id"`
	Kind    MediaKind   `json:"kind"`
	URL     string      `json:"url"`
	URLType string      `json:"url_type"`
	Sizes   []MediaSize `json:"sizes"`
}

// Post is the canonical normalized representation of one liked item.
// Immutable once produced by the normalizer.
type Post struct {
	PostID          string     `json:"post_id"`
	AuthorID        string     `json:"author_id"`
	AuthorHandle    string     `json:"author_handle"`
	AuthorName      string     `json:"author_name"`
	AuthorAvatarURL string     `json:"author_avatar_url"`
	Text            string     `json:"text"`
	Hashtags        []string   `json:"hashtags"`
	Media           []MediaRef `json:"media"`
	CreatedAt       time.Time  `json:"created_at"`
	IsSensitive     bool       `json:"is_sensitive"`
	LikeCount       int        `json:"like_count"`
	RetweetCount    int        `json:"retweet_count"`
}

// PhotoMedia returns only the photo-type attachments, in source order.
func (p Post) PhotoMedia() []MediaRef {
	var photos []MediaRef
	for _, m := range p.Media {
		if m.Kind == MediaPhoto {
			photos = append(photos, m)
		}
	}
	return photos
}

// HasPhoto reports whether at least one attachment is a photo.
func (p Post) HasPhoto() bool {
	for _, m := range p.Media {
		if m.Kind == MediaPhoto {
			return true
		}
	}
	return false
}

// Permalink returns the canonical status URL for the post.
func (p Post) Permalink() string {
	return "https://twitter.com/" + p.AuthorHandle + "/status/" + p.PostID
}

// Target is a monitored external account plus its notification destination.
// Maintained by the admin path; read-only to the crawl engine.
type Target struct {
	AccountID       string `json:"account_id"`
	DisplayName     string `json:"display_name"`
	NotifyChannelID string `json:"notify_channel_id,omitempty"`
}

// CapturedItem links a Target to a processed Post. At most one exists per
// (target, post) pair; it is the dedup record and is never mutated.
type CapturedItem struct {
	ItemID     int64     `json:"item_id"`
	TargetID   string    `json:"target_id"`
	PostID     string    `json:"post_id"`
	CapturedAt time.Time `json:"captured_at"`
}

// MuteRule suppresses posts whose text contains the pattern.
type MuteRule struct {
	Pattern string `json:"pattern"`
}

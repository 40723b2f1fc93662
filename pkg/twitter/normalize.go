package twitter

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	errs "likeswatch/pkg/errors"
	"likeswatch/pkg/models"
)

// createdAtLayout is the platform's legacy timestamp format
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// errNoExtendedMedia marks an entry without extended media. Such entries are
// filtered, not failed.
var errNoExtendedMedia = errors.New("entry has no extended media")

// sizeOrder fixes the emission order of media renditions
var sizeOrder = []string{"thumb", "small", "medium", "large"}

// PageResult is the outcome of normalizing one paginated response
type PageResult struct {
	Posts     []models.Post
	Skipped   int // entries without extended media
	Malformed int // entries that failed normalization
}

// ParseLikesPage decodes one buffered likes response and normalizes its tweet
// entries in delivery order. Malformed entries and media-less entries are
// counted and dropped; they never abort the page.
func ParseLikesPage(body []byte) (PageResult, error) {
	var resp likesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return PageResult{}, errs.Wrap(errs.ErrorTypeMalformedEntry, "undecodable likes response", err)
	}

	var result PageResult
	for _, inst := range resp.Data.User.Result.TimelineV2.Timeline.Instructions {
		if inst.Type != "TimelineAddEntries" {
			continue
		}
		for _, e := range inst.Entries {
			if !strings.HasPrefix(e.EntryID, "tweet-") {
				continue
			}
			post, err := normalizeEntry(e)
			if err != nil {
				if errors.Is(err, errNoExtendedMedia) {
					result.Skipped++
				} else {
					result.Malformed++
				}
				continue
			}
			result.Posts = append(result.Posts, *post)
		}
	}
	return result, nil
}

// normalizeEntry converts one raw timeline entry into a canonical Post.
func normalizeEntry(e entry) (*models.Post, error) {
	if e.Content.ItemContent == nil || e.Content.ItemContent.TweetResults.Result == nil {
		return nil, errs.New(errs.ErrorTypeMalformedEntry, "entry has no tweet result")
	}
	result := e.Content.ItemContent.TweetResults.Result

	legacy := result.legacyData()
	if legacy == nil {
		return nil, errs.New(errs.ErrorTypeMalformedEntry, "entry has no legacy data")
	}

	core := result.coreData()
	if core == nil {
		return nil, errs.New(errs.ErrorTypeMalformedEntry, "entry has no author data")
	}
	author := core.UserResults.Result
	if !author.isFullProfile() {
		return nil, errs.New(errs.ErrorTypeMalformedEntry, "author profile is not the full variant")
	}

	if legacy.ExtendedEntities == nil || len(legacy.ExtendedEntities.Media) == 0 {
		return nil, errNoExtendedMedia
	}

	createdAt, err := time.Parse(createdAtLayout, legacy.CreatedAt)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeMalformedEntry, "unparseable created_at", err)
	}

	// Source order preserved, duplicates kept
	var hashtags []string
	for _, h := range legacy.Entities.Hashtags {
		hashtags = append(hashtags, h.Text)
	}

	media := make([]models.MediaRef, 0, len(legacy.ExtendedEntities.Media))
	for _, m := range legacy.ExtendedEntities.Media {
		media = append(media, normalizeMedia(m))
	}

	return &models.Post{
		PostID:          legacy.IDStr,
		AuthorID:        author.RestID,
		AuthorHandle:    author.Legacy.ScreenName,
		AuthorName:      author.Legacy.Name,
		AuthorAvatarURL: author.Legacy.ProfileImageURLHTTPS,
		Text:            legacy.FullText,
		Hashtags:        hashtags,
		Media:           media,
		CreatedAt:       createdAt,
		IsSensitive:     legacy.PossiblySensitive,
		LikeCount:       legacy.FavoriteCount,
		RetweetCount:    legacy.RetweetCount,
	}, nil
}

func normalizeMedia(m rawMedia) models.MediaRef {
	ref := models.MediaRef{
		MediaID: m.IDStr,
		Kind:    models.MediaKind(m.Type),
		URL:     m.MediaURLHTTPS,
		URLType: "https",
	}
	for _, name := range sizeOrder {
		if s, ok := m.Sizes[name]; ok {
			ref.Sizes = append(ref.Sizes, models.MediaSize{Name: name, Width: s.W, Height: s.H})
		}
	}
	return ref
}

package twitter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "likeswatch/pkg/errors"
	"likeswatch/pkg/models"
)

const fullTweetTemplate = `{
	"entryId": "tweet-%[1]s",
	"content": {
		"itemContent": {
			"tweet_results": {
				"result": {
					"legacy": {
						"id_str": "%[1]s",
						"full_text": "%[2]s",
						"created_at": "Mon Jan 02 15:04:05 +0000 2023",
						"favorite_count": 12,
						"retweet_count": 3,
						"entities": {"hashtags": [%[3]s]},
						"extended_entities": {"media": [%[4]s]}
					},
					"core": {
						"user_results": {
							"result": {
								"__typename": "User",
								"rest_id": "9001",
								"legacy": {
									"name": "Example Author",
									"screen_name": "example",
									"profile_image_url_https": "https://pbs.example/avatar.jpg"
								}
							}
						}
					}
				}
			}
		}
	}
}`

func photoMedia(id string) string {
	return fmt.Sprintf(`{"id_str": "m%s", "type": "photo", "media_url_https": "https://pbs.example/%s.jpg", "sizes": {"thumb": {"w": 150, "h": 150}, "large": {"w": 2048, "h": 1536}}}`, id, id)
}

func videoMedia(id string) string {
	return fmt.Sprintf(`{"id_str": "m%s", "type": "video", "media_url_https": "https://pbs.example/%s.mp4", "sizes": {}}`, id, id)
}

func tweetEntry(id, text, hashtags, media string) string {
	return fmt.Sprintf(fullTweetTemplate, id, text, hashtags, media)
}

func likesPage(entries ...string) []byte {
	joined := ""
	for i, e := range entries {
		if i > 0 {
			joined += ","
		}
		joined += e
	}
	return []byte(fmt.Sprintf(`{
		"data": {"user": {"result": {"timeline_v2": {"timeline": {"instructions": [
			{"type": "TimelineAddEntries", "entries": [%s]},
			{"type": "TimelineClearCache", "entries": []}
		]}}}}}
	}`, joined))
}

func TestParseLikesPageNormalizesFullEntry(t *testing.T) {
	page := likesPage(tweetEntry("100", "hello world", `{"text": "go"}, {"text": "news"}`, photoMedia("100")))

	result, err := ParseLikesPage(page)
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)

	post := result.Posts[0]
	assert.Equal(t, "100", post.PostID)
	assert.Equal(t, "9001", post.AuthorID)
	assert.Equal(t, "example", post.AuthorHandle)
	assert.Equal(t, "Example Author", post.AuthorName)
	assert.Equal(t, "hello world", post.Text)
	assert.Equal(t, 12, post.LikeCount)
	assert.Equal(t, 3, post.RetweetCount)
	assert.Equal(t, 2023, post.CreatedAt.Year())
	require.Len(t, post.Media, 1)
	assert.Equal(t, models.MediaPhoto, post.Media[0].Kind)
	// Renditions come out in the fixed thumb..large order
	require.Len(t, post.Media[0].Sizes, 2)
	assert.Equal(t, "thumb", post.Media[0].Sizes[0].Name)
	assert.Equal(t, "large", post.Media[0].Sizes[1].Name)
}

func TestParseLikesPagePreservesHashtagOrderWithDuplicates(t *testing.T) {
	page := likesPage(tweetEntry("101", "tags", `{"text": "b"}, {"text": "a"}, {"text": "b"}`, photoMedia("101")))

	result, err := ParseLikesPage(page)
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, []string{"b", "a", "b"}, result.Posts[0].Hashtags)
}

func TestParseLikesPageSkipsEntriesWithoutExtendedMedia(t *testing.T) {
	noMedia := `{
		"entryId": "tweet-102",
		"content": {"itemContent": {"tweet_results": {"result": {
			"legacy": {
				"id_str": "102",
				"full_text": "text only",
				"created_at": "Mon Jan 02 15:04:05 +0000 2023",
				"entities": {"hashtags": []}
			},
			"core": {"user_results": {"result": {
				"__typename": "User", "rest_id": "9001",
				"legacy": {"name": "A", "screen_name": "a", "profile_image_url_https": ""}
			}}}
		}}}}
	}`
	page := likesPage(noMedia, tweetEntry("103", "with media", ``, photoMedia("103")))

	result, err := ParseLikesPage(page)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Malformed)
	// The batch continues past the media-less entry
	require.Len(t, result.Posts, 1)
	assert.Equal(t, "103", result.Posts[0].PostID)
}

func TestParseLikesPageRejectsReducedProfile(t *testing.T) {
	reduced := `{
		"entryId": "tweet-104",
		"content": {"itemContent": {"tweet_results": {"result": {
			"legacy": {
				"id_str": "104",
				"full_text": "suspended author",
				"created_at": "Mon Jan 02 15:04:05 +0000 2023",
				"entities": {"hashtags": []},
				"extended_entities": {"media": [` + photoMedia("104") + `]}
			},
			"core": {"user_results": {"result": {
				"__typename": "UserUnavailable",
				"rest_id": "9002"
			}}}
		}}}}
	}`
	result, err := ParseLikesPage([]byte(likesPage(reduced)))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Malformed)
	assert.Empty(t, result.Posts)
}

func TestParseLikesPageQuoteWrapperPath(t *testing.T) {
	wrapped := `{
		"entryId": "tweet-105",
		"content": {"itemContent": {"tweet_results": {"result": {
			"tweet": {
				"legacy": {
					"id_str": "105",
					"full_text": "wrapped",
					"created_at": "Mon Jan 02 15:04:05 +0000 2023",
					"entities": {"hashtags": []},
					"extended_entities": {"media": [` + photoMedia("105") + `]}
				},
				"core": {"user_results": {"result": {
					"__typename": "User", "rest_id": "9003",
					"legacy": {"name": "W", "screen_name": "wrapped", "profile_image_url_https": ""}
				}}}
			}
		}}}}
	}`
	result, err := ParseLikesPage([]byte(likesPage(wrapped)))
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)
	assert.Equal(t, "105", result.Posts[0].PostID)
	assert.Equal(t, "wrapped", result.Posts[0].AuthorHandle)
}

func TestParseLikesPageIgnoresNonTweetEntries(t *testing.T) {
	cursor := `{"entryId": "cursor-bottom-1", "content": {}}`
	page := likesPage(cursor, tweetEntry("106", "real", ``, photoMedia("106")))

	result, err := ParseLikesPage(page)
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)
	assert.Zero(t, result.Malformed)
}

func TestParseLikesPageUndecodableBody(t *testing.T) {
	_, err := ParseLikesPage([]byte("not json"))
	assert.True(t, errs.Is(err, errs.ErrorTypeMalformedEntry))
}

func TestParseLikesPageMixedMediaKept(t *testing.T) {
	page := likesPage(tweetEntry("107", "mixed", ``, photoMedia("107")+","+videoMedia("107v")))

	result, err := ParseLikesPage(page)
	require.NoError(t, err)
	require.Len(t, result.Posts, 1)

	post := result.Posts[0]
	assert.Len(t, post.Media, 2)
	assert.Len(t, post.PhotoMedia(), 1)
	assert.True(t, post.HasPhoto())
}

package twitter

// Raw shapes of the internal paginated likes API. Only the fields the
// normalizer consumes are declared; everything else in the payload is
// ignored on decode.

type likesResponse struct {
	Data struct {
		User struct {
			Result struct {
				TimelineV2 struct {
					Timeline struct {
						Instructions []instruction `json:"instructions"`
					} `json:"timeline"`
				} `json:"timeline_v2"`
			} `json:"result"`
		} `json:"user"`
	} `json:"data"`
}

type instruction struct {
	Type    string  `json:"type"`
	Entries []entry `json:"entries"`
}

type entry struct {
	EntryID string `json:"entryId"`
	Content struct {
		ItemContent *struct {
			TweetResults struct {
				Result *tweetResult `json:"result"`
			} `json:"tweet_results"`
		} `json:"itemContent"`
	} `json:"content"`
}

// tweetResult carries the tweet data either directly or behind a quote
// wrapper ("tweet" key); both paths must be checked.
type tweetResult struct {
	Legacy *tweetLegacy `json:"legacy"`
	Core   *tweetCore   `json:"core"`
	Tweet  *struct {
		Legacy *tweetLegacy `json:"legacy"`
		Core   *tweetCore   `json:"core"`
	} `json:"tweet"`
	Source string `json:"source"`
}

func (r *tweetResult) legacyData() *tweetLegacy {
	if r.Legacy != nil {
		return r.Legacy
	}
	if r.Tweet != nil {
		return r.Tweet.Legacy
	}
	return nil
}

func (r *tweetResult) coreData() *tweetCore {
	if r.Core != nil {
		return r.Core
	}
	if r.Tweet != nil {
		return r.Tweet.Core
	}
	return nil
}

type tweetCore struct {
	UserResults struct {
		Result userResult `json:"result"`
	} `json:"user_results"`
}

// userResult is a tagged variant: __typename "User" is the full profile,
// anything else is a reduced shape lacking the fields we require.
type userResult struct {
	TypeName string      `json:"__typename"`
	RestID   string      `json:"rest_id"`
	Legacy   *userLegacy `json:"legacy"`
}

const typeNameFullUser = "User"

func (u *userResult) isFullProfile() bool {
	return u.TypeName == typeNameFullUser && u.Legacy != nil && u.Legacy.ScreenName != ""
}

type userLegacy struct {
	Name                 string `json:"name"`
	ScreenName           string `json:"screen_name"`
	ProfileImageURLHTTPS string `json:"profile_image_url_https"`
}

type tweetLegacy struct {
	IDStr             string `json:"id_str"`
	FullText          string `json:"full_text"`
	CreatedAt         string `json:"created_at"`
	FavoriteCount     int    `json:"favorite_count"`
	RetweetCount      int    `json:"retweet_count"`
	PossiblySensitive bool   `json:"possibly_sensitive"`
	Entities          struct {
		Hashtags []struct {
			Text string `json:"text"`
		} `json:"hashtags"`
	} `json:"entities"`
	ExtendedEntities *struct {
		Media []rawMedia `json:"media"`
	} `json:"extended_entities"`
}

type rawMedia struct {
	IDStr         string             `json:"id_str"`
	Type          string             `json:"type"`
	MediaURLHTTPS string             `json:"media_url_https"`
	Sizes         map[string]rawSize `json:"sizes"`
}

type rawSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

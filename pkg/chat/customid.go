package chat

import "strings"

// likeCustomIDPrefix namespaces the like control's custom id so unrelated
// components on the same bot never collide with it.
const likeCustomIDPrefix = "like-"

// LikeCustomID builds the custom id for a post's like control
func LikeCustomID(postID string) string {
	return likeCustomIDPrefix + postID
}

// ParseLikeCustomID extracts the post id from a like control's custom id.
// Returns false for custom ids belonging to other components.
func ParseLikeCustomID(customID string) (string, bool) {
	if !strings.HasPrefix(customID, likeCustomIDPrefix) {
		return "", false
	}
	postID := strings.TrimPrefix(customID, likeCustomIDPrefix)
	if postID == "" {
		return "", false
	}
	return postID, true
}

package instagram

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the base URL for Instagram
	BaseURL = "https://www.instagram.com"

	// PermalinkBase prefixes canonical post links
	PermalinkBase = "https://instagram.com/p/"

	ProfileEndpoint    = "/api/v1/users/web_profile_info/"
	GraphQLEndpoint    = "/graphql/query/"
	StoriesEndpoint    = "/api/v1/feed/reels_media/"
	HighlightsEndpoint = "/api/v1/highlights/%s/highlights_tray/"
	HashtagEndpoint    = "/api/v1/tags/web_info/"

	MediaQueryHash    = "e769aa130647d2354c40ea6a439bfc08"
	PostQueryHash     = "b3055c01b4b222b8a47dc12b090e4e64"
	CommentsQueryHash = "bc3296d1ce80a24b1b6e40b1e72903f5"

	// DefaultPageSize is the number of items requested per page
	DefaultPageSize = 12

	// MaxPageSize is the largest page Instagram serves
	MaxPageSize = 50
)

// ProfileURL constructs the URL for fetching a user's profile
func ProfileURL(base, username string) string {
	params := url.Values{}
	params.Set("username", username)
	return base + ProfileEndpoint + "?" + params.Encode()
}

// MediaURL constructs the URL for one page of a user's timeline
func MediaURL(base, userID, after string, limit int) string {
	vars := map[string]interface{}{
		"id":    userID,
		"first": clampPageSize(limit),
	}
	if after != "" {
		vars["after"] = after
	}
	return graphQLURL(base, MediaQueryHash, vars)
}

// PostURL constructs the URL for fetching a single post by shortcode
func PostURL(base, shortcode string) string {
	return graphQLURL(base, PostQueryHash, map[string]interface{}{
		"shortcode": shortcode,
	})
}

// CommentsURL constructs the URL for one page of a post's top level comments
func CommentsURL(base, shortcode, after string, limit int) string {
	vars := map[string]interface{}{
		"shortcode": shortcode,
		"first":     clampPageSize(limit),
	}
	if after != "" {
		vars["after"] = after
	}
	return graphQLURL(base, CommentsQueryHash, vars)
}

// StoriesURL constructs the URL for a user's current story reel
func StoriesURL(base, userID string) string {
	params := url.Values{}
	params.Set("reel_ids", userID)
	return base + StoriesEndpoint + "?" + params.Encode()
}

// HighlightsURL constructs the URL for a user's highlight tray
func HighlightsURL(base, userID string) string {
	return base + fmt.Sprintf(HighlightsEndpoint, url.PathEscape(userID))
}

// HashtagURL constructs the URL for hashtag metadata
func HashtagURL(base, name string) string {
	params := url.Values{}
	params.Set("tag_name", name)
	return base + HashtagEndpoint + "?" + params.Encode()
}

// Permalink returns the canonical public link of a post
func Permalink(shortcode string) string {
	return PermalinkBase + shortcode
}

// SanitizeUsername strips a leading @ and trailing slashes or spaces
func SanitizeUsername(username string) string {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	return strings.TrimRight(username, "/ ")
}

func graphQLURL(base, queryHash string, vars map[string]interface{}) string {
	// map keys marshal in sorted order, so the URL is deterministic
	encoded, _ := json.Marshal(vars)

	params := url.Values{}
	params.Set("query_hash", queryHash)
	params.Set("variables", string(encoded))
	return base + GraphQLEndpoint + "?" + params.Encode()
}

func clampPageSize(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

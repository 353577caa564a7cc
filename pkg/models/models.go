// Package models defines the JSON documents served by the API. Values are
// built once per request by the scraper service and never modified after.
package models

import "time"

// Profile is a user's public profile
type Profile struct {
	Username      string  `json:"username"`
	FullName      string  `json:"full_name"`
	Biography     string  `json:"biography"`
	Followers     int64   `json:"followers"`
	Followees     int64   `json:"followees"`
	PostsCount    int64   `json:"posts_count"`
	IsPrivate     bool    `json:"is_private"`
	ProfilePicURL string  `json:"profile_pic_url"`
	ExternalURL   *string `json:"external_url"`
	IsVerified    bool    `json:"is_verified"`
}

// Post is a single feed post. Hashtags and Mentions are always extracted
// from Caption.
type Post struct {
	Shortcode string    `json:"shortcode"`
	URL       string    `json:"url"`
	Caption   string    `json:"caption"`
	Likes     int64     `json:"likes"`
	Comments  int64     `json:"comments"`
	Plays     *int64    `json:"plays"`
	Views     *int64    `json:"views"`
	Date      time.Time `json:"date"`
	IsVideo   bool      `json:"is_video"`
	MediaURL  string    `json:"media_url"`
	MediaURLs []string  `json:"media_urls"`
	Location  *string   `json:"location"`
	Hashtags  []string  `json:"hashtags"`
	Mentions  []string  `json:"mentions"`
}

// Story is one item of a user's current story reel
type Story struct {
	StoryID   string    `json:"story_id"`
	URL       string    `json:"url"`
	IsVideo   bool      `json:"is_video"`
	Date      time.Time `json:"date"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Highlight is a saved story album on a profile
type Highlight struct {
	HighlightID string `json:"highlight_id"`
	Title       string `json:"title"`
	CoverURL    string `json:"cover_url"`
	StoryCount  int    `json:"story_count"`
}

// Comment is a top level comment on a post
type Comment struct {
	CommentID    string    `json:"comment_id"`
	Username     string    `json:"username"`
	Text         string    `json:"text"`
	Likes        int64     `json:"likes"`
	Date         time.Time `json:"date"`
	RepliesCount int64     `json:"replies_count"`
}

// HashtagInfo is the public metadata of a hashtag
type HashtagInfo struct {
	Name      string `json:"name"`
	PostCount int64  `json:"post_count"`
}

// SearchResult is a condensed profile returned by profile search
type SearchResult struct {
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	ProfilePicURL string `json:"profile_pic_url"`
	IsVerified    bool   `json:"is_verified"`
	IsPrivate     bool   `json:"is_private"`
	Followers     int64  `json:"followers"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Detail    string    `json:"detail"`
	ErrorCode *string   `json:"error_code"`
	Timestamp time.Time `json:"timestamp"`
}

// NewErrorResponse stamps an error body with the current time. An empty
// code is serialized as null.
func NewErrorResponse(detail, code string) ErrorResponse {
	resp := ErrorResponse{Detail: detail, Timestamp: time.Now()}
	if code != "" {
		resp.ErrorCode = &code
	}
	return resp
}

// ProfileResponse is a profile with its most recent posts
type ProfileResponse struct {
	Profile     Profile `json:"profile"`
	RecentPosts []Post  `json:"recent_posts"`
}

// PostListResponse wraps a user's posts
type PostListResponse struct {
	Username   string `json:"username"`
	Posts      []Post `json:"posts"`
	TotalPosts int    `json:"total_posts"`
}

// HashtagCount is one entry of the analytics hashtag ranking
type HashtagCount struct {
	Hashtag string `json:"hashtag"`
	Count   int    `json:"count"`
}

// Analytics summarises engagement over a user's recent posts
type Analytics struct {
	Username         string         `json:"username"`
	Followers        int64          `json:"followers"`
	PostsAnalyzed    int            `json:"posts_analyzed"`
	AverageLikes     float64        `json:"average_likes"`
	AverageComments  float64        `json:"average_comments"`
	EngagementRate   float64        `json:"engagement_rate"`
	MostUsedHashtags []HashtagCount `json:"most_used_hashtags"`
	PostingFrequency float64        `json:"posting_frequency"`
}

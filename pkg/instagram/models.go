package instagram

import (
	"strings"
	"time"
)

// ProfileResponse is the body of the web profile and timeline endpoints
type ProfileResponse struct {
	RequiresToLogin bool   `json:"requires_to_login"`
	Data            Data   `json:"data"`
	Status          string `json:"status"`
}

// Data wraps the user information in the response
type Data struct {
	User *User `json:"user"`
}

// User represents an Instagram user profile
type User struct {
	ID                       string          `json:"id"`
	Username                 string          `json:"username"`
	FullName                 string          `json:"full_name"`
	Biography                string          `json:"biography"`
	EdgeFollowedBy           Count           `json:"edge_followed_by"`
	EdgeFollow               Count           `json:"edge_follow"`
	IsPrivate                bool            `json:"is_private"`
	IsVerified               bool            `json:"is_verified"`
	ProfilePicURL            string          `json:"profile_pic_url"`
	ProfilePicURLHD          string          `json:"profile_pic_url_hd"`
	ExternalURL              *string         `json:"external_url"`
	EdgeOwnerToTimelineMedia MediaConnection `json:"edge_owner_to_timeline_media"`
}

// PictureURL prefers the HD profile picture
func (u *User) PictureURL() string {
	if u.ProfilePicURLHD != "" {
		return u.ProfilePicURLHD
	}
	return u.ProfilePicURL
}

// Count is Instagram's {"count": n} wrapper
type Count struct {
	Count int64 `json:"count"`
}

// MediaConnection contains one page of a user's media
type MediaConnection struct {
	Count    int64    `json:"count"`
	PageInfo PageInfo `json:"page_info"`
	Edges    []Edge   `json:"edges"`
}

// PageInfo contains pagination information
type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor"`
}

// Edge wraps a single media node
type Edge struct {
	Node *Node `json:"node"`
}

// Typenames of media nodes. Newer endpoints prefix them with "XDT".
const (
	TypenameImage   = "GraphImage"
	TypenameVideo   = "GraphVideo"
	TypenameSidecar = "GraphSidecar"
)

// Node represents a single media item: a post or a carousel child
type Node struct {
	ID                    string             `json:"id"`
	Typename              string             `json:"__typename"`
	Shortcode             string             `json:"shortcode"`
	DisplayURL            string             `json:"display_url"`
	VideoURL              string             `json:"video_url"`
	IsVideo               bool               `json:"is_video"`
	TakenAtTimestamp      int64              `json:"taken_at_timestamp"`
	EdgeMediaToCaption    CaptionConnection  `json:"edge_media_to_caption"`
	EdgeLikedBy           Count              `json:"edge_liked_by"`
	EdgeMediaPreviewLike  Count              `json:"edge_media_preview_like"`
	EdgeMediaToComment    Count              `json:"edge_media_to_comment"`
	VideoViewCount        *int64             `json:"video_view_count"`
	VideoPlayCount        *int64             `json:"video_play_count"`
	Location              *Location          `json:"location"`
	EdgeSidecarToChildren *SidecarConnection `json:"edge_sidecar_to_children"`
	EdgeParentComments    *CommentConnection `json:"edge_media_to_parent_comment"`
}

// BaseTypename returns the typename without the XDT prefix
func (n *Node) BaseTypename() string {
	return strings.TrimPrefix(n.Typename, "XDT")
}

// Caption returns the text of the first caption edge
func (n *Node) Caption() string {
	if len(n.EdgeMediaToCaption.Edges) == 0 {
		return ""
	}
	return n.EdgeMediaToCaption.Edges[0].Node.Text
}

// Likes returns the like count. Timeline pages fill edge_liked_by while the
// post endpoint only fills edge_media_preview_like.
func (n *Node) Likes() int64 {
	return max(n.EdgeLikedBy.Count, n.EdgeMediaPreviewLike.Count)
}

// CommentCount returns the number of comments on the post
func (n *Node) CommentCount() int64 {
	if n.EdgeParentComments != nil && n.EdgeParentComments.Count > n.EdgeMediaToComment.Count {
		return n.EdgeParentComments.Count
	}
	return n.EdgeMediaToComment.Count
}

// TakenAt returns the creation time in UTC
func (n *Node) TakenAt() time.Time {
	return time.Unix(n.TakenAtTimestamp, 0).UTC()
}

// CaptionConnection holds caption edges
type CaptionConnection struct {
	Edges []CaptionEdge `json:"edges"`
}

// CaptionEdge wraps one caption
type CaptionEdge struct {
	Node struct {
		Text string `json:"text"`
	} `json:"node"`
}

// Location is the tagged place of a post
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SidecarConnection holds the children of a carousel post
type SidecarConnection struct {
	Edges []Edge `json:"edges"`
}

// PostResponse is the body of the single post query
type PostResponse struct {
	Data struct {
		ShortcodeMedia *Node `json:"shortcode_media"`
	} `json:"data"`
	Status string `json:"status"`
}

// CommentConnection contains one page of top level comments
type CommentConnection struct {
	Count    int64         `json:"count"`
	PageInfo PageInfo      `json:"page_info"`
	Edges    []CommentEdge `json:"edges"`
}

// CommentEdge wraps a single comment
type CommentEdge struct {
	Node *CommentNode `json:"node"`
}

// CommentNode is a single comment
type CommentNode struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"created_at"`
	Owner     struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"owner"`
	EdgeLikedBy          Count `json:"edge_liked_by"`
	EdgeThreadedComments Count `json:"edge_threaded_comments"`
}

// Created returns the comment time in UTC
func (c *CommentNode) Created() time.Time {
	return time.Unix(c.CreatedAt, 0).UTC()
}

// StoriesResponse is the body of the reels media endpoint
type StoriesResponse struct {
	ReelsMedia []Reel `json:"reels_media"`
	Status     string `json:"status"`
}

// Reel is one user's current story reel
type Reel struct {
	ID    string      `json:"id"`
	Items []StoryItem `json:"items"`
}

// Media types used by the private API
const (
	MediaTypeImage = 1
	MediaTypeVideo = 2
)

// StoryItem is one photo or video in a reel
type StoryItem struct {
	ID             string `json:"id"`
	TakenAt        int64  `json:"taken_at"`
	MediaType      int    `json:"media_type"`
	ImageVersions2 struct {
		Candidates []ImageCandidate `json:"candidates"`
	} `json:"image_versions2"`
	VideoVersions []ImageCandidate `json:"video_versions"`
}

// ImageCandidate is one rendition of an image or video
type ImageCandidate struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// IsVideo reports whether the story is a video
func (s *StoryItem) IsVideo() bool {
	return s.MediaType == MediaTypeVideo
}

// MediaURL returns the first video rendition for videos and the first
// image candidate otherwise. Instagram lists the largest rendition first.
func (s *StoryItem) MediaURL() string {
	if s.IsVideo() && len(s.VideoVersions) > 0 {
		return s.VideoVersions[0].URL
	}
	if len(s.ImageVersions2.Candidates) > 0 {
		return s.ImageVersions2.Candidates[0].URL
	}
	return ""
}

// Taken returns the story time in UTC
func (s *StoryItem) Taken() time.Time {
	return time.Unix(s.TakenAt, 0).UTC()
}

// HighlightsResponse is the body of the highlights tray endpoint
type HighlightsResponse struct {
	Tray   []HighlightItem `json:"tray"`
	Status string          `json:"status"`
}

// HighlightItem is one highlight album
type HighlightItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	MediaCount int    `json:"media_count"`
	CoverMedia struct {
		CroppedImageVersion struct {
			URL string `json:"url"`
		} `json:"cropped_image_version"`
	} `json:"cover_media"`
}

// HighlightID returns the numeric id without the "highlight:" prefix
func (h *HighlightItem) HighlightID() string {
	return strings.TrimPrefix(h.ID, "highlight:")
}

// HashtagResponse is the body of the tag info endpoint
type HashtagResponse struct {
	Data   *Hashtag `json:"data"`
	Status string   `json:"status"`
}

// Hashtag is the public metadata of a tag
type Hashtag struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MediaCount int64  `json:"media_count"`
}

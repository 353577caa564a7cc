package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"igapi/pkg/config"
	errs "igapi/pkg/errors"
	"igapi/pkg/logger"
	"igapi/pkg/ratelimit"
	"igapi/pkg/retry"
)

// Client talks to Instagram's web endpoints. Headers are fixed at
// construction, so one Client is shared by all requests.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	limiter    ratelimit.Limiter
	retry      *retry.Config
	loggedIn   bool
	logger     logger.Logger
}

// NewClient creates a client from the instagram and rate_limit sections
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	log = log.WithField("component", "instagram")

	headers := map[string]string{
		"User-Agent":       cfg.Instagram.UserAgent,
		"Accept":           "*/*",
		"Accept-Language":  "en-US,en;q=0.9",
		"X-IG-App-ID":      cfg.Instagram.AppID,
		"X-Requested-With": "XMLHttpRequest",
		"Referer":          BaseURL + "/",
	}
	if cookie := sessionCookie(cfg.Instagram.SessionID, cfg.Instagram.CSRFToken); cookie != "" {
		headers["Cookie"] = cookie
	}
	if cfg.Instagram.CSRFToken != "" {
		headers["X-CSRFToken"] = cfg.Instagram.CSRFToken
	}

	baseURL := BaseURL
	if cfg.Instagram.BaseURL != "" {
		baseURL = strings.TrimRight(cfg.Instagram.BaseURL, "/")
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Instagram.Timeout},
		headers:    headers,
		baseURL:    baseURL,
		limiter:    ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute),
		retry:      retry.FromConfig(&cfg.RateLimit, log),
		loggedIn:   cfg.Instagram.SessionID != "",
		logger:     log,
	}
}

func sessionCookie(sessionID, csrfToken string) string {
	var parts []string
	if sessionID != "" {
		parts = append(parts, "sessionid="+sessionID)
	}
	if csrfToken != "" {
		parts = append(parts, "csrftoken="+csrfToken)
	}
	return strings.Join(parts, "; ")
}

// LoggedIn reports whether the client carries a session cookie
func (c *Client) LoggedIn() bool {
	return c.loggedIn
}

// fetch performs one GET and returns the body of a successful response
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.NewError(errs.ErrorTypeUnknown, fmt.Sprintf("failed to create request: %v", err), 0)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.NewError(errs.ErrorTypeNetwork, fmt.Sprintf("network error: %v", err), 0)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewError(errs.ErrorTypeNetwork, fmt.Sprintf("failed to read response body: %v", err), resp.StatusCode)
	}
	return body, nil
}

// getJSON fetches url with retries and decodes the body into target
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	body, err := retry.DoWithResult(ctx, func() ([]byte, error) {
		return c.fetch(ctx, url)
	}, c.retry)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return errs.NewError(errs.ErrorTypeParsing, fmt.Sprintf("failed to parse JSON: %v", err), 0)
	}
	return nil
}

// checkResponseStatus maps HTTP status codes onto upstream error types
func (c *Client) checkResponseStatus(resp *http.Response) error {
	status := resp.StatusCode
	switch {
	case status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errs.NewError(errs.ErrorTypeAuth, "authentication required", status)
	case status == http.StatusNotFound:
		return errs.NewError(errs.ErrorTypeNotFound, "resource not found", status)
	case status == http.StatusTooManyRequests:
		c.logger.Warn("rate limit exceeded")
		return errs.NewError(errs.ErrorTypeRateLimit, "rate limit exceeded", status)
	case status >= 500:
		return errs.NewError(errs.ErrorTypeServerError, "server error", status)
	default:
		return errs.NewError(errs.ErrorTypeUnknown, fmt.Sprintf("unexpected status code: %d", status), status)
	}
}

// FetchProfile fetches a user's profile including the first page of posts
func (c *Client) FetchProfile(ctx context.Context, username string) (*User, error) {
	var response ProfileResponse
	if err := c.getJSON(ctx, ProfileURL(c.baseURL, username), &response); err != nil {
		return nil, err
	}

	if response.RequiresToLogin {
		return nil, errs.NewError(errs.ErrorTypeAuth, "Instagram requires authentication to view this profile", http.StatusUnauthorized)
	}
	if response.Data.User == nil {
		return nil, errs.NewError(errs.ErrorTypeNotFound, fmt.Sprintf("profile %q does not exist", username), http.StatusNotFound)
	}
	return response.Data.User, nil
}

// FetchPost fetches a single post by shortcode
func (c *Client) FetchPost(ctx context.Context, shortcode string) (*Node, error) {
	var response PostResponse
	if err := c.getJSON(ctx, PostURL(c.baseURL, shortcode), &response); err != nil {
		return nil, err
	}
	if response.Data.ShortcodeMedia == nil {
		return nil, errs.NewError(errs.ErrorTypeNotFound, fmt.Sprintf("post %q does not exist", shortcode), http.StatusNotFound)
	}
	return response.Data.ShortcodeMedia, nil
}

// UserMedia iterates over a user's posts, newest first. The first page is
// the one embedded in the profile; later pages are fetched as the caller
// keeps ranging. A fetch error is yielded once and ends the sequence.
func (c *Client) UserMedia(ctx context.Context, user *User) iter.Seq2[*Node, error] {
	return func(yield func(*Node, error) bool) {
		page := user.EdgeOwnerToTimelineMedia
		for {
			for _, edge := range page.Edges {
				if !yield(edge.Node, nil) {
					return
				}
			}
			if !page.PageInfo.HasNextPage || page.PageInfo.EndCursor == "" {
				return
			}

			var response ProfileResponse
			url := MediaURL(c.baseURL, user.ID, page.PageInfo.EndCursor, MaxPageSize)
			if err := c.getJSON(ctx, url, &response); err != nil {
				yield(nil, err)
				return
			}
			if response.Data.User == nil {
				return
			}
			page = response.Data.User.EdgeOwnerToTimelineMedia
		}
	}
}

// SidecarChildren returns the media of a carousel post. Timeline nodes
// carry no children, so those are fetched through the post endpoint.
func (c *Client) SidecarChildren(ctx context.Context, node *Node) ([]*Node, error) {
	sidecar := node.EdgeSidecarToChildren
	if sidecar == nil {
		full, err := c.FetchPost(ctx, node.Shortcode)
		if err != nil {
			return nil, err
		}
		sidecar = full.EdgeSidecarToChildren
	}
	if sidecar == nil {
		return nil, errs.NewError(errs.ErrorTypeParsing, fmt.Sprintf("post %q has no carousel children", node.Shortcode), 0)
	}

	children := make([]*Node, 0, len(sidecar.Edges))
	for _, edge := range sidecar.Edges {
		if edge.Node != nil {
			children = append(children, edge.Node)
		}
	}
	return children, nil
}

// PostComments iterates over a post's top level comments, oldest page
// first, starting with any page embedded in the post.
func (c *Client) PostComments(ctx context.Context, post *Node) iter.Seq2[*CommentNode, error] {
	return func(yield func(*CommentNode, error) bool) {
		var page CommentConnection
		if post.EdgeParentComments != nil {
			page = *post.EdgeParentComments
		} else {
			page.PageInfo = PageInfo{HasNextPage: true}
		}

		for {
			for _, edge := range page.Edges {
				if !yield(edge.Node, nil) {
					return
				}
			}
			if !page.PageInfo.HasNextPage {
				return
			}

			var response PostResponse
			url := CommentsURL(c.baseURL, post.Shortcode, page.PageInfo.EndCursor, MaxPageSize)
			if err := c.getJSON(ctx, url, &response); err != nil {
				yield(nil, err)
				return
			}
			media := response.Data.ShortcodeMedia
			if media == nil || media.EdgeParentComments == nil {
				return
			}
			next := *media.EdgeParentComments
			if next.PageInfo.EndCursor == page.PageInfo.EndCursor {
				next.PageInfo.HasNextPage = false
			}
			page = next
		}
	}
}

// FetchStories returns the items of a user's current story reel. Stories
// are only served to logged in sessions.
func (c *Client) FetchStories(ctx context.Context, userID string) ([]StoryItem, error) {
	if !c.loggedIn {
		return nil, errs.NewError(errs.ErrorTypeAuth, "stories require a logged in session", http.StatusUnauthorized)
	}

	var response StoriesResponse
	if err := c.getJSON(ctx, StoriesURL(c.baseURL, userID), &response); err != nil {
		return nil, err
	}

	var items []StoryItem
	for _, reel := range response.ReelsMedia {
		items = append(items, reel.Items...)
	}
	return items, nil
}

// FetchHighlights returns a user's highlight albums
func (c *Client) FetchHighlights(ctx context.Context, userID string) ([]HighlightItem, error) {
	var response HighlightsResponse
	if err := c.getJSON(ctx, HighlightsURL(c.baseURL, userID), &response); err != nil {
		return nil, err
	}
	return response.Tray, nil
}

// FetchHashtag returns the metadata of a hashtag
func (c *Client) FetchHashtag(ctx context.Context, name string) (*Hashtag, error) {
	var response HashtagResponse
	if err := c.getJSON(ctx, HashtagURL(c.baseURL, name), &response); err != nil {
		return nil, err
	}
	if response.Data == nil {
		return nil, errs.NewError(errs.ErrorTypeNotFound, fmt.Sprintf("hashtag %q does not exist", name), http.StatusNotFound)
	}
	return response.Data, nil
}

package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	errs "igapi/pkg/errors"
	"igapi/pkg/instagram"
	"igapi/pkg/logger"
	"igapi/pkg/models"
	"igapi/pkg/textutil"
)

// Service maps Instagram data onto the API models
type Service struct {
	client InstagramClient
	logger logger.Logger
}

// New creates a Service around a shared client
func New(client InstagramClient, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Service{
		client: client,
		logger: log.WithField("component", "scraper"),
	}
}

// translate maps a client failure onto a domain error. notFound builds
// the error for an upstream not_found; without it that becomes a
// connection error like every other unexpected failure.
func (s *Service) translate(err error, op string, notFound func() *errs.APIError) *errs.APIError {
	var apiErr *errs.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var upstream *errs.Error
	if errors.As(err, &upstream) {
		switch upstream.Type {
		case errs.ErrorTypeNotFound:
			if notFound != nil {
				return notFound()
			}
		case errs.ErrorTypeRateLimit:
			return errs.RateLimit()
		}
	}

	s.logger.WithError(err).ErrorWithFields("instagram request failed", map[string]interface{}{
		"operation": op,
	})
	return errs.ConnectionError()
}

func isNotFound(err error) bool {
	var upstream *errs.Error
	return errors.As(err, &upstream) && upstream.Type == errs.ErrorTypeNotFound
}

func (s *Service) fetchUser(ctx context.Context, username, op string) (*instagram.User, error) {
	user, err := s.client.FetchProfile(ctx, username)
	if err != nil {
		return nil, s.translate(err, op, func() *errs.APIError { return errs.ProfileNotFound(username) })
	}
	return user, nil
}

// GetProfile returns a user's public profile
func (s *Service) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	user, err := s.fetchUser(ctx, username, "get_profile")
	if err != nil {
		return nil, err
	}
	profile := toProfile(user)
	return &profile, nil
}

func toProfile(user *instagram.User) models.Profile {
	return models.Profile{
		Username:      user.Username,
		FullName:      textutil.SanitizeText(user.FullName),
		Biography:     textutil.CleanCaption(user.Biography),
		Followers:     user.EdgeFollowedBy.Count,
		Followees:     user.EdgeFollow.Count,
		PostsCount:    user.EdgeOwnerToTimelineMedia.Count,
		IsPrivate:     user.IsPrivate,
		ProfilePicURL: user.PictureURL(),
		ExternalURL:   nonEmpty(user.ExternalURL),
		IsVerified:    user.IsVerified,
	}
}

// GetUserPosts returns up to maxPosts of a user's most recent posts. Private
// profiles fail before any post is requested.
func (s *Service) GetUserPosts(ctx context.Context, username string, maxPosts int) ([]models.Post, error) {
	user, err := s.fetchUser(ctx, username, "get_user_posts")
	if err != nil {
		return nil, err
	}
	if user.IsPrivate {
		return nil, errs.PrivateProfile(username)
	}

	posts := make([]models.Post, 0, max(min(maxPosts, 100), 0))
	if maxPosts <= 0 {
		return posts, nil
	}

	for node, err := range s.client.UserMedia(ctx, user) {
		if err != nil {
			return nil, s.translate(err, "get_user_posts", func() *errs.APIError { return errs.ProfileNotFound(username) })
		}
		if node == nil || node.Shortcode == "" {
			s.logger.WarnWithFields("skipping post without shortcode", map[string]interface{}{
				"username": username,
			})
			continue
		}

		posts = append(posts, s.toPost(ctx, node))
		if len(posts) >= maxPosts {
			break
		}
	}
	return posts, nil
}

// GetPostByShortcode returns a single post
func (s *Service) GetPostByShortcode(ctx context.Context, shortcode string) (*models.Post, error) {
	node, err := s.client.FetchPost(ctx, shortcode)
	if err != nil {
		return nil, s.translate(err, "get_post", func() *errs.APIError { return errs.PostNotFound(shortcode) })
	}
	post := s.toPost(ctx, node)
	return &post, nil
}

// toPost converts a node, degrading to a minimal record on failure
func (s *Service) toPost(ctx context.Context, node *instagram.Node) models.Post {
	post, err := s.convertPost(ctx, node)
	if err != nil {
		s.logger.WithError(err).WarnWithFields("post conversion failed, returning minimal record", map[string]interface{}{
			"shortcode": node.Shortcode,
		})
		return minimalPost(node)
	}
	return post
}

func (s *Service) convertPost(ctx context.Context, node *instagram.Node) (models.Post, error) {
	m, err := resolveMedia(node)
	if err != nil {
		return models.Post{}, err
	}
	urls := m.urls(ctx, s)

	caption := textutil.CleanCaption(node.Caption())
	post := models.Post{
		Shortcode: node.Shortcode,
		URL:       instagram.Permalink(node.Shortcode),
		Caption:   caption,
		Likes:     node.Likes(),
		Comments:  node.CommentCount(),
		Date:      node.TakenAt(),
		IsVideo:   node.IsVideo,
		MediaURLs: urls,
		Hashtags:  textutil.ExtractHashtags(caption),
		Mentions:  textutil.ExtractMentions(caption),
	}
	if len(urls) > 0 {
		post.MediaURL = urls[0]
	}
	if node.Location != nil && node.Location.Name != "" {
		name := node.Location.Name
		post.Location = &name
	}
	if node.IsVideo {
		post.Plays = copyInt(node.VideoPlayCount)
		post.Views = copyInt(node.VideoViewCount)
	}
	return post, nil
}

func minimalPost(node *instagram.Node) models.Post {
	return models.Post{
		Shortcode: node.Shortcode,
		URL:       instagram.Permalink(node.Shortcode),
		Date:      node.TakenAt(),
		IsVideo:   node.IsVideo,
		MediaURLs: []string{},
		Hashtags:  []string{},
		Mentions:  []string{},
	}
}

// GetUserStories returns a user's current stories. Only a missing or
// private profile is an error; anything else yields an empty list.
func (s *Service) GetUserStories(ctx context.Context, username string) ([]models.Story, error) {
	stories := []models.Story{}

	user, err := s.client.FetchProfile(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.ProfileNotFound(username)
		}
		s.logger.WithError(err).WarnWithFields("stories unavailable", map[string]interface{}{"username": username})
		return stories, nil
	}
	if user.IsPrivate {
		return nil, errs.PrivateProfile(username)
	}

	items, err := s.client.FetchStories(ctx, user.ID)
	if err != nil {
		s.logger.WithError(err).WarnWithFields("stories unavailable", map[string]interface{}{"username": username})
		return stories, nil
	}

	for _, item := range items {
		date := item.Taken()
		stories = append(stories, models.Story{
			StoryID:   item.ID,
			URL:       item.MediaURL(),
			IsVideo:   item.IsVideo(),
			Date:      date,
			ExpiresAt: endOfDay(date),
		})
	}
	return stories, nil
}

// endOfDay returns 23:59:59 on the same calendar day as t
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// GetUserHighlights returns a user's highlight albums; failures other than
// a missing profile yield an empty list
func (s *Service) GetUserHighlights(ctx context.Context, username string) ([]models.Highlight, error) {
	highlights := []models.Highlight{}

	user, err := s.client.FetchProfile(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.ProfileNotFound(username)
		}
		s.logger.WithError(err).WarnWithFields("highlights unavailable", map[string]interface{}{"username": username})
		return highlights, nil
	}

	tray, err := s.client.FetchHighlights(ctx, user.ID)
	if err != nil {
		s.logger.WithError(err).WarnWithFields("highlights unavailable", map[string]interface{}{"username": username})
		return highlights, nil
	}

	for _, h := range tray {
		highlights = append(highlights, models.Highlight{
			HighlightID: h.HighlightID(),
			Title:       h.Title,
			CoverURL:    h.CoverMedia.CroppedImageVersion.URL,
			StoryCount:  h.MediaCount,
		})
	}
	return highlights, nil
}

// GetPostComments returns up to maxComments top level comments. Only a
// missing post is an error; a failed page discards the partial result.
func (s *Service) GetPostComments(ctx context.Context, shortcode string, maxComments int) ([]models.Comment, error) {
	comments := []models.Comment{}

	post, err := s.client.FetchPost(ctx, shortcode)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.PostNotFound(shortcode)
		}
		s.logger.WithError(err).WarnWithFields("comments unavailable", map[string]interface{}{"shortcode": shortcode})
		return comments, nil
	}
	if maxComments <= 0 {
		return comments, nil
	}

	for c, err := range s.client.PostComments(ctx, post) {
		if err != nil {
			s.logger.WithError(err).WarnWithFields("comments unavailable", map[string]interface{}{
				"shortcode": shortcode,
				"collected": len(comments),
			})
			return []models.Comment{}, nil
		}
		if c == nil || c.ID == "" {
			s.logger.WarnWithFields("skipping malformed comment", map[string]interface{}{"shortcode": shortcode})
			continue
		}

		comments = append(comments, models.Comment{
			CommentID:    c.ID,
			Username:     c.Owner.Username,
			Text:         textutil.SanitizeText(c.Text),
			Likes:        c.EdgeLikedBy.Count,
			Date:         c.Created(),
			RepliesCount: c.EdgeThreadedComments.Count,
		})
		if len(comments) >= maxComments {
			break
		}
	}
	return comments, nil
}

// GetHashtagInfo returns a hashtag's post count. Any failure is a
// connection error.
func (s *Service) GetHashtagInfo(ctx context.Context, name string) (*models.HashtagInfo, error) {
	name = strings.TrimLeft(name, "#")

	tag, err := s.client.FetchHashtag(ctx, name)
	if err != nil {
		s.logger.WithError(err).ErrorWithFields("hashtag lookup failed", map[string]interface{}{"hashtag": name})
		return nil, errs.ConnectionError()
	}

	info := models.HashtagInfo{Name: tag.Name, PostCount: tag.MediaCount}
	if info.Name == "" {
		info.Name = name
	}
	return &info, nil
}

// SearchProfiles looks query up as an exact username. It returns at most
// one result and never fails.
func (s *Service) SearchProfiles(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	results := []models.SearchResult{}

	username := instagram.SanitizeUsername(query)
	if maxResults <= 0 || !textutil.ValidateUsername(username) {
		return results, nil
	}

	user, err := s.client.FetchProfile(ctx, username)
	if err != nil {
		s.logger.WithError(err).DebugWithFields("no exact profile match", map[string]interface{}{"query": query})
		return results, nil
	}

	results = append(results, models.SearchResult{
		Username:      user.Username,
		FullName:      textutil.SanitizeText(user.FullName),
		ProfilePicURL: user.PictureURL(),
		IsVerified:    user.IsVerified,
		IsPrivate:     user.IsPrivate,
		Followers:     user.EdgeFollowedBy.Count,
	})
	return results, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func copyInt(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

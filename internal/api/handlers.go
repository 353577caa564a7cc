package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"igapi/pkg/analytics"
	errs "igapi/pkg/errors"
	"igapi/pkg/logger"
	"igapi/pkg/models"
	"igapi/pkg/textutil"
)

// Version is reported by the root endpoint
const Version = "2.0.0"

// Service is the scraper surface the handlers call. *scraper.Service
// implements it.
type Service interface {
	GetProfile(ctx context.Context, username string) (*models.Profile, error)
	GetUserPosts(ctx context.Context, username string, maxPosts int) ([]models.Post, error)
	GetPostByShortcode(ctx context.Context, shortcode string) (*models.Post, error)
	GetUserStories(ctx context.Context, username string) ([]models.Story, error)
	GetUserHighlights(ctx context.Context, username string) ([]models.Highlight, error)
	GetPostComments(ctx context.Context, shortcode string, maxComments int) ([]models.Comment, error)
	GetHashtagInfo(ctx context.Context, name string) (*models.HashtagInfo, error)
	SearchProfiles(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
}

// Handler serves the API routes
type Handler struct {
	service Service
	logger  logger.Logger
	now     func() time.Time
}

// NewHandler creates a Handler
func NewHandler(service Service, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Handler{
		service: service,
		logger:  log.WithField("component", "api"),
		now:     time.Now,
	}
}

type statusResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

type bannerResponse struct {
	Message string `json:"message"`
	API     string `json:"api"`
}

func (h *Handler) banner(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, bannerResponse{Message: "Instagram Scraper API", API: prefix})
	}
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Message: "Instagram Scraper API is running",
		Version: Version,
		Status:  "active",
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Service:   "instagram-scraper-api",
		Timestamp: h.now().UTC(),
	})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameParam(w, r)
	if !ok {
		return
	}
	includePosts, err := boolQuery(r, "include_posts", true)
	if err != nil {
		writeValidation(w, err.Error())
		return
	}
	maxPosts, err := intQuery(r, "max_posts", 12, 1, 50)
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	profile, err := h.service.GetProfile(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	resp := models.ProfileResponse{Profile: *profile, RecentPosts: []models.Post{}}
	if includePosts && !profile.IsPrivate {
		posts, err := h.service.GetUserPosts(r.Context(), username, maxPosts)
		if err != nil {
			h.logger.WithError(err).WarnWithFields("could not load recent posts", map[string]interface{}{
				"username": username,
			})
		} else {
			resp.RecentPosts = posts
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getPosts(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameParam(w, r)
	if !ok {
		return
	}
	maxPosts, err := intQuery(r, "max_posts", 50, 1, 100)
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	posts, err := h.service.GetUserPosts(r.Context(), username, maxPosts)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, models.PostListResponse{
		Username:   username,
		Posts:      posts,
		TotalPosts: len(posts),
	})
}

func (h *Handler) getPostByURL(w http.ResponseWriter, r *http.Request) {
	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if rawURL == "" {
		writeValidation(w, "url is required")
		return
	}

	shortcode, err := textutil.ExtractShortcode(rawURL)
	if err == nil && !textutil.ValidateShortcode(shortcode) {
		err = errs.InvalidURL(rawURL)
	}
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.writePost(w, r, shortcode)
}

func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	shortcode, ok := shortcodeParam(w, r)
	if !ok {
		return
	}
	h.writePost(w, r, shortcode)
}

func (h *Handler) writePost(w http.ResponseWriter, r *http.Request, shortcode string) {
	post, err := h.service.GetPostByShortcode(r.Context(), shortcode)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) getStories(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameParam(w, r)
	if !ok {
		return
	}

	stories, err := h.service.GetUserStories(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stories)
}

func (h *Handler) getHighlights(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameParam(w, r)
	if !ok {
		return
	}

	highlights, err := h.service.GetUserHighlights(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, highlights)
}

func (h *Handler) getComments(w http.ResponseWriter, r *http.Request) {
	shortcode, ok := shortcodeParam(w, r)
	if !ok {
		return
	}
	maxComments, err := intQuery(r, "max_comments", 50, 1, 200)
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	comments, err := h.service.GetPostComments(r.Context(), shortcode, maxComments)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// getHashtag answers 404 for every failure, upstream outages included.
func (h *Handler) getHashtag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if n := utf8.RuneCountInString(name); n < 1 || n > 100 {
		writeValidation(w, "hashtag name must be between 1 and 100 characters")
		return
	}

	info, err := h.service.GetHashtagInfo(r.Context(), name)
	if err != nil {
		h.logger.WithError(err).WarnWithFields("hashtag lookup failed", map[string]interface{}{
			"hashtag": name,
		})
		writeError(w, http.StatusNotFound, errs.CodeNotFound, "Hashtag not found or unavailable")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if n := utf8.RuneCountInString(query); n < 1 || n > 100 {
		writeValidation(w, "query must be between 1 and 100 characters")
		return
	}
	maxResults, err := intQuery(r, "max_results", 20, 1, 50)
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	results, err := h.service.SearchProfiles(r.Context(), query, maxResults)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	username, ok := usernameParam(w, r)
	if !ok {
		return
	}
	days, err := intQuery(r, "days", 30, 1, 90)
	if err != nil {
		writeValidation(w, err.Error())
		return
	}

	profile, err := h.service.GetProfile(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if profile.IsPrivate {
		writeServiceError(w, r, h.logger, errs.PrivateProfile(username))
		return
	}

	posts, err := h.service.GetUserPosts(r.Context(), username, min(50, days))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics.Compute(profile, posts, days))
}

func usernameParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	username := chi.URLParam(r, "username")
	if !textutil.ValidateUsername(username) {
		writeValidation(w, "Invalid username format")
		return "", false
	}
	return username, true
}

func shortcodeParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	shortcode := chi.URLParam(r, "shortcode")
	if !textutil.ValidateShortcode(shortcode) {
		writeValidation(w, "Invalid shortcode format")
		return "", false
	}
	return shortcode, true
}

func intQuery(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s must be between %d and %d", name, lo, hi)
	}
	return n, nil
}

func boolQuery(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	switch strings.ToLower(raw) {
	case "":
		return def, nil
	case "1", "t", "true", "yes", "on":
		return true, nil
	case "0", "f", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("%s must be a boolean", name)
}

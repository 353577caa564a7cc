package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igapi/pkg/config"
	errs "igapi/pkg/errors"
	"igapi/pkg/logger"
	"igapi/pkg/ratelimit"
	"igapi/pkg/retry"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*config.Config)) (*Client, *logger.TestLogger) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	for _, m := range mutate {
		m(cfg)
	}

	log := logger.NewTestLogger()
	client := NewClient(cfg, log)
	client.baseURL = server.URL
	client.limiter = ratelimit.NewTokenBucket(1000, time.Minute)
	client.retry = &retry.Config{
		MaxAttempts: 3,
		Backoff:     &retry.ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     retry.DefaultRetryIf,
		Logger:      log,
	}
	return client, log
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func upstreamType(t *testing.T, err error) errs.ErrorType {
	t.Helper()
	var upstream *errs.Error
	require.ErrorAs(t, err, &upstream)
	return upstream.Type
}

func TestNewClientHeaders(t *testing.T) {
	var got http.Header
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"data":{"user":{"id":"1","username":"alice"}}}`))
	}, func(c *config.Config) {
		c.Instagram.SessionID = "sess"
		c.Instagram.CSRFToken = "tok"
	})

	_, err := client.FetchProfile(context.Background(), "alice")
	require.NoError(t, err)

	assert.True(t, client.LoggedIn())
	assert.Contains(t, got.Get("User-Agent"), "Mozilla")
	assert.Equal(t, "936619743392459", got.Get("X-IG-App-ID"))
	assert.Equal(t, "sessionid=sess; csrftoken=tok", got.Get("Cookie"))
	assert.Equal(t, "tok", got.Get("X-CSRFToken"))
}

func TestAnonymousClientSendsNoCookie(t *testing.T) {
	var cookie string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		cookie = r.Header.Get("Cookie")
		w.Write([]byte(`{"data":{"user":{"id":"1"}}}`))
	})

	_, err := client.FetchProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, client.LoggedIn())
	assert.Empty(t, cookie)
}

func TestNewClientBaseURL(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, BaseURL, NewClient(cfg, logger.NewNopLogger()).baseURL)

	cfg.Instagram.BaseURL = "http://proxy.local:8080/"
	assert.Equal(t, "http://proxy.local:8080", NewClient(cfg, logger.NewNopLogger()).baseURL)
}

func TestCheckResponseStatus(t *testing.T) {
	tests := []struct {
		status int
		want   errs.ErrorType
	}{
		{http.StatusUnauthorized, errs.ErrorTypeAuth},
		{http.StatusForbidden, errs.ErrorTypeAuth},
		{http.StatusNotFound, errs.ErrorTypeNotFound},
		{http.StatusTooManyRequests, errs.ErrorTypeRateLimit},
		{http.StatusBadGateway, errs.ErrorTypeServerError},
		{http.StatusTeapot, errs.ErrorTypeUnknown},
	}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := client.checkResponseStatus(&http.Response{StatusCode: tt.status})
			assert.Equal(t, tt.want, upstreamType(t, err))
		})
	}
	assert.NoError(t, client.checkResponseStatus(&http.Response{StatusCode: http.StatusOK}))
}

func TestFetchProfile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, ProfileEndpoint, r.URL.Path)
			assert.Equal(t, "alice", r.URL.Query().Get("username"))
			w.Write([]byte(`{"status":"ok","data":{"user":{
				"id":"42","username":"alice","full_name":"Alice","biography":"hi",
				"edge_followed_by":{"count":1500},"edge_follow":{"count":12},
				"is_private":false,"is_verified":true,
				"profile_pic_url":"https://cdn/p.jpg","profile_pic_url_hd":"https://cdn/hd.jpg",
				"external_url":"https://alice.example",
				"edge_owner_to_timeline_media":{"count":3,"page_info":{"has_next_page":false},"edges":[]}
			}}}`))
		})

		user, err := client.FetchProfile(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "42", user.ID)
		assert.Equal(t, int64(1500), user.EdgeFollowedBy.Count)
		assert.Equal(t, int64(3), user.EdgeOwnerToTimelineMedia.Count)
		assert.Equal(t, "https://cdn/hd.jpg", user.PictureURL())
		require.NotNil(t, user.ExternalURL)
		assert.Equal(t, "https://alice.example", *user.ExternalURL)
	})

	t.Run("missing user", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"user":null},"status":"ok"}`))
		})
		_, err := client.FetchProfile(context.Background(), "ghost")
		assert.Equal(t, errs.ErrorTypeNotFound, upstreamType(t, err))
	})

	t.Run("404", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := client.FetchProfile(context.Background(), "ghost")
		assert.Equal(t, errs.ErrorTypeNotFound, upstreamType(t, err))
	})

	t.Run("requires login", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"requires_to_login":true}`))
		})
		_, err := client.FetchProfile(context.Background(), "alice")
		assert.Equal(t, errs.ErrorTypeAuth, upstreamType(t, err))
	})

	t.Run("invalid json", func(t *testing.T) {
		client, log := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>login</html>`))
		})
		_, err := client.FetchProfile(context.Background(), "alice")
		assert.Equal(t, errs.ErrorTypeParsing, upstreamType(t, err))
		assert.True(t, log.HasMessage("failed to parse JSON response"))
	})
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":{"user":{"id":"7"}}}`))
	})

	user, err := client.FetchProfile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "7", user.ID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRateLimitIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FetchProfile(context.Background(), "alice")
	assert.Equal(t, errs.ErrorTypeRateLimit, upstreamType(t, err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchPost(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PostQueryHash, r.URL.Query().Get("query_hash"))
		var vars map[string]string
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("variables")), &vars))
		if vars["shortcode"] != "ABCDEFGHIJK" {
			w.Write([]byte(`{"data":{"shortcode_media":null},"status":"ok"}`))
			return
		}
		w.Write([]byte(`{"data":{"shortcode_media":{
			"__typename":"GraphVideo","shortcode":"ABCDEFGHIJK","is_video":true,
			"display_url":"https://cdn/d.jpg","video_url":"https://cdn/v.mp4",
			"taken_at_timestamp":1700000000,
			"edge_media_to_caption":{"edges":[{"node":{"text":"hello #go"}}]},
			"edge_media_preview_like":{"count":10},
			"edge_media_to_parent_comment":{"count":4,"page_info":{"has_next_page":false},"edges":[]},
			"video_view_count":99,
			"location":{"id":"1","name":"Oslo"}
		}}}`))
	})

	node, err := client.FetchPost(context.Background(), "ABCDEFGHIJK")
	require.NoError(t, err)
	assert.Equal(t, TypenameVideo, node.BaseTypename())
	assert.Equal(t, "hello #go", node.Caption())
	assert.Equal(t, int64(10), node.Likes())
	assert.Equal(t, int64(4), node.CommentCount())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), node.TakenAt())
	require.NotNil(t, node.VideoViewCount)
	assert.Equal(t, int64(99), *node.VideoViewCount)
	assert.Nil(t, node.VideoPlayCount)
	assert.Equal(t, "Oslo", node.Location.Name)

	_, err = client.FetchPost(context.Background(), "ZZZZZZZZZZZ")
	assert.Equal(t, errs.ErrorTypeNotFound, upstreamType(t, err))
}

func TestUserMediaPaginates(t *testing.T) {
	var pages atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		var vars map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("variables")), &vars))
		assert.Equal(t, "42", vars["id"])

		switch vars["after"] {
		case "c1":
			w.Write([]byte(`{"data":{"user":{"edge_owner_to_timeline_media":{
				"page_info":{"has_next_page":true,"end_cursor":"c2"},
				"edges":[{"node":{"shortcode":"p3"}}]}}}}`))
		default:
			w.Write([]byte(`{"data":{"user":{"edge_owner_to_timeline_media":{
				"page_info":{"has_next_page":false},
				"edges":[{"node":{"shortcode":"p4"}}]}}}}`))
		}
	})

	user := &User{
		ID: "42",
		EdgeOwnerToTimelineMedia: MediaConnection{
			PageInfo: PageInfo{HasNextPage: true, EndCursor: "c1"},
			Edges:    []Edge{{Node: &Node{Shortcode: "p1"}}, {Node: &Node{Shortcode: "p2"}}},
		},
	}

	var got []string
	for node, err := range client.UserMedia(context.Background(), user) {
		require.NoError(t, err)
		got = append(got, node.Shortcode)
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, got)
	assert.Equal(t, int32(2), pages.Load())
}

func TestUserMediaStopsEarly(t *testing.T) {
	var pages atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	user := &User{
		ID: "42",
		EdgeOwnerToTimelineMedia: MediaConnection{
			PageInfo: PageInfo{HasNextPage: true, EndCursor: "c1"},
			Edges:    []Edge{{Node: &Node{Shortcode: "p1"}}, {Node: &Node{Shortcode: "p2"}}},
		},
	}

	count := 0
	for range client.UserMedia(context.Background(), user) {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
	assert.Equal(t, int32(0), pages.Load(), "no page is fetched when the caller stops")
}

func TestUserMediaYieldsFetchError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	user := &User{
		ID:                       "42",
		EdgeOwnerToTimelineMedia: MediaConnection{PageInfo: PageInfo{HasNextPage: true, EndCursor: "c1"}},
	}

	var errsSeen []error
	for node, err := range client.UserMedia(context.Background(), user) {
		assert.Nil(t, node)
		errsSeen = append(errsSeen, err)
	}
	require.Len(t, errsSeen, 1)
	assert.Equal(t, errs.ErrorTypeRateLimit, upstreamType(t, errsSeen[0]))
}

func TestSidecarChildren(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"shortcode_media":{"__typename":"GraphSidecar","shortcode":"CAROUSEL123",
			"edge_sidecar_to_children":{"edges":[
				{"node":{"__typename":"GraphImage","display_url":"https://cdn/1.jpg"}},
				{"node":{"__typename":"GraphVideo","is_video":true,"video_url":"https://cdn/2.mp4"}}
			]}}}}`))
	})

	t.Run("embedded children", func(t *testing.T) {
		node := &Node{EdgeSidecarToChildren: &SidecarConnection{Edges: []Edge{{Node: &Node{DisplayURL: "a"}}, {Node: nil}}}}
		children, err := client.SidecarChildren(context.Background(), node)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, "a", children[0].DisplayURL)
	})

	t.Run("fetched children", func(t *testing.T) {
		children, err := client.SidecarChildren(context.Background(), &Node{Shortcode: "CAROUSEL123"})
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, "https://cdn/2.mp4", children[1].VideoURL)
	})
}

func TestPostComments(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, CommentsQueryHash, r.URL.Query().Get("query_hash"))
		w.Write([]byte(`{"data":{"shortcode_media":{"edge_media_to_parent_comment":{
			"count":3,"page_info":{"has_next_page":false,"end_cursor":"c2"},
			"edges":[{"node":{"id":"3","text":"third","created_at":1700000000,
				"owner":{"username":"carol"},"edge_liked_by":{"count":2},
				"edge_threaded_comments":{"count":1}}}]}}}}`))
	})

	post := &Node{
		Shortcode: "ABCDEFGHIJK",
		EdgeParentComments: &CommentConnection{
			PageInfo: PageInfo{HasNextPage: true, EndCursor: "c1"},
			Edges: []CommentEdge{
				{Node: &CommentNode{ID: "1", Text: "first"}},
				{Node: &CommentNode{ID: "2", Text: "second"}},
			},
		},
	}

	var got []*CommentNode
	for c, err := range client.PostComments(context.Background(), post) {
		require.NoError(t, err)
		got = append(got, c)
	}
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[2].Text)
	assert.Equal(t, "carol", got[2].Owner.Username)
	assert.Equal(t, int64(1), got[2].EdgeThreadedComments.Count)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), got[2].Created())
}

func TestFetchStories(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, StoriesEndpoint, r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("reel_ids"))
		w.Write([]byte(`{"status":"ok","reels_media":[{"id":"42","items":[
			{"id":"s1","taken_at":1700000000,"media_type":1,
			 "image_versions2":{"candidates":[{"url":"https://cdn/s1.jpg"}]}},
			{"id":"s2","taken_at":1700000100,"media_type":2,
			 "image_versions2":{"candidates":[{"url":"https://cdn/s2.jpg"}]},
			 "video_versions":[{"url":"https://cdn/s2.mp4"}]}
		]}]}`))
	}

	t.Run("logged in", func(t *testing.T) {
		client, _ := newTestClient(t, handler, func(c *config.Config) { c.Instagram.SessionID = "sess" })
		items, err := client.FetchStories(context.Background(), "42")
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.False(t, items[0].IsVideo())
		assert.Equal(t, "https://cdn/s1.jpg", items[0].MediaURL())
		assert.True(t, items[1].IsVideo())
		assert.Equal(t, "https://cdn/s2.mp4", items[1].MediaURL())
	})

	t.Run("anonymous", func(t *testing.T) {
		client, _ := newTestClient(t, handler)
		_, err := client.FetchStories(context.Background(), "42")
		assert.Equal(t, errs.ErrorTypeAuth, upstreamType(t, err))
	})
}

func TestFetchHighlights(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/highlights/42/highlights_tray/", r.URL.Path)
		writeJSON(t, w, map[string]interface{}{
			"status": "ok",
			"tray": []map[string]interface{}{{
				"id":          "highlight:1789",
				"title":       "Trips",
				"media_count": 7,
				"cover_media": map[string]interface{}{
					"cropped_image_version": map[string]string{"url": "https://cdn/cover.jpg"},
				},
			}},
		})
	})

	tray, err := client.FetchHighlights(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, tray, 1)
	assert.Equal(t, "1789", tray[0].HighlightID())
	assert.Equal(t, "Trips", tray[0].Title)
	assert.Equal(t, 7, tray[0].MediaCount)
	assert.Equal(t, "https://cdn/cover.jpg", tray[0].CoverMedia.CroppedImageVersion.URL)
}

func TestFetchHashtag(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tag_name") == "golang" {
			w.Write([]byte(`{"data":{"id":"1","name":"golang","media_count":12345},"status":"ok"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	tag, err := client.FetchHashtag(context.Background(), "golang")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), tag.MediaCount)

	_, err = client.FetchHashtag(context.Background(), "nothing")
	assert.Equal(t, errs.ErrorTypeNotFound, upstreamType(t, err))
}

func TestContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"user":{"id":"1"}}}`))
	})
	client.limiter = ratelimit.NewTokenBucket(0, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.FetchProfile(ctx, "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

package instagram

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryVars(t *testing.T, raw string) (url.Values, map[string]interface{}) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	var vars map[string]interface{}
	if v := u.Query().Get("variables"); v != "" {
		require.NoError(t, json.Unmarshal([]byte(v), &vars))
	}
	return u.Query(), vars
}

func TestProfileURL(t *testing.T) {
	assert.Equal(t,
		"https://www.instagram.com/api/v1/users/web_profile_info/?username=user.name_1",
		ProfileURL(BaseURL, "user.name_1"))
}

func TestMediaURL(t *testing.T) {
	tests := []struct {
		name      string
		after     string
		limit     int
		wantFirst float64
	}{
		{"default limit", "", 0, DefaultPageSize},
		{"custom limit", "cursor", 20, 20},
		{"capped", "cursor", 500, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, vars := queryVars(t, MediaURL(BaseURL, "123", tt.after, tt.limit))
			assert.Equal(t, MediaQueryHash, q.Get("query_hash"))
			assert.Equal(t, "123", vars["id"])
			assert.Equal(t, tt.wantFirst, vars["first"])
			if tt.after == "" {
				assert.NotContains(t, vars, "after")
			} else {
				assert.Equal(t, tt.after, vars["after"])
			}
		})
	}
}

func TestPostAndCommentsURL(t *testing.T) {
	q, vars := queryVars(t, PostURL(BaseURL, "ABCDEFGHIJK"))
	assert.Equal(t, PostQueryHash, q.Get("query_hash"))
	assert.Equal(t, "ABCDEFGHIJK", vars["shortcode"])

	q, vars = queryVars(t, CommentsURL(BaseURL, "ABCDEFGHIJK", "c1", 50))
	assert.Equal(t, CommentsQueryHash, q.Get("query_hash"))
	assert.Equal(t, "c1", vars["after"])
	assert.Equal(t, float64(50), vars["first"])
}

func TestOtherURLs(t *testing.T) {
	assert.Equal(t, "https://www.instagram.com/api/v1/feed/reels_media/?reel_ids=42", StoriesURL(BaseURL, "42"))
	assert.Equal(t, "https://www.instagram.com/api/v1/highlights/42/highlights_tray/", HighlightsURL(BaseURL, "42"))
	assert.Equal(t, "https://www.instagram.com/api/v1/tags/web_info/?tag_name=go+lang", HashtagURL(BaseURL, "go lang"))
	assert.Equal(t, "https://instagram.com/p/ABCDEFGHIJK", Permalink("ABCDEFGHIJK"))
}

func TestSanitizeUsername(t *testing.T) {
	tests := map[string]string{
		"@alice":    "alice",
		"alice/":    "alice",
		" bob // ":  "bob",
		"":          "",
		"carol.d_1": "carol.d_1",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeUsername(in), "input %q", in)
	}
}

func TestNodeHelpers(t *testing.T) {
	n := &Node{Typename: "XDTGraphSidecar"}
	assert.Equal(t, TypenameSidecar, n.BaseTypename())
	assert.Equal(t, "", n.Caption())

	n.EdgeLikedBy.Count = 5
	n.EdgeMediaPreviewLike.Count = 8
	assert.Equal(t, int64(8), n.Likes())

	n.EdgeMediaToComment.Count = 3
	assert.Equal(t, int64(3), n.CommentCount())
}

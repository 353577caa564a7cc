package scraper

import (
	"context"
	"iter"

	"igapi/pkg/instagram"
)

// InstagramClient is the part of *instagram.Client the service uses
type InstagramClient interface {
	FetchProfile(ctx context.Context, username string) (*instagram.User, error)
	FetchPost(ctx context.Context, shortcode string) (*instagram.Node, error)
	UserMedia(ctx context.Context, user *instagram.User) iter.Seq2[*instagram.Node, error]
	SidecarChildren(ctx context.Context, node *instagram.Node) ([]*instagram.Node, error)
	PostComments(ctx context.Context, post *instagram.Node) iter.Seq2[*instagram.CommentNode, error]
	FetchStories(ctx context.Context, userID string) ([]instagram.StoryItem, error)
	FetchHighlights(ctx context.Context, userID string) ([]instagram.HighlightItem, error)
	FetchHashtag(ctx context.Context, name string) (*instagram.Hashtag, error)
}

var _ InstagramClient = (*instagram.Client)(nil)

package scraper

import (
	"context"
	"errors"
	"fmt"

	"igapi/pkg/instagram"
)

var errNoMediaURL = errors.New("post has no media url")

// media is the kind specific part of a post, resolved once per node
type media interface {
	urls(ctx context.Context, s *Service) []string
}

// singleMedia is a photo or video post
type singleMedia struct {
	url string
}

func (m singleMedia) urls(context.Context, *Service) []string {
	return []string{m.url}
}

// carouselMedia is a sidecar post whose children may need a fetch
type carouselMedia struct {
	node     *instagram.Node
	fallback string
}

func (m carouselMedia) urls(ctx context.Context, s *Service) []string {
	children, err := s.client.SidecarChildren(ctx, m.node)
	if err != nil {
		s.logger.WithError(err).WarnWithFields("carousel children unavailable, using cover", map[string]interface{}{
			"shortcode": m.node.Shortcode,
		})
		return m.fallbackURLs()
	}

	urls := make([]string, 0, len(children))
	for _, child := range children {
		if u := nodeURL(child); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return m.fallbackURLs()
	}
	return urls
}

func (m carouselMedia) fallbackURLs() []string {
	if m.fallback == "" {
		return []string{}
	}
	return []string{m.fallback}
}

// resolveMedia decides the post kind from its typename
func resolveMedia(node *instagram.Node) (media, error) {
	switch node.BaseTypename() {
	case instagram.TypenameSidecar:
		return carouselMedia{node: node, fallback: nodeURL(node)}, nil
	case instagram.TypenameImage, instagram.TypenameVideo, "":
		u := nodeURL(node)
		if u == "" {
			return nil, errNoMediaURL
		}
		return singleMedia{url: u}, nil
	default:
		return nil, fmt.Errorf("unknown media typename %q", node.Typename)
	}
}

// nodeURL picks the video for videos and the display image otherwise.
// Timeline video nodes often omit video_url; the display image stands in.
func nodeURL(node *instagram.Node) string {
	if node.IsVideo && node.VideoURL != "" {
		return node.VideoURL
	}
	return node.DisplayURL
}

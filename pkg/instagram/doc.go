// Package instagram is a small client for Instagram's web endpoints: the
// web profile API, the GraphQL post, timeline and comment queries, story
// reels, highlight trays and tag info.
//
// A Client is built once from configuration and shared. Every request
// waits on an outbound token bucket, and network or 5xx failures are
// retried with backoff. Failures come back as *errors.Error whose Type
// tells callers what went wrong:
//
//	user, err := client.FetchProfile(ctx, "instagram")
//	var upstream *errors.Error
//	if errors.As(err, &upstream) && upstream.Type == errors.ErrorTypeNotFound {
//		// no such profile
//	}
//
//	for node, err := range client.UserMedia(ctx, user) {
//		if err != nil {
//			break
//		}
//		fmt.Println(node.Shortcode)
//	}
package instagram

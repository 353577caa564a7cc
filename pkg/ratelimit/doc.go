// Package ratelimit throttles traffic in both directions.
//
// TokenBucket paces the single shared Instagram client so the service
// stays under the configured outbound requests per minute. SlidingWindow
// counts inbound API calls, and Keyed hands out one SlidingWindow per
// client IP for the HTTP middleware.
//
//	bucket := ratelimit.NewTokenBucket(60, time.Minute)
//	if err := bucket.Wait(ctx); err != nil {
//		return err
//	}
//
//	perIP := ratelimit.NewKeyed(func() ratelimit.Limiter {
//		return ratelimit.NewSlidingWindow(30, time.Minute)
//	})
//	if !perIP.Allow(r.RemoteAddr) {
//		// 429
//	}
//
// All limiters are safe for concurrent use.
package ratelimit

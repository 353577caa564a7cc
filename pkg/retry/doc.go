// Package retry re-runs upstream Instagram requests that failed for a
// transient reason (network trouble, 5xx responses) with exponential
// backoff.
//
//	cfg := retry.FromConfig(&appCfg.RateLimit, log)
//	body, err := retry.DoWithResult(ctx, func() ([]byte, error) {
//		return fetch(ctx, url)
//	}, cfg)
//
// Throttling (HTTP 429) is deliberately not retried here: it is reported
// to the caller straight away so the API can answer RATE_LIMIT_EXCEEDED.
package retry

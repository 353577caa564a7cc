// Package scraper turns raw Instagram client results into the response
// models and translates client failures into domain errors.
//
// Service is constructed once and shared by all handlers:
//
//	svc := scraper.New(instagram.NewClient(cfg, log), log)
//	profile, err := svc.GetProfile(ctx, "instagram")
//
// Every error a Service method returns is an *errors.APIError. Stories,
// highlights, comments and search are best effort: failures other than a
// missing profile, post or a private profile produce an empty list. Single
// posts that cannot be converted degrade to a minimal record instead of
// failing the call.
package scraper

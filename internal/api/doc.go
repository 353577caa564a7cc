// Package api serves the scraper over HTTP.
//
// Every route answers JSON. Failures use one body shape:
//
//	{"detail": "...", "error_code": "PROFILE_NOT_FOUND", "timestamp": "..."}
//
// Domain errors keep their own status and code. Validation failures are
// rejected with 400 VALIDATION_ERROR before the scraper is called, and
// anything unexpected becomes 500 INTERNAL_ERROR without leaking its text.
package api

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "igapi/pkg/errors"
	"igapi/pkg/logger"
	"igapi/pkg/models"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, models.NewErrorResponse(detail, code))
}

func writeValidation(w http.ResponseWriter, detail string) {
	writeError(w, http.StatusBadRequest, errs.CodeValidation, detail)
}

func writeInternal(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, errs.CodeInternal, "Internal server error")
}

// writeServiceError serves a domain error with its own status and code.
// Anything else is logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var apiErr *errs.APIError
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.Status(), apiErr.Code(), apiErr.Detail)
		return
	}

	log.WithError(err).ErrorWithFields("unexpected error", map[string]interface{}{
		"path":       r.URL.Path,
		"request_id": requestIDFromContext(r.Context()),
	})
	writeInternal(w)
}

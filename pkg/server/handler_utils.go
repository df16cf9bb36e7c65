package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/millie-ai/millie/internal"
	"github.com/millie-ai/millie/pkg/models"
)

var log = internal.GetLogger()

var validate = validator.New()

// APIError represents an error response.
type APIError struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// MessageResponse acknowledges a successful write.
type MessageResponse struct {
	Message string `json:"message"`
}

// encodeJSON encodes data into JSON and writes it to the response writer.
func encodeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// decodeJSON decodes a JSON request body into data and validates it.
func decodeJSON(r *http.Request, data any) error {
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		return err
	}
	return validate.Struct(data)
}

// renderError writes message as a JSON APIError. err, if any, becomes the detail.
func renderError(w http.ResponseWriter, message string, err error, status int) {
	if errors.Is(err, models.ErrBadRequest) {
		status = http.StatusBadRequest
	}
	if errors.Is(err, models.ErrNotFound) {
		status = http.StatusNotFound
	}

	apiErr := APIError{Message: message}
	if status >= http.StatusInternalServerError {
		log.Errorf("%s: %v", message, err)
		if err != nil {
			apiErr.Detail = err.Error()
		}
	}

	encodeJSON(w, status, apiErr)
}

// parseDate accepts RFC 3339 timestamps and plain dates. An empty string
// yields the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, models.NewBadRequestError("invalid date: " + s)
	}
	return t, nil
}

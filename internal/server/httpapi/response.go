package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/common"
)

// envelope is the body of every API response.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type empty struct{}

func writeJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// writeMessage writes a response without data.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, nil, message)
}

// statusOf maps a service error kind to an HTTP status.
func statusOf(err error) int {
	switch common.KindOf(err) {
	case common.ErrorUnauthenticated:
		return http.StatusUnauthorized
	case common.ErrorValidation:
		return http.StatusBadRequest
	case common.ErrorConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends the caller-safe message for err and logs the full chain.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Warn(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeMessage(w, status, common.PublicMessage(err))
}

// decodeJSON reads a JSON body into dst. An empty body is allowed when
// optional is true.
func decodeJSON(r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return common.Validation("invalid request body")
	}
	return nil
}

// Package handlers provides the REST and WebSocket endpoints of blogd.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	apperrors "github.com/kimhsiao/blogai/internal/errors"
	"github.com/kimhsiao/blogai/internal/logging"
)

// MaxBodyBytes caps the size of JSON request bodies.
const MaxBodyBytes = 1 << 20

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// The status line is already out; an encode failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps err to a status and reports its message. Server-side
// failures are logged with the request ID.
func writeError(logger *logging.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorWithCode("request failed", string(apperrors.CodeOf(err)), err, map[string]interface{}{
			"request_id": RequestIDFrom(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		})
	}
	writeErrorMessage(w, status, apperrors.PublicMessage(err))
}

// decodeBody decodes a JSON request body of at most MaxBodyBytes into v.
// An empty body is reported as io.EOF.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(v)
}

// writeBodyError reports a decodeBody failure: 413 when the body exceeded
// the limit, 400 otherwise.
func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		writeErrorMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
}

package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"MINDBRIDGE_BACK-END/internal/dto"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeJSONRequest when there is no body
var ErrEmptyBody = errors.New("request body is required")

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes {"error": ..., "message": ...}. message may be empty.
func WriteErrorResponse(w http.ResponseWriter, status int, error string, message string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Error: error, Message: message})
}

// DecodeJSONRequest decodes the request body into dst. Unknown fields are
// allowed; an empty body is an error.
func DecodeJSONRequest(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

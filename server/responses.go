package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// SuccessResponse wraps every successful payload
type SuccessResponse struct {
	IsSuccess bool      `json:"isSuccess"`
	Message   string    `json:"message"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Timestamp time.Time         `json:"timestamp"`
	Path      string            `json:"path"`
	Status    int               `json:"status"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
}

func (s *Server) writeSuccess(w http.ResponseWriter, status int, message string, payload any) {
	writeJSON(w, status, SuccessResponse{
		IsSuccess: true,
		Message:   message,
		Payload:   payload,
		Timestamp: s.nowTime().UTC(),
	})
}

// writeError maps err through the error taxonomy. Errors outside it are logged
// and reported as a generic internal error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	d := apperrors.Describe(err)
	if d.Status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}

	writeJSON(w, d.Status, ErrorResponse{
		Timestamp: s.nowTime().UTC(),
		Path:      r.URL.Path,
		Status:    d.Status,
		Code:      d.Code,
		Message:   d.Message,
		Details:   apperrors.Details(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a single JSON object from the request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		message := "malformed JSON body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			message = "request body is required"
		case errors.As(err, &maxErr):
			message = "request body is too large"
		}
		return apperrors.WithDetails(apperrors.ErrValidation, map[string]string{"body": message})
	}
	return nil
}

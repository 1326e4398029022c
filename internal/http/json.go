package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/target/restaurant-console/internal/errors"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code int
	// ErrCode is the machine-readable error; when empty it is taken from an
	// AppError in Err, falling back to "internal".
	ErrCode string
	Err     error
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError writes {"error": ..., "message": ...}. AppError messages are
// preferred over the wrapped error text so causes stay out of responses.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := errorBody{Error: p.ErrCode}
	if body.Error == "" {
		body.Error = string(apperrors.GetCode(p.Err))
	}
	if body.Error == "" {
		body.Error = string(apperrors.ErrCodeInternal)
	}

	var appErr *apperrors.AppError
	switch {
	case errors.As(p.Err, &appErr) && appErr.Message != "":
		body.Message = appErr.Message
	case p.Err != nil:
		body.Message = p.Err.Error()
	}
	WriteJSON(w, p.Code, body)
}

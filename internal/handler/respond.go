package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/uploadhub/internal/httperr"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// decodeJSON parses the request body into dst. Unknown fields are
// tolerated; a body that does not parse is the caller's fault.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return httperr.ErrBadRequest("invalid request body", httperr.WithError(err))
	}
	return nil
}

// renderError writes the error envelope for err. Internal failures log
// their underlying cause; caller-attributable ones do not reach the log
// at error level.
func renderError(r *http.Request, w http.ResponseWriter, log *slog.Logger, err error) {
	httpErr := httperr.As(err)
	if httpErr == nil {
		httpErr = httperr.ErrInternal("internal server error", httperr.WithError(err))
	}

	if httpErr.Status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("code", httpErr.Code),
			slog.Any("error", httpErr.Err),
		)
	}

	respondJSON(w, httpErr.Status, errorEnvelope{Error: errorBody{
		Code:    httpErr.Code,
		Message: httpErr.Message,
	}})
}

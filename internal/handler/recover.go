package handler

import (
	"log/slog"
	"net/http"
	"runtime"

	"github.com/dmitrymomot/uploadhub/internal/httperr"
)

const recoverStackSize = 4096

// Recover converts panics into a logged 500 response instead of tearing
// down the connection.
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					stack := make([]byte, recoverStackSize)
					n := runtime.Stack(stack, false)

					log.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(stack[:n])),
					)

					respondJSON(w, http.StatusInternalServerError, errorEnvelope{Error: errorBody{
						Code:    httperr.CodeInternal,
						Message: "internal server error",
					}})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

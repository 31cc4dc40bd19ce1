package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/uploadhub/internal/auth"
	"github.com/dmitrymomot/uploadhub/internal/httperr"
)

// Credentials resolves the open-API caller's identity from the request
// headers and stores it in the context. Resolution runs before any
// operation handler; a failure terminates the request.
func Credentials(resolver *auth.Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := resolver.Resolve(r.Context(),
				r.Header.Get(auth.HeaderAPIKey),
				r.Header.Get(auth.HeaderSignedToken),
			)
			if err != nil {
				renderError(r, w, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), ident)))
		})
	}
}

// Session authenticates a dashboard bearer session and stores the user
// in the context.
func Session(sessions *auth.SessionAuth, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				renderError(r, w, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return h[7:]
	}
	return ""
}

// identity fetches the resolved identity, which the Credentials
// middleware guarantees for open-API routes.
func identity(r *http.Request) (*auth.Identity, error) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil, httperr.ErrUnauthorized("credential required")
	}
	return ident, nil
}

// sessionUser fetches the session-authenticated user, which the Session
// middleware guarantees for dashboard routes.
func sessionUser(r *http.Request) (string, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return "", httperr.ErrUnauthorized("session required")
	}
	return user.ID, nil
}

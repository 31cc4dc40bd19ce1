package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/uploadhub/internal/auth"
	"github.com/dmitrymomot/uploadhub/pkg/health"
)

// Deps carries everything the router needs.
type Deps struct {
	Log *slog.Logger

	Resolver *auth.Resolver
	Sessions *auth.SessionAuth

	Open      *Open
	Dashboard *Dashboard
	Token     *Token

	ReadyChecks health.Checks
}

// NewRouter assembles the full HTTP surface: health probes, token
// issuance, the credentialed open API with permissive CORS, and the
// session-protected dashboard API.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Recover(deps.Log))
	r.Use(RequestLogger(deps.Log))

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(deps.ReadyChecks, deps.Log))

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate-token", deps.Token.Generate)

		// Third parties call this surface from browsers on arbitrary
		// origins, so CORS is wide open and the credential headers are
		// explicitly allowlisted.
		r.Route("/open", func(r chi.Router) {
			r.Use(CORS(
				WithAllowOrigins("*"),
				WithAllowMethods(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions),
				WithAllowHeaders("Origin", "Content-Type", "Accept", auth.HeaderAPIKey, auth.HeaderSignedToken),
			))
			r.Use(Credentials(deps.Resolver, deps.Log))
			deps.Open.Routes(r)
		})

		r.Route("/v1", func(r chi.Router) {
			r.Use(Session(deps.Sessions, deps.Log))
			deps.Dashboard.Routes(r)
		})
	})

	return r
}

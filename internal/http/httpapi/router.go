package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"vidmorph/internal/http/handlers"
	"vidmorph/internal/infra"
	"vidmorph/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	// The provider's callback carries its own signature check instead of a
	// bearer token, and the ingress mirror is called before sign-in completes
	// client-side; both stay outside the auth group.
	r.Post("/v1/uploads", app.UploadsMirror)
	r.Post("/v1/webhooks/fal", app.WebhookFal)
	r.Options("/v1/webhooks/fal", app.WebhookPreflight)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(cfg.JWTSecret))
		r.Post("/v1/videos", app.VideosCreate)
		r.Get("/v1/videos", app.VideosHistory)
		r.Get("/v1/videos/events", app.VideoEvents)
	})

	return r
}

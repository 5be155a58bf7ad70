package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/myvocab-backend/internal/config"
	"github.com/heartmarshall/myvocab-backend/internal/transport/middleware"
)

// Handlers groups every REST handler served by the router.
type Handlers struct {
	Health        *HealthHandler
	Sessions      *SessionHandler
	Results       *ResultsHandler
	Pronunciation *PronunciationHandler
}

// NewRouter builds the HTTP routing tree. limiter may be nil, which
// disables rate limiting of the AI-backed endpoints.
func NewRouter(h Handlers, cfg config.Config, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	))

	r.Get("/live", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	r.Get("/health", h.Health.Health)

	// Endpoints that call the generative-AI service.
	ai := func(r chi.Router) chi.Router {
		if limiter == nil {
			return r
		}
		return r.With(limiter.Limit(cfg.RateLimit.PerMinute))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/topics", ListTopics)
		r.Get("/results/summary", h.Results.Summary)

		r.Route("/sessions", func(r chi.Router) {
			ai(r).Post("/", h.Sessions.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Sessions.Get)
				r.Get("/results", h.Results.ListBySession)

				ai(r).Post("/topic", h.Sessions.SelectTopic)
				ai(r).Post("/refresh", h.Sessions.Refresh)
				ai(r).Post("/restart", h.Sessions.Restart)
				r.Post("/home", h.Sessions.Home)

				r.Post("/quiz/start", h.Sessions.StartQuiz)
				r.Post("/quiz/answer", h.Sessions.Answer)
				r.Post("/quiz/exit", h.Sessions.ExitQuiz)
			})
		})

		ai(r).Get("/pronunciations", h.Pronunciation.WAV)
		ai(r).Post("/pronunciations/play", h.Pronunciation.Play)
		r.Get("/audio/stream", h.Pronunciation.Stream)
	})

	return r
}

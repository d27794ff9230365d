package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers groups the handlers mounted under /api. Auth may omit Google
// sign-in; the Google routes are only registered when GoogleEnabled is set.
type Handlers struct {
	Auth          *AuthHandler
	Sessions      *SessionHandler
	Questions     *QuestionHandler
	Mistakes      *MistakeHandler
	Analytics     *AnalyticsHandler
	GoogleEnabled bool
}

// Mount registers every /api route on r. authenticate guards the routes
// that need a signed-in user.
func (h Handlers) Mount(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			if h.GoogleEnabled {
				r.Get("/google", h.Auth.GoogleRedirect)
				r.Get("/google/callback", h.Auth.GoogleCallback)
			}

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/me", h.Auth.Me)
				r.Put("/me", h.Auth.UpdateMe)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", h.Sessions.CreateSession)
				r.Get("/", h.Sessions.ListSessions)
				r.Get("/{id}", h.Sessions.GetSession)
				r.Delete("/{id}", h.Sessions.DeleteSession)
				r.Post("/{id}/questions", h.Sessions.AddQuestions)
			})

			r.Route("/questions/{id}", func(r chi.Router) {
				r.Post("/pin", h.Questions.TogglePin)
				r.Put("/note", h.Questions.UpdateNote)
				r.Post("/answer", h.Questions.SubmitAnswer)
				r.Post("/explanation", h.Questions.Explain)
			})

			r.Route("/mistakes", func(r chi.Router) {
				r.Post("/attempts", h.Mistakes.RecordAttempt)
				r.Get("/weak", h.Mistakes.WeakConcepts)
				r.Get("/due", h.Mistakes.DueForReview)
				r.Get("/stats", h.Mistakes.Stats)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/readiness", h.Analytics.Readiness)
				r.Get("/knowledge-gaps", h.Analytics.KnowledgeGaps)
			})
		})
	})
}

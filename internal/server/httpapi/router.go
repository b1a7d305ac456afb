package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler builds the route tree.
//
//	/api/v1/users   register (public)
//	                login, refresh-token (rate limited, public)
//	                logout, change-password, current-user, update-account (gated)
//	/api/v1/media   uploads (rate limited, public)
//	/healthz, /metrics
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)
	r.Use(s.cors)

	r.Get("/healthz", s.healthz)
	if s.gatherer != nil {
		r.Handle("/metrics", metrics.Handler(s.gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", s.register)

			r.Group(func(r chi.Router) {
				r.Use(s.limiter.Middleware)
				r.Post("/login", s.login)
				r.Post("/refresh-token", s.refreshToken)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.gate)
				r.Post("/logout", s.logout)
				r.Post("/change-password", s.changePassword)
				r.Get("/current-user", s.currentUser)
				r.Patch("/update-account", s.updateAccount)
			})
		})

		r.With(s.limiter.Middleware).Post("/media/uploads", s.presignUpload)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

package http

import (
	"context"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/houseoftheai/server/internal/auth"
	"github.com/houseoftheai/server/internal/http/handlers"
	"github.com/houseoftheai/server/internal/middleware"
	"github.com/houseoftheai/server/internal/repo"
)

// RouterDeps bundles everything the router wires together
type RouterDeps struct {
	Auth        *handlers.AuthHandler
	Chat        *handlers.ChatHandler
	Visitor     *handlers.VisitorHandler
	Feedback    *handlers.FeedbackHandler
	JWTService  *auth.JWTService
	Users       repo.UserRepo
	Healthcheck func(context.Context) error
	FrontendURL string
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	// The frontend is hosted separately; session cookies require credentials.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{deps.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	healthHandler := handlers.NewHealthHandler(deps.Healthcheck)
	r.Get("/health", healthHandler.ServeHTTP)

	r.Get("/api/visitors", deps.Visitor.HandleTrack)
	r.Post("/api/feedback", deps.Feedback.HandleSubmit)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", deps.Auth.HandleSignup)
		r.Post("/verify-otp", deps.Auth.HandleVerifyOTP)
		r.Post("/resend-otp", deps.Auth.HandleResendOTP)
		r.Post("/login", deps.Auth.HandleLogin)
		r.Post("/google", deps.Auth.HandleGoogleLogin)
		r.Post("/logout", deps.Auth.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.JWTService, deps.Users))
			r.Get("/me", deps.Auth.HandleMe)
		})
	})

	// Protected routes (require valid session cookie)
	r.Route("/api/chats", func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.JWTService, deps.Users))
		r.Post("/save", deps.Chat.HandleSave)
		r.Get("/history/{aiType}", deps.Chat.HandleHistory)
	})

	return r
}

package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/markdave123-py/chatters/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/chatters/internal/api/middlewares"
	"github.com/markdave123-py/chatters/internal/config"
	"github.com/markdave123-py/chatters/internal/models"
	"github.com/markdave123-py/chatters/internal/services"
)

const (
	signUpTTL   = 30 * time.Minute
	practiceTTL = 2 * time.Hour
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, c *Core) *Server {
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, c),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &Server{httpServer: httpSrv}
}

func NewRouter(cfg *config.Config, c *Core) http.Handler {
	tokens := appMiddleware.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	auth := appMiddleware.NewAuthenticator(tokens, func(ctx context.Context, profile string) (*models.User, error) {
		return c.Stores.For(profile).GetSession(ctx)
	})

	var limiter redis.Scripter
	if c.Redis != nil {
		limiter = c.Redis
	}
	rateLimit := appMiddleware.RateLimit(cfg.RateLimit, limiter)

	authHandler := handlers.NewAuthHandler(c.Stores, services.NewRegistry[*services.AuthFlow](signUpTTL), tokens)
	coachHandler := handlers.NewCoachHandler(c.Coach, c.Stores, c.Attachments)
	practiceHandler := handlers.NewPracticeHandler(services.NewPracticeSessions(c.Coach, practiceTTL), c.Stores)
	historyHandler := handlers.NewHistoryHandler(c.Stores)
	pagesHandler := handlers.NewPagesHandler(c.Stores, cfg.ContactEmail, c.LLM.Name())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.ModelTimeout + 15*time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", appMiddleware.ProfileHeader},
		ExposedHeaders:   []string{appMiddleware.ProfileHeader, "Retry-After", "X-RateLimit-Remaining"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", pagesHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(appMiddleware.Profile)

		api.Group(func(public chi.Router) {
			public.Use(auth.Optional)

			public.Get("/views", pagesHandler.Views)
			public.Get("/home", pagesHandler.Home)
			public.Get("/about", pagesHandler.About)
			public.Get("/capabilities", pagesHandler.Capabilities)
			public.Post("/voice", pagesHandler.Voice)
			public.Post("/contact", pagesHandler.Contact)
			public.Get("/preferences", pagesHandler.GetPreferences)
			public.Put("/preferences", pagesHandler.PutPreferences)

			public.Route("/auth", func(a chi.Router) {
				a.Post("/signin", authHandler.SignIn)
				a.Post("/signup", authHandler.SignUp)
				a.Post("/signup/profile", authHandler.CompleteProfile)
				a.Post("/signout", authHandler.SignOut)
				a.Get("/session", authHandler.Session)
				a.Post("/password/check", authHandler.CheckPassword)
			})

			public.Group(func(model chi.Router) {
				model.Use(rateLimit)
				model.Post("/reply", coachHandler.Reply)
				model.Post("/reply/attachment", coachHandler.Attachment)
				model.Post("/vibe", coachHandler.Vibe)
				model.Post("/icebreakers", coachHandler.Icebreakers)
				model.Post("/practice/{id}/messages", practiceHandler.Send)
			})

			public.Post("/practice", practiceHandler.Start)
			public.Get("/practice/{id}", practiceHandler.Get)
			public.Delete("/practice/{id}", practiceHandler.Close)
		})

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(auth.Required)
			protected.Get("/history", historyHandler.List)
			protected.Post("/practice/{id}/save", practiceHandler.Save)
		})
	})

	return r
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	log.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

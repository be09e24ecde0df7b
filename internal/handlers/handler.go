package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/developia-II/longform-translator-backend/internal/database"
	"github.com/developia-II/longform-translator-backend/internal/pipeline"
)

const defaultTokenTTL = 72 * time.Hour

// Runner runs one translation through the pipeline.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request, onProgress pipeline.ProgressFunc) (string, error)
}

// Settings configures a Handler.
type Settings struct {
	// Runners maps profile names to their pipelines.
	Runners        map[string]Runner
	DefaultProfile string
	JWTSecret      string
	TokenTTL       time.Duration
}

// Handler serves the HTTP API.
type Handler struct {
	users        database.UserStore
	translations database.TranslationStore
	feedback     database.FeedbackStore
	runners      map[string]Runner
	profile      string
	jwtSecret    string
	tokenTTL     time.Duration

	// background translations started with ?async=true
	running sync.WaitGroup
}

// New creates a Handler backed by store.
func New(store database.Store, s Settings) *Handler {
	if s.TokenTTL <= 0 {
		s.TokenTTL = defaultTokenTTL
	}
	return &Handler{
		users:        store,
		translations: store,
		feedback:     store,
		runners:      s.Runners,
		profile:      s.DefaultProfile,
		jwtSecret:    s.JWTSecret,
		tokenTTL:     s.TokenTTL,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r fiber.Router) {
	api := r.Group("/api/v1")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", h.Signup)
	auth.Post("/login", h.Login)
	auth.Get("/me", h.AuthMiddleware, h.Me)

	// Translation routes
	translations := api.Group("/translations", h.AuthMiddleware)
	translations.Post("/", h.CreateTranslation)
	translations.Get("/", h.GetTranslations)
	translations.Get("/:id", h.GetTranslation)
	translations.Put("/:id", h.UpdateTranslation)
	translations.Delete("/:id", h.DeleteTranslation)

	// Feedback routes
	feedback := api.Group("/feedback", h.AuthMiddleware)
	feedback.Post("/", h.SubmitFeedback)
	feedback.Get("/:translationId", h.GetFeedback)

	// Admin routes
	admin := api.Group("/admin", h.AuthMiddleware, h.AdminMiddleware)
	admin.Get("/stats", h.GetAdminStats)
	admin.Get("/users", h.GetAllUsers)
	admin.Get("/feedbacks", h.GetAllFeedbacks)
}

// Wait blocks until background translations have finished or ctx is done.
func (h *Handler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

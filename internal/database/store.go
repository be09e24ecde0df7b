package database

import (
	"context"
	"errors"

	"github.com/developia-II/longform-translator-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// TranslationStore persists translation records.
//
// Update calls for one record must be applied in the order they are issued.
// Once a record is complete or failed, in-progress updates for it are ignored
// so a late progress write never hides the final result.
type TranslationStore interface {
	CreateTranslation(ctx context.Context, t *models.Translation) (string, error)
	UpdateTranslation(ctx context.Context, id string, u models.TranslationUpdate) error
	GetTranslation(ctx context.Context, id string) (*models.Translation, error)
	ListTranslations(ctx context.Context, ownerID string, limit int64) ([]models.Translation, error)
	DeleteTranslation(ctx context.Context, id string) error
	TranslationStats(ctx context.Context) (models.TranslationStats, error)
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, query string, page, limit int64) ([]models.User, int64, error)
	CountUsers(ctx context.Context) (int64, error)
}

// FeedbackStore persists ratings of translations.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, f *models.Feedback) (string, error)
	ListFeedback(ctx context.Context, translationID string) ([]models.Feedback, error)
	ListAllFeedback(ctx context.Context, q models.FeedbackQuery) ([]models.Feedback, int64, error)
	CountFeedback(ctx context.Context) (int64, error)
}

// Store is the full persistence backend of the service.
type Store interface {
	TranslationStore
	UserStore
	FeedbackStore
	Close(ctx context.Context) error
}

package models

import (
	"time"
)

// Feedback is a user's rating of a finished translation, optionally with a
// suggested better wording.
type Feedback struct {
	ID            string    `json:"id" bson:"-"`
	TranslationID string    `json:"translationId" bson:"-"`
	UserID        string    `json:"userId" bson:"-"`
	Rating        int       `json:"rating" bson:"rating"`
	SuggestedText string    `json:"suggestedText,omitempty" bson:"suggestedText,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

type FeedbackRequest struct {
	TranslationID string `json:"translationId" validate:"required"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	SuggestedText string `json:"suggestedText,omitempty" validate:"max=200000"`
}

// FeedbackQuery selects feedback for the admin listing. Zero times leave the
// range open on that side.
type FeedbackQuery struct {
	From  time.Time
	To    time.Time
	Page  int64
	Limit int64
}

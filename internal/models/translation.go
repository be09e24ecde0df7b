package models

import (
	"time"
)

// TranslationStatus is the lifecycle state of a translation record.
type TranslationStatus string

const (
	StatusPending    TranslationStatus = "pending"
	StatusInProgress TranslationStatus = "in_progress"
	StatusComplete   TranslationStatus = "complete"
	StatusFailed     TranslationStatus = "failed"
)

// Terminal reports whether no further progress can be recorded.
func (s TranslationStatus) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// ProgressEvent is a momentary report of pipeline advancement.
type ProgressEvent struct {
	Current int    `json:"current" bson:"current"`
	Total   int    `json:"total" bson:"total"`
	Status  string `json:"status" bson:"status"`
}

// Translation is a stored translation request and its outcome. Progress is
// kept apart from TranslatedText, which only ever holds translated content.
type Translation struct {
	ID             string            `json:"id" bson:"-"`
	UserID         string            `json:"userId" bson:"-"`
	OriginalText   string            `json:"originalText" bson:"originalText"`
	SourceLanguage string            `json:"sourceLanguage" bson:"sourceLanguage"`
	TargetLanguage string            `json:"targetLanguage" bson:"targetLanguage"`
	Profile        string            `json:"profile" bson:"profile"`
	Status         TranslationStatus `json:"status" bson:"status"`
	Progress       *ProgressEvent    `json:"progress,omitempty" bson:"progress,omitempty"`
	TranslatedText string            `json:"translatedText,omitempty" bson:"translatedText,omitempty"`
	FailureReason  string            `json:"failureReason,omitempty" bson:"failureReason,omitempty"`
	CreatedAt      time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// TranslationUpdate is a state transition of a translation record.
type TranslationUpdate struct {
	Status         TranslationStatus
	Progress       *ProgressEvent
	TranslatedText string
	FailureReason  string
}

// InProgress records the latest progress event.
func InProgress(ev ProgressEvent) TranslationUpdate {
	return TranslationUpdate{Status: StatusInProgress, Progress: &ev}
}

// Completed records the final translated text.
func Completed(text string) TranslationUpdate {
	return TranslationUpdate{Status: StatusComplete, TranslatedText: text}
}

// Failed records a failed run with a user-visible reason.
func Failed(reason string) TranslationUpdate {
	return TranslationUpdate{Status: StatusFailed, FailureReason: reason}
}

// TranslationStats holds aggregate counts for the admin dashboard.
type TranslationStats struct {
	Total    int64                       `json:"total"`
	ByStatus map[TranslationStatus]int64 `json:"byStatus"`
}

type CreateTranslationRequest struct {
	OriginalText   string `json:"originalText" validate:"required,max=200000"`
	SourceLanguage string `json:"sourceLanguage" validate:"required,min=2,max=16"`
	TargetLanguage string `json:"targetLanguage" validate:"required,min=2,max=16,nefield=SourceLanguage"`
	Profile        string `json:"profile,omitempty" validate:"omitempty,max=64"`
}

type UpdateTranslationRequest struct {
	TranslatedText string `json:"translatedText" validate:"required"`
}

type TranslationResponse struct {
	Translation *Translation `json:"translation"`
}

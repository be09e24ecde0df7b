package services

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Position is the place of a chunk within a longer text.
type Position int

const (
	// PositionNone marks an unchunked text.
	PositionNone Position = iota
	PositionFirst
	PositionMiddle
	PositionLast
)

// PositionOf returns the position of chunk i out of n. A single chunk has no
// position.
func PositionOf(i, n int) Position {
	switch {
	case n <= 1:
		return PositionNone
	case i == 0:
		return PositionFirst
	case i == n-1:
		return PositionLast
	default:
		return PositionMiddle
	}
}

func (p Position) String() string {
	switch p {
	case PositionFirst:
		return "beginning"
	case PositionMiddle:
		return "middle"
	case PositionLast:
		return "end"
	default:
		return "none"
	}
}

// SegmentTranslator translates one text or chunk per upstream call, using the
// persona and formatting rules of its profile.
type SegmentTranslator struct {
	client  CompletionClient
	profile TranslationProfile
	timeout time.Duration
}

// NewSegmentTranslator creates a translator. A positive timeout bounds every
// upstream call.
func NewSegmentTranslator(client CompletionClient, profile TranslationProfile, timeout time.Duration) *SegmentTranslator {
	return &SegmentTranslator{
		client:  client,
		profile: profile.withDefaults(),
		timeout: timeout,
	}
}

// Profile returns the profile in use.
func (t *SegmentTranslator) Profile() TranslationProfile {
	return t.profile
}

// Translate translates a whole text without positional framing.
func (t *SegmentTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return t.TranslateChunk(ctx, text, sourceLang, targetLang, PositionNone)
}

// TranslateChunk translates one chunk of a longer text. The position tells
// the model which part of the text it is looking at so consecutive chunks
// read as one passage.
func (t *SegmentTranslator) TranslateChunk(ctx context.Context, chunk, sourceLang, targetLang string, pos Position) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	content, err := t.client.Complete(ctx, CompletionRequest{
		Model:       t.profile.Model,
		System:      t.profile.SystemPrompt(),
		User:        buildUserPrompt(chunk, LanguageName(sourceLang), LanguageName(targetLang), pos),
		Temperature: t.profile.Temperature,
		TopP:        t.profile.TopP,
		MaxTokens:   t.profile.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	translated := strings.TrimSpace(content)
	if translated == "" {
		return "", fmt.Errorf("%s translation: %w", t.profile.Name, ErrEmptyTranslation)
	}
	return translated, nil
}

func buildUserPrompt(text, source, target string, pos Position) string {
	var b strings.Builder
	if pos == PositionNone {
		fmt.Fprintf(&b, "Translate the following text from %s to %s.\n", source, target)
	} else {
		fmt.Fprintf(&b, "Translate the following %s part of a longer text from %s to %s.\n", pos, source, target)
	}
	b.WriteString("Keep the original meaning, tone and cultural context.\n")
	b.WriteString("Adapt idioms and cultural references naturally for the target language.\n")
	if pos != PositionNone {
		b.WriteString("The translation must read as one continuous passage with the parts before and after it.\n")
	}
	b.WriteString("Return only the translated text.\n\n")
	// Quoted as-is so line breaks reach the model untouched
	fmt.Fprintf(&b, "Text to translate: \"%s\"", text)
	return b.String()
}

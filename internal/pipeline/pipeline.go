// Package pipeline runs a translation request through chunking, rate
// limiting and per-chunk translation, reporting progress along the way.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2/log"

	"github.com/developia-II/longform-translator-backend/internal/chunker"
	"github.com/developia-II/longform-translator-backend/internal/models"
	"github.com/developia-II/longform-translator-backend/internal/ratelimit"
	"github.com/developia-II/longform-translator-backend/internal/services"
)

// DefaultChunkDelay separates consecutive chunk calls.
const DefaultChunkDelay = time.Second

// Translator translates whole texts and positioned chunks.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	TranslateChunk(ctx context.Context, chunk, sourceLang, targetLang string, pos services.Position) (string, error)
}

// Limiter guards upstream calls.
type Limiter interface {
	CheckAndConsume() error
}

// capacityLimiter is a Limiter that can report its budget per window.
type capacityLimiter interface {
	Limit() (int, time.Duration)
}

// Options tunes a Pipeline. Zero values take the defaults.
type Options struct {
	// MaxChunkLength bounds chunks and is the single-shot threshold. Default: 1500.
	MaxChunkLength int
	// ChunkDelay is the pause before every chunk after the first. Default: 1s.
	// A negative value disables the pause.
	ChunkDelay time.Duration
	// LimitPerCall consults the limiter before every upstream call instead of
	// once per run.
	LimitPerCall bool
	// Sleep waits for d or until ctx is done. Default: a timer-based wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Request is one translation run.
type Request struct {
	// ID correlates log lines of one run.
	ID             string
	OriginalText   string
	SourceLanguage string
	TargetLanguage string
}

// ProgressFunc receives progress events synchronously.
type ProgressFunc func(models.ProgressEvent)

// Pipeline orchestrates chunking, rate limiting and translation.
// It is safe for concurrent runs when its Translator and Limiter are.
type Pipeline struct {
	translator Translator
	limiter    Limiter
	opts       Options
}

// New creates a Pipeline.
func New(translator Translator, limiter Limiter, opts Options) *Pipeline {
	if opts.MaxChunkLength <= 0 {
		opts.MaxChunkLength = chunker.DefaultMaxLength
	}
	if opts.ChunkDelay == 0 {
		opts.ChunkDelay = DefaultChunkDelay
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &Pipeline{translator: translator, limiter: limiter, opts: opts}
}

// Run translates req and returns the assembled text. Progress events are
// delivered to onProgress, when set, with non-decreasing Current; only the
// completion event repeats the last part number. Any failure aborts the whole
// run and no partial text is returned. With LimitPerCall, a text needing more
// chunks than the limiter allows per window is rejected before any call.
func (p *Pipeline) Run(ctx context.Context, req Request, onProgress ProgressFunc) (string, error) {
	emit := func(current, total int, status string) {
		if onProgress != nil {
			onProgress(models.ProgressEvent{Current: current, Total: total, Status: status})
		}
	}

	singleShot := utf8.RuneCountInString(req.OriginalText) <= p.opts.MaxChunkLength

	var chunks []string
	if !singleShot {
		chunks = chunker.Split(req.OriginalText, p.opts.MaxChunkLength)
		if err := p.checkCapacity(len(chunks)); err != nil {
			return "", p.fail(req, -1, len(chunks), err)
		}
	}

	if err := p.limiter.CheckAndConsume(); err != nil {
		return "", p.fail(req, -1, len(chunks), err)
	}

	if singleShot {
		emit(0, 1, "Preparing...")
		emit(1, 1, "Translating...")

		out, err := p.translator.Translate(ctx, req.OriginalText, req.SourceLanguage, req.TargetLanguage)
		if err != nil {
			return "", p.fail(req, 0, 1, err)
		}
		return out, nil
	}

	n := len(chunks)
	log.Infow("translating in parts", "run", req.ID, "chunks", n, "source", req.SourceLanguage, "target", req.TargetLanguage)

	emit(0, n, fmt.Sprintf("Preparing to translate %d parts...", n))

	results := make([]string, 0, n)
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return "", p.fail(req, i, n, err)
		}

		emit(i+1, n, fmt.Sprintf("Translating part %d of %d...", i+1, n))

		if i > 0 {
			if p.opts.ChunkDelay > 0 {
				if err := p.opts.Sleep(ctx, p.opts.ChunkDelay); err != nil {
					return "", p.fail(req, i, n, err)
				}
			}
			if p.opts.LimitPerCall {
				if err := p.limiter.CheckAndConsume(); err != nil {
					return "", p.fail(req, i, n, err)
				}
			}
		}

		out, err := p.translator.TranslateChunk(ctx, chunk, req.SourceLanguage, req.TargetLanguage, services.PositionOf(i, n))
		if err != nil {
			return "", p.fail(req, i, n, err)
		}
		results = append(results, out)
	}

	emit(n, n, "Translation completed!")
	return strings.Join(results, " "), nil
}

// checkCapacity rejects runs that could never finish within one window.
func (p *Pipeline) checkCapacity(n int) error {
	if !p.opts.LimitPerCall {
		return nil
	}
	lim, ok := p.limiter.(capacityLimiter)
	if !ok {
		return nil
	}
	if limit, window := lim.Limit(); n > limit {
		return fmt.Errorf("text needs %d upstream calls, at most %d allowed per %s: %w", n, limit, window, ratelimit.ErrLimitExceeded)
	}
	return nil
}

func (p *Pipeline) fail(req Request, chunk, total int, err error) error {
	kind := classify(err)
	log.Errorw("translation failed",
		"run", req.ID,
		"chunk", chunk,
		"chunks", total,
		"source", req.SourceLanguage,
		"target", req.TargetLanguage,
		"kind", kind.Error(),
		"error", err,
	)
	return &Error{Kind: kind, Chunk: chunk, Err: err}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

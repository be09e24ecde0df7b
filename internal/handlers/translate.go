package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/developia-II/longform-translator-backend/internal/database"
	"github.com/developia-II/longform-translator-backend/internal/models"
	"github.com/developia-II/longform-translator-backend/internal/pipeline"
	"github.com/developia-II/longform-translator-backend/utils"
)

const listLimit = 50

// CreateTranslation stores a pending record and runs the pipeline for it.
// With ?async=true it answers 202 right away and translates in the background.
func (h *Handler) CreateTranslation(c *fiber.Ctx) error {
	var req models.CreateTranslationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := utils.Validate.Struct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.OriginalText) == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Text to translate must not be empty")
	}

	profile := req.Profile
	if profile == "" {
		profile = h.profile
	}
	runner, ok := h.runners[profile]
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown translation profile: "+profile)
	}

	now := time.Now()
	translation := models.Translation{
		UserID:         currentUser(c),
		OriginalText:   req.OriginalText,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		Profile:        profile,
		Status:         models.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	id, err := h.translations.CreateTranslation(c.UserContext(), &translation)
	if err != nil {
		log.Errorw("create translation failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save translation")
	}
	translation.ID = id

	if c.QueryBool("async") {
		h.running.Add(1)
		go func() {
			defer h.running.Done()
			h.translate(context.Background(), runner, &translation)
		}()
		return c.Status(fiber.StatusAccepted).JSON(models.TranslationResponse{Translation: &translation})
	}

	if err := h.translate(c.UserContext(), runner, &translation); err != nil {
		status, message := translationError(err)
		return c.Status(status).JSON(fiber.Map{
			"error":         message,
			"translationId": id,
		})
	}

	stored, err := h.translations.GetTranslation(c.UserContext(), id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch translation")
	}
	return c.Status(fiber.StatusCreated).JSON(models.TranslationResponse{Translation: stored})
}

// translate runs the pipeline for t, persisting every progress event and the
// outcome. Progress writes are synchronous, so they reach the store in order.
func (h *Handler) translate(ctx context.Context, runner Runner, t *models.Translation) error {
	req := pipeline.Request{
		ID:             t.ID,
		OriginalText:   t.OriginalText,
		SourceLanguage: t.SourceLanguage,
		TargetLanguage: t.TargetLanguage,
	}

	onProgress := func(ev models.ProgressEvent) {
		if err := h.translations.UpdateTranslation(ctx, t.ID, models.InProgress(ev)); err != nil {
			log.Warnw("store progress failed", "translation", t.ID, "error", err)
		}
	}

	text, err := runner.Run(ctx, req, onProgress)

	// the outcome is recorded even when the caller went away
	storeCtx := context.WithoutCancel(ctx)
	if err != nil {
		if uerr := h.translations.UpdateTranslation(storeCtx, t.ID, models.Failed(err.Error())); uerr != nil {
			log.Errorw("store failure failed", "translation", t.ID, "error", uerr)
		}
		return err
	}

	if err := h.translations.UpdateTranslation(storeCtx, t.ID, models.Completed(text)); err != nil {
		log.Errorw("store result failed", "translation", t.ID, "error", err)
		return err
	}
	return nil
}

// translationError maps a pipeline failure to a status code and a message
// that is safe to show to the user.
func translationError(err error) (int, string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fiber.StatusServiceUnavailable, "Translation was interrupted, please try again"
	}

	var pe *pipeline.Error
	if !errors.As(err, &pe) {
		return fiber.StatusInternalServerError, "Failed to save translation"
	}

	switch {
	case errors.Is(pe.Kind, pipeline.ErrRateLimitExceeded), errors.Is(pe.Kind, pipeline.ErrUpstreamRateLimited):
		return fiber.StatusTooManyRequests, pe.Error()
	case errors.Is(pe.Kind, pipeline.ErrUpstreamAuthFailed), errors.Is(pe.Kind, pipeline.ErrEmptyTranslationResult):
		return fiber.StatusBadGateway, pe.Error()
	default:
		return fiber.StatusInternalServerError, pe.Error()
	}
}

func (h *Handler) GetTranslations(c *fiber.Ctx) error {
	translations, err := h.translations.ListTranslations(c.UserContext(), currentUser(c), listLimit)
	if err != nil {
		log.Errorw("list translations failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch translations")
	}

	return c.JSON(fiber.Map{
		"translations": translations,
	})
}

func (h *Handler) GetTranslation(c *fiber.Ctx) error {
	translation, err := h.translations.GetTranslation(c.UserContext(), c.Params("id"))
	if errors.Is(err, database.ErrNotFound) || (err == nil && translation.UserID != currentUser(c)) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Translation not found")
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch translation")
	}

	return c.JSON(models.TranslationResponse{Translation: translation})
}

// UpdateTranslation stores a manual edit of the translated text. Records still
// being translated are rejected so the run's result cannot overwrite the edit.
func (h *Handler) UpdateTranslation(c *fiber.Ctx) error {
	var req models.UpdateTranslationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := utils.Validate.Struct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	id := c.Params("id")
	current, status, msg, ok := h.ownedTranslation(c, id)
	if !ok {
		return utils.ErrorResponse(c, status, msg)
	}
	if !current.Status.Terminal() {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Translation is still in progress")
	}

	if err := h.translations.UpdateTranslation(c.UserContext(), id, models.Completed(req.TranslatedText)); err != nil {
		log.Errorw("update translation failed", "translation", id, "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update translation")
	}

	translation, err := h.translations.GetTranslation(c.UserContext(), id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch translation")
	}
	return c.JSON(models.TranslationResponse{Translation: translation})
}

func (h *Handler) DeleteTranslation(c *fiber.Ctx) error {
	id := c.Params("id")
	if status, msg, ok := h.checkOwner(c, id); !ok {
		return utils.ErrorResponse(c, status, msg)
	}

	if err := h.translations.DeleteTranslation(c.UserContext(), id); err != nil && !errors.Is(err, database.ErrNotFound) {
		log.Errorw("delete translation failed", "translation", id, "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete translation")
	}

	return c.JSON(fiber.Map{
		"message": "Translation deleted",
	})
}

func (h *Handler) checkOwner(c *fiber.Ctx, id string) (int, string, bool) {
	_, status, msg, ok := h.ownedTranslation(c, id)
	return status, msg, ok
}

func (h *Handler) ownedTranslation(c *fiber.Ctx, id string) (*models.Translation, int, string, bool) {
	translation, err := h.translations.GetTranslation(c.UserContext(), id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fiber.StatusNotFound, "Translation not found", false
	}
	if err != nil {
		return nil, fiber.StatusInternalServerError, "Failed to fetch translation", false
	}
	if translation.UserID != currentUser(c) {
		return nil, fiber.StatusForbidden, "Not allowed to modify this translation", false
	}
	return translation, 0, "", true
}

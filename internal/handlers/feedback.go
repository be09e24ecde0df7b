package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/developia-II/longform-translator-backend/internal/database"
	"github.com/developia-II/longform-translator-backend/internal/models"
	"github.com/developia-II/longform-translator-backend/utils"
)

// SubmitFeedback rates one of the caller's translations.
func (h *Handler) SubmitFeedback(c *fiber.Ctx) error {
	var req models.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := utils.Validate.Struct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	if status, msg, ok := h.checkOwner(c, req.TranslationID); !ok {
		return utils.ErrorResponse(c, status, msg)
	}

	feedback := models.Feedback{
		TranslationID: req.TranslationID,
		UserID:        currentUser(c),
		Rating:        req.Rating,
		SuggestedText: req.SuggestedText,
		CreatedAt:     time.Now(),
	}

	id, err := h.feedback.CreateFeedback(c.UserContext(), &feedback)
	if errors.Is(err, database.ErrNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Translation not found")
	}
	if err != nil {
		log.Errorw("create feedback failed", "translation", req.TranslationID, "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save feedback")
	}
	feedback.ID = id

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"feedback": feedback,
	})
}

func (h *Handler) GetFeedback(c *fiber.Ctx) error {
	translationID := c.Params("translationId")
	if status, msg, ok := h.checkOwner(c, translationID); !ok {
		return utils.ErrorResponse(c, status, msg)
	}

	feedback, err := h.feedback.ListFeedback(c.UserContext(), translationID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch feedback")
	}

	return c.JSON(fiber.Map{
		"feedback": feedback,
	})
}

// GetAllFeedbacks returns all feedback, newest first, optionally limited to
// an RFC 3339 date range.
func (h *Handler) GetAllFeedbacks(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	q := models.FeedbackQuery{Page: int64(page), Limit: int64(limit)}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			q.From = t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			q.To = t
		}
	}

	feedbacks, total, err := h.feedback.ListAllFeedback(c.UserContext(), q)
	if err != nil {
		log.Errorw("list feedback failed", "error", err)
		return utilsError(c)
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)

	return c.JSON(fiber.Map{
		"feedbacks":  feedbacks,
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": totalPages,
	})
}

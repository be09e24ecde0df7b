package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/developia-II/longform-translator-backend/utils"
)

// GetAdminStats returns basic aggregate counts for the dashboard
func (h *Handler) GetAdminStats(c *fiber.Ctx) error {
	ctx := c.UserContext()

	usersCount, err := h.users.CountUsers(ctx)
	if err != nil {
		log.Errorw("count users failed", "error", err)
		return utilsError(c)
	}

	stats, err := h.translations.TranslationStats(ctx)
	if err != nil {
		log.Errorw("translation stats failed", "error", err)
		return utilsError(c)
	}

	feedbackCount, err := h.feedback.CountFeedback(ctx)
	if err != nil {
		log.Errorw("count feedback failed", "error", err)
		return utilsError(c)
	}

	return c.JSON(fiber.Map{
		"stats": fiber.Map{
			"totalUsers":           usersCount,
			"totalTranslations":    stats.Total,
			"translationsByStatus": stats.ByStatus,
			"totalFeedbacks":       feedbackCount,
		},
	})
}

// GetAllUsers returns a list of users with basic public fields
func (h *Handler) GetAllUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	q := c.Query("q", "")

	users, total, err := h.users.ListUsers(c.UserContext(), q, int64(page), int64(limit))
	if err != nil {
		log.Errorw("list users failed", "error", err)
		return utilsError(c)
	}

	public := make([]fiber.Map, 0, len(users))
	for i := range users {
		u := userJSON(&users[i])
		u["createdAt"] = users[i].CreatedAt
		public = append(public, u)
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)

	return c.JSON(fiber.Map{
		"users":      public,
		"page":       page,
		"limit":      limit,
		"total":      total,
		"totalPages": totalPages,
	})
}

// utilsError provides a generic internal error response for admin endpoints
func utilsError(c *fiber.Ctx) error {
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error")
}

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// ErrorHandler renders errors that reach fiber as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		log.Errorw("unhandled error", "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/developia-II/longform-translator-backend/internal/database"
	"github.com/developia-II/longform-translator-backend/internal/models"
	"github.com/developia-II/longform-translator-backend/utils"
)

func userJSON(u *models.User) fiber.Map {
	return fiber.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}

func (h *Handler) Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warnw("signup body parse failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := utils.Validate.Struct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password")
	}

	now := time.Now()
	user := models.User{
		Name:      req.Name,
		Email:     strings.ToLower(req.Email),
		Password:  string(hashedPassword),
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := h.users.CreateUser(c.UserContext(), &user)
	if errors.Is(err, database.ErrDuplicate) {
		return utils.ErrorResponse(c, fiber.StatusConflict, "User already exists")
	}
	if err != nil {
		log.Errorw("create user failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create user")
	}
	user.ID = id

	token, err := utils.GenerateJWT(h.jwtSecret, user.ID, user.Role, h.tokenTTL)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  userJSON(&user),
		"token": token,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warnw("login body parse failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := utils.Validate.Struct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.users.GetUserByEmail(c.UserContext(), strings.ToLower(req.Email))
	if errors.Is(err, database.ErrNotFound) {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		log.Errorw("find user failed", "error", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token, err := utils.GenerateJWT(h.jwtSecret, user.ID, user.Role, h.tokenTTL)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(fiber.Map{
		"user":  userJSON(user),
		"token": token,
	})
}

func (h *Handler) AuthMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Missing authorization header")
	}

	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid authorization header")
	}

	userID, role, err := utils.ParseJWT(h.jwtSecret, tokenString)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid token")
	}

	c.Locals("userId", userID)
	c.Locals("role", role)
	return c.Next()
}

// AdminMiddleware ensures the requester has role == "admin"
func (h *Handler) AdminMiddleware(c *fiber.Ctx) error {
	role, _ := c.Locals("role").(string)
	if role != models.RoleAdmin {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Admins only")
	}
	return c.Next()
}

// Me returns the authenticated user's profile
func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.UserContext(), currentUser(c))
	if errors.Is(err, database.ErrNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch user")
	}

	return c.JSON(fiber.Map{
		"user": userJSON(user),
	})
}

func currentUser(c *fiber.Ctx) string {
	userID, _ := c.Locals("userId").(string)
	return userID
}

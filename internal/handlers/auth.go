package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lifeline/backend/internal/config"
	"github.com/lifeline/backend/internal/database"
	"github.com/lifeline/backend/internal/middleware"
	"github.com/lifeline/backend/internal/models"
	"github.com/lifeline/backend/internal/services"
	"github.com/lifeline/backend/internal/session"
	"github.com/lifeline/backend/pkg/logger"
	"github.com/lifeline/backend/pkg/utils"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB       *gorm.DB
	Sessions *session.Store
	Audit    *services.AuditService
	Cfg      config.SessionConfig
}

func NewAuthHandler(db *gorm.DB, sessions *session.Store, audit *services.AuditService, cfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{DB: db, Sessions: sessions, Audit: audit, Cfg: cfg}
}

type registerRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	Email      string `json:"email" validate:"required"`
	FullName   string `json:"fullName" validate:"required"`
	Phone      string `json:"phone"`
	BloodGroup string `json:"bloodGroup" validate:"required"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if err := validate.Struct(req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "All required fields must be filled")
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Registration failed")
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		Email:        req.Email,
		FullName:     req.FullName,
		Phone:        req.Phone,
		BloodGroup:   req.BloodGroup,
		Role:         models.UserRoleUser,
	}

	if err := h.DB.Create(&user).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return utils.Error(c, fiber.StatusBadRequest, "Username or email already exists")
		}
		logger.Error("user_create_failed", err, map[string]interface{}{
			"username": req.Username,
		})
		return utils.Error(c, fiber.StatusInternalServerError, "Registration failed")
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
	})

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &user.ID,
		Action:       "user.register",
		ResourceType: "user",
		ResourceID:   &user.ID,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Message(c, "Registration successful")
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	// Same response whether the user is unknown or the password is wrong.
	var user models.User
	if err := h.DB.First(&user, "username = ?", strings.TrimSpace(req.Username)).Error; err != nil {
		logger.Warn("login_failed", map[string]interface{}{
			"username": req.Username,
			"ip":       c.IP(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		logger.Warn("login_failed", map[string]interface{}{
			"username": req.Username,
			"ip":       c.IP(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	token := h.Sessions.Create(session.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		FullName: user.FullName,
	})

	c.Cookie(&fiber.Cookie{
		Name:     h.Cfg.CookieName,
		Value:    token,
		Expires:  time.Now().Add(time.Duration(h.Cfg.TTLHours) * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	logger.InfoWithUser(user.ID.String(), "user_login", map[string]interface{}{
		"username": user.Username,
		"ip":       c.IP(),
	})

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &user.ID,
		Action:       "user.login",
		ResourceType: "user",
		ResourceID:   &user.ID,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"role":     user.Role,
		"username": user.Username,
		"fullName": user.FullName,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	if token := c.Cookies(h.Cfg.CookieName); token != "" {
		h.Sessions.Destroy(token)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.Cfg.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
		Path:     "/",
	})

	if identity != nil {
		h.Audit.LogAsync(services.AuditEntry{
			UserID:       &identity.UserID,
			Action:       "user.logout",
			ResourceType: "user",
			ResourceID:   &identity.UserID,
			IPAddress:    c.IP(),
			RequestID:    getRequestID(c),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) Session(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"loggedIn": false})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"loggedIn": true,
		"userId":   identity.UserID,
		"username": identity.Username,
		"role":     identity.Role,
		"fullName": identity.FullName,
	})
}

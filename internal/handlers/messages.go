package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lifeline/backend/internal/middleware"
	"github.com/lifeline/backend/internal/models"
	"github.com/lifeline/backend/pkg/logger"
	"github.com/lifeline/backend/pkg/utils"
	"gorm.io/gorm"
)

type MessagesHandler struct {
	DB *gorm.DB
}

func NewMessagesHandler(db *gorm.DB) *MessagesHandler {
	return &MessagesHandler{DB: db}
}

type messageWithSender struct {
	models.ContactMessage
	SenderName  string `json:"senderName"`
	SenderEmail string `json:"senderEmail"`
}

type contactDonorRequest struct {
	DonorID       string `json:"donorId"`
	Message       string `json:"message"`
	SenderContact string `json:"senderContact"`
}

func (h *MessagesHandler) Contact(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	var req contactDonorRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	donorID, err := parseUUID(req.DonorID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid donor id")
	}

	// No existence check on the donor; a dangling reference surfaces the
	// same as any other insert failure.
	message := models.ContactMessage{
		SenderID:      identity.UserID,
		DonorID:       donorID,
		Message:       req.Message,
		SenderContact: req.SenderContact,
		Status:        models.MessageStatusUnread,
	}

	if err := h.DB.Create(&message).Error; err != nil {
		logger.ErrorWithUser(identity.UserID.String(), "contact_message_create_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to send message")
	}

	return utils.Message(c, "Message sent to donor")
}

// Received lists messages addressed to any donor record owned by the caller.
func (h *MessagesHandler) Received(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	var messages []messageWithSender
	err := h.DB.Table("contact_messages").
		Select("contact_messages.*, users.full_name AS sender_name, users.email AS sender_email").
		Joins("JOIN users ON users.id = contact_messages.sender_id").
		Joins("JOIN donors ON donors.id = contact_messages.donor_id").
		Where("donors.user_id = ?", identity.UserID).
		Order("contact_messages.created_at DESC").
		Scan(&messages).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to fetch messages")
	}

	return c.Status(fiber.StatusOK).JSON(messages)
}

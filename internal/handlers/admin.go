package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lifeline/backend/internal/middleware"
	"github.com/lifeline/backend/internal/models"
	"github.com/lifeline/backend/internal/services"
	"github.com/lifeline/backend/pkg/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type AdminHandler struct {
	DB    *gorm.DB
	Audit *services.AuditService
}

func NewAdminHandler(db *gorm.DB, audit *services.AuditService) *AdminHandler {
	return &AdminHandler{DB: db, Audit: audit}
}

// Stats runs the four counts concurrently; they are independent reads, not
// a consistent snapshot.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	var totalUsers, totalDonors, totalRequests, pendingRequests int64

	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		return h.DB.WithContext(ctx).Model(&models.User{}).
			Where("role = ?", models.UserRoleUser).
			Count(&totalUsers).Error
	})
	g.Go(func() error {
		return h.DB.WithContext(ctx).Model(&models.Donor{}).Count(&totalDonors).Error
	})
	g.Go(func() error {
		return h.DB.WithContext(ctx).Model(&models.BloodRequest{}).Count(&totalRequests).Error
	})
	g.Go(func() error {
		return h.DB.WithContext(ctx).Model(&models.BloodRequest{}).
			Where("status = ?", models.RequestStatusPending).
			Count(&pendingRequests).Error
	})
	if err := g.Wait(); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to fetch stats")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"totalUsers":      totalUsers,
		"totalDonors":     totalDonors,
		"totalRequests":   totalRequests,
		"pendingRequests": pendingRequests,
	})
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var users []models.User
	err := h.DB.
		Select("id", "username", "email", "full_name", "phone", "blood_group", "role", "created_at").
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to fetch users")
	}

	return c.Status(fiber.StatusOK).JSON(users)
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	userID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	// Admin rows are exempt; deleting one is a silent no-op.
	result := h.DB.Where("id = ? AND role <> ?", userID, models.UserRoleAdmin).Delete(&models.User{})
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to delete user")
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &identity.UserID,
		Action:       "admin.user_delete",
		ResourceType: "user",
		ResourceID:   &userID,
		Details:      map[string]interface{}{"rows_affected": result.RowsAffected},
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Message(c, "User deleted")
}

type adminDonorRow struct {
	models.Donor
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
}

// ListDonors uses a left join so donor rows whose owning user was deleted
// still appear (deletes do not cascade).
func (h *AdminHandler) ListDonors(c *fiber.Ctx) error {
	var donors []adminDonorRow
	err := h.DB.Table("donors").
		Select("donors.*, users.full_name, users.email, users.phone, users.username").
		Joins("LEFT JOIN users ON users.id = donors.user_id").
		Order("donors.created_at DESC").
		Scan(&donors).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to fetch donors")
	}

	return c.Status(fiber.StatusOK).JSON(donors)
}

func (h *AdminHandler) DeleteDonor(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	donorID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid donor id")
	}

	if err := h.DB.Delete(&models.Donor{}, "id = ?", donorID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to delete donor")
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &identity.UserID,
		Action:       "admin.donor_delete",
		ResourceType: "donor",
		ResourceID:   &donorID,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Message(c, "Donor deleted")
}

func (h *AdminHandler) UpdateRequestStatus(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid status value")
	}

	result := h.DB.Model(&models.BloodRequest{}).
		Where("id = ?", requestID).
		Update("status", models.RequestStatus(req.Status))
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to update request")
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &identity.UserID,
		Action:       "admin.request_status",
		ResourceType: "blood_request",
		ResourceID:   &requestID,
		Details:      map[string]interface{}{"status": req.Status},
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Message(c, "Request updated")
}

func (h *AdminHandler) DeleteRequest(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request id")
	}

	if err := h.DB.Delete(&models.BloodRequest{}, "id = ?", requestID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to delete request")
	}

	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &identity.UserID,
		Action:       "admin.request_delete",
		ResourceType: "blood_request",
		ResourceID:   &requestID,
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Message(c, "Request deleted")
}

type adminMessageRow struct {
	models.ContactMessage
	SenderName  string `json:"senderName"`
	SenderEmail string `json:"senderEmail"`
	DonorName   string `json:"donorName"`
	DonorEmail  string `json:"donorEmail"`
}

// ListMessages left-joins both sides so messages survive the deletion of
// their sender or target donor in the listing.
func (h *AdminHandler) ListMessages(c *fiber.Ctx) error {
	var messages []adminMessageRow
	err := h.DB.Table("contact_messages").
		Select("contact_messages.*, " +
			"senders.full_name AS sender_name, senders.email AS sender_email, " +
			"owners.full_name AS donor_name, owners.email AS donor_email").
		Joins("LEFT JOIN users AS senders ON senders.id = contact_messages.sender_id").
		Joins("LEFT JOIN donors ON donors.id = contact_messages.donor_id").
		Joins("LEFT JOIN users AS owners ON owners.id = donors.user_id").
		Order("contact_messages.created_at DESC").
		Scan(&messages).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to fetch messages")
	}

	return c.Status(fiber.StatusOK).JSON(messages)
}

func (h *AdminHandler) AuditLog(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit > 500 {
		limit = 500
	}

	var entries []models.AuditLog
	err := h.DB.Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to fetch audit log")
	}

	return c.Status(fiber.StatusOK).JSON(entries)
}

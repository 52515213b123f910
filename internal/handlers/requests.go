package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lifeline/backend/internal/middleware"
	"github.com/lifeline/backend/internal/models"
	"github.com/lifeline/backend/pkg/logger"
	"github.com/lifeline/backend/pkg/utils"
	"gorm.io/gorm"
)

type RequestsHandler struct {
	DB *gorm.DB
}

func NewRequestsHandler(db *gorm.DB) *RequestsHandler {
	return &RequestsHandler{DB: db}
}

type requestWithRequester struct {
	models.BloodRequest
	RequesterName  string `json:"requesterName"`
	RequesterEmail string `json:"requesterEmail"`
}

type createRequestRequest struct {
	BloodGroup      string `json:"bloodGroup"`
	UnitsNeeded     int    `json:"unitsNeeded"`
	Urgency         string `json:"urgency" validate:"required,oneof=low medium high critical"`
	HospitalName    string `json:"hospitalName"`
	HospitalAddress string `json:"hospitalAddress"`
	City            string `json:"city"`
	ContactNumber   string `json:"contactNumber"`
	Reason          string `json:"reason"`
}

func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	var req createRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid urgency value")
	}

	request := models.BloodRequest{
		RequesterID:     identity.UserID,
		BloodGroup:      req.BloodGroup,
		UnitsNeeded:     req.UnitsNeeded,
		Urgency:         models.Urgency(req.Urgency),
		HospitalName:    req.HospitalName,
		HospitalAddress: req.HospitalAddress,
		City:            req.City,
		ContactNumber:   req.ContactNumber,
		Reason:          req.Reason,
		Status:          models.RequestStatusPending,
	}

	if err := h.DB.Create(&request).Error; err != nil {
		logger.ErrorWithUser(identity.UserID.String(), "blood_request_create_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to create blood request")
	}

	return utils.Message(c, "Blood request created successfully")
}

// List returns every request to every authenticated caller; blood requests
// are public solicitations.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	var requests []requestWithRequester
	err := h.DB.Table("blood_requests").
		Select("blood_requests.*, users.full_name AS requester_name, users.email AS requester_email").
		Joins("JOIN users ON users.id = blood_requests.requester_id").
		Order("blood_requests.created_at DESC").
		Scan(&requests).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to fetch blood requests")
	}

	return c.Status(fiber.StatusOK).JSON(requests)
}

func (h *RequestsHandler) ListMy(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	var requests []models.BloodRequest
	err := h.DB.
		Where("requester_id = ?", identity.UserID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to fetch your requests")
	}

	return c.Status(fiber.StatusOK).JSON(requests)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved fulfilled cancelled"`
}

func (h *RequestsHandler) UpdateStatus(c *fiber.Ctx) error {
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

	// Scoped to the owning requester; a non-owner's update silently affects
	// zero rows.
	result := h.DB.Model(&models.BloodRequest{}).
		Where("id = ? AND requester_id = ?", requestID, identity.UserID).
		Update("status", models.RequestStatus(req.Status))
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to update request")
	}

	return utils.Message(c, "Request updated")
}

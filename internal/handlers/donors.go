package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lifeline/backend/internal/database"
	"github.com/lifeline/backend/internal/middleware"
	"github.com/lifeline/backend/internal/models"
	"github.com/lifeline/backend/pkg/logger"
	"github.com/lifeline/backend/pkg/utils"
	"gorm.io/gorm"
)

type DonorsHandler struct {
	DB *gorm.DB
}

func NewDonorsHandler(db *gorm.DB) *DonorsHandler {
	return &DonorsHandler{DB: db}
}

// donorWithOwner is the denormalized read view: a donor row joined with the
// owning user's contact fields.
type donorWithOwner struct {
	models.Donor
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type createDonorRequest struct {
	BloodGroup        string  `json:"bloodGroup"`
	Age               int     `json:"age"`
	Weight            float64 `json:"weight"`
	LastDonationDate  *string `json:"lastDonationDate"`
	Address           string  `json:"address"`
	City              string  `json:"city"`
	State             string  `json:"state"`
	MedicalConditions string  `json:"medicalConditions"`
}

func (h *DonorsHandler) Create(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	var req createDonorRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	donor := models.Donor{
		UserID:            identity.UserID,
		BloodGroup:        req.BloodGroup,
		Age:               req.Age,
		Weight:            req.Weight,
		LastDonationDate:  req.LastDonationDate,
		Address:           req.Address,
		City:              req.City,
		State:             req.State,
		Available:         true,
		MedicalConditions: req.MedicalConditions,
	}

	// The unique index on user_id makes this a conditional insert; no
	// check-then-insert race.
	if err := h.DB.Create(&donor).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return utils.Error(c, fiber.StatusBadRequest, "You are already registered as a donor")
		}
		logger.ErrorWithUser(identity.UserID.String(), "donor_create_failed", err, nil)
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to register as donor")
	}

	return utils.Message(c, "Successfully registered as donor")
}

func (h *DonorsHandler) List(c *fiber.Ctx) error {
	bloodGroup := strings.TrimSpace(c.Query("bloodGroup"))
	city := strings.TrimSpace(c.Query("city"))

	query := h.DB.Table("donors").
		Select("donors.*, users.full_name, users.email, users.phone").
		Joins("JOIN users ON users.id = donors.user_id").
		Where("donors.available = ?", true)

	if bloodGroup != "" {
		query = query.Where("donors.blood_group = ?", bloodGroup)
	}
	if city != "" {
		query = query.Where("donors.city LIKE ?", "%"+city+"%")
	}

	var donors []donorWithOwner
	if err := query.Order("donors.created_at DESC").Scan(&donors).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to fetch donors")
	}

	return c.Status(fiber.StatusOK).JSON(donors)
}

func (h *DonorsHandler) My(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	var donor donorWithOwner
	err := h.DB.Table("donors").
		Select("donors.*, users.full_name, users.email, users.phone").
		Joins("JOIN users ON users.id = donors.user_id").
		Where("donors.user_id = ?", identity.UserID).
		Take(&donor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Absent donor is null, not 404.
			return c.Status(fiber.StatusOK).JSON(nil)
		}
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to fetch donor info")
	}

	return c.Status(fiber.StatusOK).JSON(donor)
}

type updateDonorRequest struct {
	Available        bool    `json:"available"`
	LastDonationDate *string `json:"lastDonationDate"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	State            string  `json:"state"`
}

func (h *DonorsHandler) Update(c *fiber.Ctx) error {
	identity := middleware.GetIdentity(c)

	donorID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid donor id")
	}

	var req updateDonorRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	// Scoped to the owning user: a non-owner's update silently affects zero
	// rows.
	result := h.DB.Model(&models.Donor{}).
		Where("id = ? AND user_id = ?", donorID, identity.UserID).
		Updates(map[string]interface{}{
			"available":          req.Available,
			"last_donation_date": req.LastDonationDate,
			"address":            req.Address,
			"city":               req.City,
			"state":              req.State,
		})
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to update donor info")
	}

	return utils.Message(c, "Donor info updated")
}

package models

import "github.com/google/uuid"

type Donor struct {
	BaseModel
	// One donor row per user, enforced at the storage layer so
	// concurrent self-registrations cannot double-insert.
	UserID            uuid.UUID `json:"userID" gorm:"type:uuid;uniqueIndex;not null"`
	BloodGroup        string    `json:"bloodGroup" gorm:"type:varchar(5);not null;index"`
	Age               int       `json:"age" gorm:"not null"`
	Weight            float64   `json:"weight" gorm:"not null"`
	LastDonationDate  *string   `json:"lastDonationDate,omitempty" gorm:"type:date"`
	Address           string    `json:"address" gorm:"type:text;not null"`
	City              string    `json:"city" gorm:"type:varchar(100);not null;index"`
	State             string    `json:"state" gorm:"type:varchar(100);not null"`
	Available         bool      `json:"available" gorm:"not null;default:true"`
	MedicalConditions string    `json:"medicalConditions" gorm:"type:text"`
}

package models

import "github.com/google/uuid"

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusFulfilled RequestStatus = "fulfilled"
	RequestStatusCancelled RequestStatus = "cancelled"
)

type BloodRequest struct {
	BaseModel
	RequesterID     uuid.UUID     `json:"requesterID" gorm:"type:uuid;not null;index"`
	BloodGroup      string        `json:"bloodGroup" gorm:"type:varchar(5);not null"`
	UnitsNeeded     int           `json:"unitsNeeded" gorm:"not null"`
	Urgency         Urgency       `json:"urgency" gorm:"type:varchar(20);not null"`
	HospitalName    string        `json:"hospitalName" gorm:"type:varchar(255);not null"`
	HospitalAddress string        `json:"hospitalAddress" gorm:"type:text;not null"`
	City            string        `json:"city" gorm:"type:varchar(100);not null"`
	ContactNumber   string        `json:"contactNumber" gorm:"type:varchar(20);not null"`
	Reason          string        `json:"reason" gorm:"type:text"`
	Status          RequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
}

package models

import "github.com/google/uuid"

type MessageStatus string

const (
	MessageStatusUnread MessageStatus = "unread"
	MessageStatusRead   MessageStatus = "read"
)

type ContactMessage struct {
	BaseModel
	SenderID      uuid.UUID     `json:"senderID" gorm:"type:uuid;not null;index"`
	DonorID       uuid.UUID     `json:"donorID" gorm:"type:uuid;not null;index"`
	Message       string        `json:"message" gorm:"type:text;not null"`
	SenderContact string        `json:"senderContact" gorm:"type:varchar(100);not null"`
	Status        MessageStatus `json:"status" gorm:"type:varchar(10);not null;default:'unread'"`
}

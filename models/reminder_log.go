package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentReminderLog records every overdue reminder attempt
type PaymentReminderLog struct {
	Base
	PaymentID    uuid.UUID `gorm:"type:uuid;index;not null" json:"payment_id"`
	ProducerID   uuid.UUID `gorm:"type:uuid;index;not null" json:"producer_id"`
	TemplateID   uuid.UUID `gorm:"type:uuid;index" json:"template_id"`
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20)" json:"status"`  // sent, failed
	Channel      string    `gorm:"type:varchar(20)" json:"channel"` // whatsapp, sms
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentPaid       = "paid"
	PaymentOverdue    = "overdue"
)

// ValidPaymentStatus reports whether s is one of the stored payment states
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentPaid, PaymentOverdue:
		return true
	}
	return false
}

type Payment struct {
	Base
	EventID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"event_id"`
	Amount          float64    `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status          string     `gorm:"type:varchar(20);index;default:'pending'" json:"status"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	PaymentProofURL string     `json:"payment_proof_url,omitempty"`
	Notes           string     `gorm:"type:text" json:"notes"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// EffectiveDueDate is the due date, falling back to the event date
func (p *Payment) EffectiveDueDate() *time.Time {
	if p.DueDate != nil {
		return p.DueDate
	}
	if p.Event != nil {
		return &p.Event.EventDate
	}
	return nil
}

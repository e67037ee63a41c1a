package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SignaturePending   = "pending"
	SignatureSigned    = "signed"
	SignatureCancelled = "cancelled"
)

type Contract struct {
	Base
	EventID         uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"event_id"`
	Reference       string     `gorm:"type:varchar(24);index" json:"reference"`
	Content         string     `gorm:"type:text" json:"content"`
	Signed          bool       `gorm:"default:false" json:"signed"`
	SignatureStatus string     `gorm:"type:varchar(20);default:'pending'" json:"signature_status"`
	SignedAt        *time.Time `json:"signed_at,omitempty"`
	SignedBy        string     `json:"signed_by,omitempty"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

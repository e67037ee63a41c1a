package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventStatusPending   = "pending"
	EventStatusConfirmed = "confirmed"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

// Event is a booking of a DJ by a producer
type Event struct {
	Base
	DJID       uuid.UUID `gorm:"type:uuid;index;not null" json:"dj_id"`
	ProducerID uuid.UUID `gorm:"type:uuid;index;not null" json:"producer_id"`
	EventName  string    `gorm:"not null" json:"event_name"`
	EventDate  time.Time `gorm:"index;not null" json:"event_date"`
	Venue      string    `json:"venue"`
	City       string    `json:"city"`
	CacheValue *float64  `gorm:"type:decimal(12,2)" json:"cache_value"`
	Status     string    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Notes      string    `gorm:"type:text" json:"notes"`

	DJ       *DJ       `gorm:"foreignKey:DJID" json:"dj,omitempty"`
	Producer *Profile  `gorm:"foreignKey:ProducerID" json:"producer,omitempty"`
	Contract *Contract `gorm:"foreignKey:EventID" json:"contract,omitempty"`
	Payment  *Payment  `gorm:"foreignKey:EventID" json:"payment,omitempty"`
}

// HasCache reports whether the event carries a billable cache value
func (e *Event) HasCache() bool {
	return e.CacheValue != nil && *e.CacheValue != 0
}

package models

import "github.com/google/uuid"

var MediaCategories = []string{"photo", "video", "logo", "presskit", "rider", "other"}

// ValidMediaCategory reports whether c is a known media category
func ValidMediaCategory(c string) bool {
	for _, known := range MediaCategories {
		if c == known {
			return true
		}
	}
	return false
}

// DJMedia is a file stored in object storage and attached to a DJ
type DJMedia struct {
	Base
	DJID        uuid.UUID `gorm:"type:uuid;index;not null" json:"dj_id"`
	Category    string    `gorm:"type:varchar(20);index;not null" json:"category"`
	FileName    string    `gorm:"not null" json:"file_name"`
	ObjectKey   string    `gorm:"not null" json:"-"`
	FileURL     string    `gorm:"not null" json:"file_url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
}

func (DJMedia) TableName() string {
	return "dj_media"
}

package models

// DJ is a performing artist represented by the agency
type DJ struct {
	Base
	ArtistName      string     `gorm:"not null;index" json:"artist_name"`
	RealName        string     `json:"real_name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	City            string     `json:"city"`
	State           string     `gorm:"type:varchar(2)" json:"state"`
	Genres          StringList `gorm:"type:text" json:"genres"`
	BaseCache       float64    `gorm:"type:decimal(12,2);default:0" json:"base_cache"`
	Instagram       string     `json:"instagram"`
	SoundCloud      string     `gorm:"column:soundcloud" json:"soundcloud"`
	YouTube         string     `gorm:"column:youtube" json:"youtube"`
	Bio             string     `gorm:"type:text" json:"bio"`
	ProfileImageURL string     `json:"profile_image_url"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`

	Media []DJMedia `gorm:"foreignKey:DJID" json:"media,omitempty"`
}

func (DJ) TableName() string {
	return "djs"
}

package models

import (
	"time"

	"gorm.io/gorm"

	"djagency-backend/utils"
)

const (
	RoleAdmin    = "admin"
	RoleProducer = "producer"
)

// Profile is a back-office login, either an agency admin or a producer
type Profile struct {
	Base
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	Name        string     `gorm:"not null" json:"name"`
	Phone       string     `json:"phone"`
	Role        string     `gorm:"type:varchar(20);index;not null" json:"role"`
	CompanyName string     `json:"company_name"`
	Document    string     `json:"document"` // CPF or CNPJ
	LastLogin   *time.Time `json:"last_login,omitempty"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
}

// BeforeCreate assigns the id and hashes the plain password
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if err := p.Base.BeforeCreate(tx); err != nil {
		return err
	}
	hashed, err := utils.HashPassword(p.Password)
	if err != nil {
		return err
	}
	p.Password = hashed
	return nil
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

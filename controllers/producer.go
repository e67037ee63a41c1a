package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"djagency-backend/config"
	"djagency-backend/models"
	"djagency-backend/utils"
)

type CreateProducerInput struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
	Document    string `json:"document"`
}

// UpdateProducerInput is the privileged update: every field, including
// credentials, may change
type UpdateProducerInput struct {
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"company_name"`
	Document    *string `json:"document"`
	IsActive    *bool   `json:"is_active"`
}

func findProducer(c *gin.Context, db *gorm.DB) (*models.Profile, bool) {
	id, ok := parseID(c, "id", "produtor")
	if !ok {
		return nil, false
	}
	var producer models.Profile
	if err := db.Where("id = ? AND role = ?", id, models.RoleProducer).First(&producer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Produtor não encontrado")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return nil, false
	}
	return &producer, true
}

// CreateProducer adds a producer login
func CreateProducer(c *gin.Context) {
	var input CreateProducerInput
	if !bindJSON(c, &input) {
		return
	}

	email := utils.NormalizeEmail(input.Email)
	if !utils.ValidateEmail(email) {
		utils.RespondWithError(c, http.StatusBadRequest, "E-mail inválido")
		return
	}
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Telefone inválido")
		return
	}

	var existing models.Profile
	if err := config.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Este e-mail já está cadastrado")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithAppError(c, err)
		return
	}

	producer := models.Profile{
		Email:       email,
		Password:    input.Password,
		Name:        strings.TrimSpace(input.Name),
		Phone:       input.Phone,
		Role:        models.RoleProducer,
		CompanyName: input.CompanyName,
		Document:    input.Document,
		IsActive:    true,
	}
	if err := config.DB.Create(&producer).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, producer)
}

// GetProducers lists producers, optionally filtered by ?active and ?q
func GetProducers(c *gin.Context) {
	query := config.DB.Where("role = ?", models.RoleProducer)

	switch c.Query("active") {
	case "true":
		query = query.Where("is_active = ?", true)
	case "false":
		query = query.Where("is_active = ?", false)
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company_name) LIKE ?", like, like, like)
	}

	var producers []models.Profile
	if err := query.Order("name ASC").Find(&producers).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, producers)
}

func GetProducer(c *gin.Context) {
	producer, ok := findProducer(c, config.DB)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, producer)
}

// UpdateProducer applies the privileged producer update
func UpdateProducer(c *gin.Context) {
	var input UpdateProducerInput
	if !bindJSON(c, &input) {
		return
	}

	tx := config.DB.Begin()
	defer tx.Rollback()

	producer, ok := findProducer(c, tx)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if input.Email != nil {
		email := utils.NormalizeEmail(*input.Email)
		if !utils.ValidateEmail(email) {
			utils.RespondWithError(c, http.StatusBadRequest, "E-mail inválido")
			return
		}
		if email != producer.Email {
			var count int64
			if err := tx.Model(&models.Profile{}).Where("email = ? AND id <> ?", email, producer.ID).Count(&count).Error; err != nil {
				utils.RespondWithAppError(c, err)
				return
			}
			if count > 0 {
				utils.RespondWithError(c, http.StatusConflict, "Este e-mail já está cadastrado")
				return
			}
			updates["email"] = email
		}
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			utils.RespondWithError(c, http.StatusBadRequest, "A senha deve ter pelo menos 8 caracteres")
			return
		}
		hashed, err := utils.HashPassword(*input.Password)
		if err != nil {
			utils.RespondWithAppError(c, utils.Internal("Falha ao atualizar senha", err))
			return
		}
		updates["password"] = hashed
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Telefone inválido")
			return
		}
		updates["phone"] = *input.Phone
	}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.CompanyName != nil {
		updates["company_name"] = *input.CompanyName
	}
	if input.Document != nil {
		updates["document"] = *input.Document
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := tx.Model(producer).Updates(updates).Error; err != nil {
			utils.RespondWithAppError(c, err)
			return
		}
	}
	if err := tx.First(producer, "id = ?", producer.ID).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, producer)
}

// DeleteProducer deactivates the producer, keeping their events
func DeleteProducer(c *gin.Context) {
	producer, ok := findProducer(c, config.DB)
	if !ok {
		return
	}
	if err := config.DB.Model(producer).Update("is_active", false).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produtor desativado com sucesso"})
}

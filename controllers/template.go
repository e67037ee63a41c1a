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

// CreateTemplateInput defines the expected JSON structure
type CreateTemplateInput struct {
	Type    string `json:"type" binding:"required,oneof=payment_overdue contract_pending"`
	Message string `json:"message" binding:"required"`
}

// UpdateTemplateInput defines the expected JSON structure
type UpdateTemplateInput struct {
	Message  *string `json:"message"`
	IsActive *bool   `json:"is_active"`
}

func loadTemplate(c *gin.Context) (*models.NotificationTemplate, bool) {
	id, ok := parseID(c, "id", "modelo")
	if !ok {
		return nil, false
	}
	var template models.NotificationTemplate
	if err := config.DB.First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Modelo não encontrado")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return nil, false
	}
	return &template, true
}

// CreateTemplate adds the template for a type; each type has at most one
func CreateTemplate(c *gin.Context) {
	var input CreateTemplateInput
	if !bindJSON(c, &input) {
		return
	}
	if strings.TrimSpace(input.Message) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Mensagem é obrigatória")
		return
	}

	var existing models.NotificationTemplate
	if err := config.DB.Where("type = ?", input.Type).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Já existe um modelo para este tipo")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithAppError(c, err)
		return
	}

	template := models.NotificationTemplate{
		Type:     input.Type,
		Message:  input.Message,
		IsActive: true,
	}
	if err := config.DB.Create(&template).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, template)
}

func GetTemplates(c *gin.Context) {
	var templates []models.NotificationTemplate
	if err := config.DB.Order("type ASC").Find(&templates).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func GetTemplate(c *gin.Context) {
	template, ok := loadTemplate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, template)
}

func UpdateTemplate(c *gin.Context) {
	var input UpdateTemplateInput
	if !bindJSON(c, &input) {
		return
	}
	template, ok := loadTemplate(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if input.Message != nil {
		if strings.TrimSpace(*input.Message) == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Mensagem é obrigatória")
			return
		}
		updates["message"] = *input.Message
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := config.DB.Model(template).Updates(updates).Error; err != nil {
			utils.RespondWithAppError(c, err)
			return
		}
		if err := config.DB.First(template, "id = ?", template.ID).Error; err != nil {
			utils.RespondWithAppError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, template)
}

func DeleteTemplate(c *gin.Context) {
	template, ok := loadTemplate(c)
	if !ok {
		return
	}
	if err := config.DB.Delete(template).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Modelo excluído com sucesso"})
}

// GetReminderLogs lists reminder attempts, newest first, optionally for one payment
func GetReminderLogs(c *gin.Context) {
	query := config.DB.Model(&models.PaymentReminderLog{})
	if paymentID := c.Query("payment_id"); paymentID != "" {
		id, err := parseUUIDQuery(c, "payment_id")
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "ID de pagamento inválido")
			return
		}
		query = query.Where("payment_id = ?", *id)
	}

	var logs []models.PaymentReminderLog
	if err := query.Order("sent_at DESC").Limit(200).Find(&logs).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

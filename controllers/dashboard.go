package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"djagency-backend/config"
	"djagency-backend/models"
	"djagency-backend/services"
	"djagency-backend/utils"
)

const (
	upcomingWindowDays = 30
	upcomingLimit      = 10
)

type AdminDashboard struct {
	ActiveDJs        int64                     `json:"active_djs"`
	ActiveProducers  int64                     `json:"active_producers"`
	UpcomingEvents   []EventResponse           `json:"upcoming_events"`
	PendingContracts int64                     `json:"pending_contracts"`
	Payments         services.FinancialSummary `json:"payments"`
}

type ProducerDashboard struct {
	UpcomingEvents   []EventResponse           `json:"upcoming_events"`
	PendingContracts []models.Contract         `json:"pending_contracts"`
	Payments         services.FinancialSummary `json:"payments"`
}

// upcomingEvents returns the next non-cancelled events inside the window
func upcomingEvents(db *gorm.DB, producerID *uuid.UUID, now time.Time) ([]models.Event, error) {
	start := utils.BeginningOfDay(now)
	query := withEventRelations(db).
		Where("event_date >= ? AND event_date < ?", start, start.AddDate(0, 0, upcomingWindowDays+1)).
		Where("status <> ?", models.EventStatusCancelled)
	if producerID != nil {
		query = query.Where("producer_id = ?", *producerID)
	}
	var events []models.Event
	err := query.Order("event_date ASC").Limit(upcomingLimit).Find(&events).Error
	return events, err
}

func GetAdminDashboard(c *gin.Context) {
	var dash AdminDashboard

	if err := config.DB.Model(&models.DJ{}).Where("is_active = ?", true).Count(&dash.ActiveDJs).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	if err := config.DB.Model(&models.Profile{}).
		Where("role = ? AND is_active = ?", models.RoleProducer, true).
		Count(&dash.ActiveProducers).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	if err := config.DB.Model(&models.Contract{}).
		Where("signature_status = ?", models.SignaturePending).
		Count(&dash.PendingContracts).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	events, err := upcomingEvents(config.DB, nil, time.Now())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	dash.UpcomingEvents = toEventResponses(events)

	var payments []models.Payment
	if err := withPaymentRelations(config.DB).Find(&payments).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	dash.Payments = services.Summarize(payments)

	c.JSON(http.StatusOK, dash)
}

func GetProducerDashboard(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Usuário não encontrado")
		return
	}
	var dash ProducerDashboard

	events, err := upcomingEvents(config.DB, &userID, time.Now())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	dash.UpcomingEvents = toEventResponses(events)

	ownEvents := config.DB.Model(&models.Event{}).Select("id").Where("producer_id = ?", userID)

	if err := config.DB.Preload("Event").
		Where("event_id IN (?) AND signature_status = ?", ownEvents, models.SignaturePending).
		Order("created_at ASC").
		Find(&dash.PendingContracts).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	var payments []models.Payment
	if err := withPaymentRelations(config.DB).Where("event_id IN (?)", ownEvents).Find(&payments).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	dash.Payments = services.Summarize(payments)

	c.JSON(http.StatusOK, dash)
}

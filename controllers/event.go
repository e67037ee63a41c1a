package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"djagency-backend/config"
	"djagency-backend/models"
	"djagency-backend/services"
	"djagency-backend/utils"
)

type CreateEventInput struct {
	DJID            uuid.UUID `json:"dj_id" binding:"required"`
	ProducerID      uuid.UUID `json:"producer_id" binding:"required"`
	EventName       string    `json:"event_name" binding:"required"`
	EventDate       string    `json:"event_date" binding:"required"`
	Venue           string    `json:"venue"`
	City            string    `json:"city"`
	CacheValue      *float64  `json:"cache_value"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes"`
	DueDate         string    `json:"due_date"`
	ContractContent string    `json:"contract_content"`
}

type UpdateEventInput struct {
	DJID       *uuid.UUID `json:"dj_id"`
	ProducerID *uuid.UUID `json:"producer_id"`
	EventName  *string    `json:"event_name"`
	EventDate  *string    `json:"event_date"`
	Venue      *string    `json:"venue"`
	City       *string    `json:"city"`
	CacheValue *float64   `json:"cache_value"`
	Status     *string    `json:"status"`
	Notes      *string    `json:"notes"`
}

// EventResponse is an event with its derived payment status
type EventResponse struct {
	models.Event
	PaymentStatus string `json:"payment_status"`
}

func toEventResponse(e models.Event) EventResponse {
	return EventResponse{Event: e, PaymentStatus: services.PaymentStatusFor(&e, e.Payment)}
}

func toEventResponses(events []models.Event) []EventResponse {
	out := make([]EventResponse, len(events))
	for i := range events {
		out[i] = toEventResponse(events[i])
	}
	return out
}

func validEventStatus(s string) bool {
	switch s {
	case models.EventStatusPending, models.EventStatusConfirmed, models.EventStatusCompleted, models.EventStatusCancelled:
		return true
	}
	return false
}

// withEventRelations preloads what a joined read of an event returns
func withEventRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("DJ").Preload("Producer").Preload("Contract").Preload("Payment")
}

func defaultContractContent(dj *models.DJ, producer *models.Profile, event *models.Event) string {
	cache := "isento"
	if event.HasCache() {
		cache = "R$ " + utils.FormatBRL(*event.CacheValue)
	}
	return fmt.Sprintf(
		"Contrato de apresentação artística entre %s e %s para o evento %s em %s, %s. Cachê: %s.",
		dj.ArtistName, producer.Name, event.EventName, event.EventDate.Format("02/01/2006"), event.Venue, cache,
	)
}

// contractReference is the human-facing contract number, e.g. CTR-20300110-K7QX2M
func contractReference(eventDate time.Time) string {
	return "CTR-" + eventDate.Format("20060102") + "-" + utils.GenerateRandomString(6)
}

func checkEventParties(c *gin.Context, db *gorm.DB, djID, producerID uuid.UUID) (*models.DJ, *models.Profile, bool) {
	var dj models.DJ
	if err := db.First(&dj, "id = ?", djID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "DJ não encontrado")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return nil, nil, false
	}
	var producer models.Profile
	if err := db.Where("id = ? AND role = ?", producerID, models.RoleProducer).First(&producer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Produtor não encontrado")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return nil, nil, false
	}
	return &dj, &producer, true
}

// CreateEvent books a DJ. A positive cache also creates the pending
// payment and the contract awaiting signature, in the same transaction.
func CreateEvent(c *gin.Context) {
	var input CreateEventInput
	if !bindJSON(c, &input) {
		return
	}

	eventDate, err := utils.ParseFlexibleDate(input.EventDate)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Data do evento inválida")
		return
	}
	var dueDate *time.Time
	if input.DueDate != "" {
		d, err := utils.ParseFlexibleDate(input.DueDate)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Data de vencimento inválida")
			return
		}
		dueDate = &d
	}
	if input.CacheValue != nil && *input.CacheValue < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "O cachê não pode ser negativo")
		return
	}
	if input.Status == "" {
		input.Status = models.EventStatusPending
	}
	if !validEventStatus(input.Status) {
		utils.RespondWithError(c, http.StatusBadRequest, "Status do evento inválido")
		return
	}

	tx := config.DB.Begin()
	defer tx.Rollback()

	dj, producer, ok := checkEventParties(c, tx, input.DJID, input.ProducerID)
	if !ok {
		return
	}

	event := models.Event{
		DJID:       dj.ID,
		ProducerID: producer.ID,
		EventName:  strings.TrimSpace(input.EventName),
		EventDate:  eventDate,
		Venue:      input.Venue,
		City:       input.City,
		CacheValue: input.CacheValue,
		Status:     input.Status,
		Notes:      input.Notes,
	}
	if err := tx.Create(&event).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	var payment *models.Payment
	var contract *models.Contract
	if event.HasCache() && *event.CacheValue > 0 {
		if dueDate == nil {
			d := event.EventDate
			dueDate = &d
		}
		payment = &models.Payment{
			EventID: event.ID,
			Amount:  *event.CacheValue,
			Status:  models.PaymentPending,
			DueDate: dueDate,
		}
		if err := tx.Create(payment).Error; err != nil {
			utils.RespondWithAppError(c, err)
			return
		}

		content := input.ContractContent
		if content == "" {
			content = defaultContractContent(dj, producer, &event)
		}
		contract = &models.Contract{
			EventID:         event.ID,
			Reference:       contractReference(event.EventDate),
			Content:         content,
			SignatureStatus: models.SignaturePending,
		}
		if err := tx.Create(contract).Error; err != nil {
			utils.RespondWithAppError(c, err)
			return
		}
	}

	if err := withEventRelations(tx).First(&event, "id = ?", event.ID).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	publish(c, "events", services.ChangeInsert, event)
	if payment != nil {
		publish(c, "payments", services.ChangeInsert, payment)
	}
	if contract != nil {
		publish(c, "contracts", services.ChangeInsert, contract)
	}

	c.JSON(http.StatusCreated, toEventResponse(event))
}

// GetEvents lists events by date; producers only see their own
func GetEvents(c *gin.Context) {
	query := withEventRelations(config.DB.Model(&models.Event{}))

	if isAdmin(c) {
		if producerID := c.Query("producer_id"); producerID != "" {
			id, err := uuid.Parse(producerID)
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "ID de produtor inválido")
				return
			}
			query = query.Where("producer_id = ?", id)
		}
	} else {
		userID, _ := utils.CurrentUserID(c)
		query = query.Where("producer_id = ?", userID)
	}

	if djID := c.Query("dj_id"); djID != "" {
		id, err := uuid.Parse(djID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "ID de DJ inválido")
			return
		}
		query = query.Where("dj_id = ?", id)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.Query("date_from"); from != "" {
		d, err := utils.ParseFlexibleDate(from)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Data inicial inválida")
			return
		}
		query = query.Where("event_date >= ?", utils.BeginningOfDay(d))
	}
	if to := c.Query("date_to"); to != "" {
		d, err := utils.ParseFlexibleDate(to)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Data final inválida")
			return
		}
		query = query.Where("event_date < ?", utils.BeginningOfDay(d).AddDate(0, 0, 1))
	}

	var events []models.Event
	if err := query.Order("event_date ASC").Find(&events).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEventResponses(events))
}

// loadEvent fetches an event the caller may see; other producers' events are 404
func loadEvent(c *gin.Context, db *gorm.DB) (*models.Event, bool) {
	id, ok := parseID(c, "id", "evento")
	if !ok {
		return nil, false
	}

	query := db.Where("id = ?", id)
	if !isAdmin(c) {
		userID, _ := utils.CurrentUserID(c)
		query = query.Where("producer_id = ?", userID)
	}

	var event models.Event
	if err := query.First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Evento não encontrado")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return nil, false
	}
	return &event, true
}

func GetEvent(c *gin.Context) {
	event, ok := loadEvent(c, withEventRelations(config.DB))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toEventResponse(*event))
}

// UpdateEvent edits an event and keeps an unpaid payment's amount in step
// with the cache value
func UpdateEvent(c *gin.Context) {
	var input UpdateEventInput
	if !bindJSON(c, &input) {
		return
	}

	tx := config.DB.Begin()
	defer tx.Rollback()

	event, ok := loadEvent(c, withEventRelations(tx))
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if input.DJID != nil || input.ProducerID != nil {
		djID, producerID := event.DJID, event.ProducerID
		if input.DJID != nil {
			djID = *input.DJID
		}
		if input.ProducerID != nil {
			producerID = *input.ProducerID
		}
		if _, _, ok := checkEventParties(c, tx, djID, producerID); !ok {
			return
		}
		updates["dj_id"] = djID
		updates["producer_id"] = producerID
	}
	if input.EventName != nil {
		name := strings.TrimSpace(*input.EventName)
		if name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Nome do evento é obrigatório")
			return
		}
		updates["event_name"] = name
	}
	if input.EventDate != nil {
		d, err := utils.ParseFlexibleDate(*input.EventDate)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Data do evento inválida")
			return
		}
		updates["event_date"] = d
	}
	if input.Venue != nil {
		updates["venue"] = *input.Venue
	}
	if input.City != nil {
		updates["city"] = *input.City
	}
	if input.Status != nil {
		if !validEventStatus(*input.Status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Status do evento inválido")
			return
		}
		updates["status"] = *input.Status
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.CacheValue != nil {
		if *input.CacheValue < 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "O cachê não pode ser negativo")
			return
		}
		updates["cache_value"] = *input.CacheValue
	}

	if len(updates) > 0 {
		if err := tx.Model(&models.Event{}).Where("id = ?", event.ID).Updates(updates).Error; err != nil {
			utils.RespondWithAppError(c, err)
			return
		}
	}

	var createdPayment, removedPayment *models.Payment
	var removedContract *models.Contract
	if input.CacheValue != nil && *input.CacheValue > 0 {
		if event.Payment == nil {
			due := event.EventDate
			if d, ok := updates["event_date"].(time.Time); ok {
				due = d
			}
			createdPayment = &models.Payment{
				EventID: event.ID,
				Amount:  *input.CacheValue,
				Status:  models.PaymentPending,
				DueDate: &due,
			}
			if err := tx.Create(createdPayment).Error; err != nil {
				utils.RespondWithAppError(c, err)
				return
			}
		} else if event.Payment.Status != models.PaymentPaid && event.Payment.Amount != *input.CacheValue {
			if err := tx.Model(event.Payment).Update("amount", *input.CacheValue).Error; err != nil {
				utils.RespondWithAppError(c, err)
				return
			}
		}
	} else if input.CacheValue != nil {
		// the event is now exempt: drop what is still open, keep what was settled
		if event.Payment != nil && event.Payment.Status != models.PaymentPaid {
			if err := tx.Delete(event.Payment).Error; err != nil {
				utils.RespondWithAppError(c, err)
				return
			}
			removedPayment = event.Payment
		}
		if event.Contract != nil && event.Contract.SignatureStatus == models.SignaturePending {
			if err := tx.Delete(event.Contract).Error; err != nil {
				utils.RespondWithAppError(c, err)
				return
			}
			removedContract = event.Contract
		}
	}

	var updated models.Event
	if err := withEventRelations(tx).First(&updated, "id = ?", event.ID).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	var createdContract *models.Contract
	if updated.HasCache() && *updated.CacheValue > 0 && updated.Contract == nil {
		createdContract = &models.Contract{
			EventID:         updated.ID,
			Reference:       contractReference(updated.EventDate),
			Content:         defaultContractContent(updated.DJ, updated.Producer, &updated),
			SignatureStatus: models.SignaturePending,
		}
		if err := tx.Create(createdContract).Error; err != nil {
			utils.RespondWithAppError(c, err)
			return
		}
		updated.Contract = createdContract
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	publish(c, "events", services.ChangeUpdate, updated)
	switch {
	case createdPayment != nil:
		publish(c, "payments", services.ChangeInsert, createdPayment)
	case removedPayment != nil:
		publish(c, "payments", services.ChangeDelete, removedPayment)
	case updated.Payment != nil && input.CacheValue != nil:
		publish(c, "payments", services.ChangeUpdate, updated.Payment)
	}
	if createdContract != nil {
		publish(c, "contracts", services.ChangeInsert, createdContract)
	}
	if removedContract != nil {
		publish(c, "contracts", services.ChangeDelete, removedContract)
	}

	c.JSON(http.StatusOK, toEventResponse(updated))
}

// DeleteEvent removes the event with its payment and contract
func DeleteEvent(c *gin.Context) {
	tx := config.DB.Begin()
	defer tx.Rollback()

	event, ok := loadEvent(c, withEventRelations(tx))
	if !ok {
		return
	}

	if err := tx.Where("event_id = ?", event.ID).Delete(&models.Payment{}).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	if err := tx.Where("event_id = ?", event.ID).Delete(&models.Contract{}).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	if err := tx.Delete(&models.Event{}, "id = ?", event.ID).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	if event.Payment != nil {
		publish(c, "payments", services.ChangeDelete, event.Payment)
	}
	if event.Contract != nil {
		publish(c, "contracts", services.ChangeDelete, event.Contract)
	}
	publish(c, "events", services.ChangeDelete, event)

	c.JSON(http.StatusOK, gin.H{"message": "Evento excluído com sucesso"})
}

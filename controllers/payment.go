package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"djagency-backend/config"
	"djagency-backend/logger"
	"djagency-backend/models"
	"djagency-backend/services"
	"djagency-backend/utils"
)

type UpdatePaymentInput struct {
	Amount  *float64 `json:"amount"`
	Status  *string  `json:"status"`
	DueDate *string  `json:"due_date"`
	Notes   *string  `json:"notes"`
}

// PaymentResponse is a payment with the status shown to users
type PaymentResponse struct {
	models.Payment
	DisplayStatus string `json:"display_status"`
}

func toPaymentResponses(payments []models.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = PaymentResponse{Payment: payments[i], DisplayStatus: services.PaymentStatusFor(payments[i].Event, &payments[i])}
	}
	return out
}

func withPaymentRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Event").Preload("Event.DJ").Preload("Event.Producer")
}

// paymentScope restricts producers to payments of their own events
func paymentScope(c *gin.Context, db *gorm.DB) *gorm.DB {
	if isAdmin(c) {
		return db
	}
	userID, _ := utils.CurrentUserID(c)
	return db.Where("event_id IN (?)", config.DB.Model(&models.Event{}).Select("id").Where("producer_id = ?", userID))
}

func parseUUIDQuery(c *gin.Context, key string) (*uuid.UUID, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("%s inválido", key)
	}
	return &id, nil
}

func parseDateQuery(c *gin.Context, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	d, err := utils.ParseFlexibleDate(v)
	if err != nil {
		return nil, fmt.Errorf("%s inválido", key)
	}
	return &d, nil
}

func parseAmountQuery(c *gin.Context, key string) (*float64, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("%s inválido", key)
	}
	return &f, nil
}

// paymentFilterFromQuery reads the list filters shared by listing and export
func paymentFilterFromQuery(c *gin.Context) (services.PaymentFilter, error) {
	var f services.PaymentFilter
	var err error
	if f.DJID, err = parseUUIDQuery(c, "dj_id"); err != nil {
		return f, err
	}
	if f.ProducerID, err = parseUUIDQuery(c, "producer_id"); err != nil {
		return f, err
	}
	if f.DateFrom, err = parseDateQuery(c, "date_from"); err != nil {
		return f, err
	}
	if f.DateTo, err = parseDateQuery(c, "date_to"); err != nil {
		return f, err
	}
	if f.MinAmount, err = parseAmountQuery(c, "min_amount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = parseAmountQuery(c, "max_amount"); err != nil {
		return f, err
	}
	f.Status = c.Query("status")
	if f.Status != "" && !models.ValidPaymentStatus(f.Status) {
		return f, errors.New("status inválido")
	}
	f.Query = c.Query("q")
	return f, nil
}

// visiblePayments fetches every payment the caller may see, then filters
// and sorts in memory
func visiblePayments(c *gin.Context) ([]models.Payment, bool) {
	filter, err := paymentFilterFromQuery(c)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Filtro inválido: "+err.Error())
		return nil, false
	}

	var payments []models.Payment
	if err := paymentScope(c, withPaymentRelations(config.DB.Model(&models.Payment{}))).Find(&payments).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return nil, false
	}

	payments = services.FilterPayments(payments, filter)
	if err := services.SortPayments(payments, c.Query("sort"), c.DefaultQuery("order", "asc")); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Ordenação inválida: "+c.Query("sort"))
		return nil, false
	}
	return payments, true
}

// GetPayments returns one page of the filtered list plus a summary of all matches
func GetPayments(c *gin.Context) {
	payments, ok := visiblePayments(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if perPage > 200 {
		perPage = 200
	}
	items, meta := services.Paginate(payments, page, perPage)

	c.JSON(http.StatusOK, gin.H{
		"data":    toPaymentResponses(items),
		"meta":    meta,
		"summary": services.Summarize(payments),
	})
}

func loadPayment(c *gin.Context, db *gorm.DB) (*models.Payment, bool) {
	id, ok := parseID(c, "id", "pagamento")
	if !ok {
		return nil, false
	}
	var payment models.Payment
	if err := paymentScope(c, db).Where("id = ?", id).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Pagamento não encontrado")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return nil, false
	}
	return &payment, true
}

func GetPayment(c *gin.Context) {
	payment, ok := loadPayment(c, withPaymentRelations(config.DB))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toPaymentResponses([]models.Payment{*payment})[0])
}

// UpdatePayment edits amount, status, due date and notes
func UpdatePayment(c *gin.Context) {
	var input UpdatePaymentInput
	if !bindJSON(c, &input) {
		return
	}

	payment, ok := loadPayment(c, config.DB)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if input.Amount != nil {
		if *input.Amount < 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "O valor não pode ser negativo")
			return
		}
		updates["amount"] = *input.Amount
	}
	if input.Status != nil {
		status := *input.Status
		if !models.ValidPaymentStatus(status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Status de pagamento inválido")
			return
		}
		updates["status"] = status
		if status == models.PaymentPaid && payment.PaidAt == nil {
			now := time.Now()
			updates["paid_at"] = &now
		}
		if status != models.PaymentPaid {
			updates["paid_at"] = nil
		}
	}
	if input.DueDate != nil {
		if *input.DueDate == "" {
			updates["due_date"] = nil
		} else {
			d, err := utils.ParseFlexibleDate(*input.DueDate)
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "Data de vencimento inválida")
				return
			}
			updates["due_date"] = d
		}
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	if len(updates) > 0 {
		if err := config.DB.Model(payment).Updates(updates).Error; err != nil {
			utils.RespondWithAppError(c, err)
			return
		}
	}
	respondWithPayment(c, payment.ID, services.ChangeUpdate)
}

// respondWithPayment reloads the payment, publishes it and writes it out
func respondWithPayment(c *gin.Context, id uuid.UUID, changeType string) {
	var payment models.Payment
	if err := withPaymentRelations(config.DB).First(&payment, "id = ?", id).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	publish(c, "payments", changeType, payment)
	c.JSON(http.StatusOK, toPaymentResponses([]models.Payment{payment})[0])
}

// MarkPaymentPaid settles a payment
func MarkPaymentPaid(c *gin.Context) {
	payment, ok := loadPayment(c, config.DB)
	if !ok {
		return
	}
	if payment.Status == models.PaymentPaid {
		utils.RespondWithError(c, http.StatusConflict, "Pagamento já está quitado")
		return
	}

	now := time.Now()
	res := config.DB.Model(&models.Payment{}).
		Where("id = ? AND status <> ?", payment.ID, models.PaymentPaid).
		Updates(map[string]interface{}{"status": models.PaymentPaid, "paid_at": &now})
	if res.Error != nil {
		utils.RespondWithAppError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusConflict, "Pagamento já está quitado")
		return
	}
	respondWithPayment(c, payment.ID, services.ChangeUpdate)
}

// UploadPaymentProof stores the producer's receipt and moves the payment to processing
func UploadPaymentProof(c *gin.Context) {
	payment, ok := loadPayment(c, config.DB)
	if !ok {
		return
	}
	if payment.Status == models.PaymentPaid {
		utils.RespondWithError(c, http.StatusConflict, "Pagamento já está quitado")
		return
	}

	file, ok := readUpload(c, "file", maxProofSize, proofTypes)
	if !ok {
		return
	}

	key := file.objectKey("proofs", payment.ID)
	if err := deps.Storage.Put(c.Request.Context(), key, file.Reader(), file.Size(), file.ContentType); err != nil {
		utils.RespondWithAppError(c, utils.Internal("Falha ao enviar comprovante", err))
		return
	}

	res := config.DB.Model(&models.Payment{}).
		Where("id = ? AND status <> ?", payment.ID, models.PaymentPaid).
		Updates(map[string]interface{}{
			"payment_proof_url": deps.Storage.URL(key),
			"status":            models.PaymentProcessing,
		})
	if res.Error != nil || res.RowsAffected == 0 {
		if err := deps.Storage.Delete(c.Request.Context(), key); err != nil {
			logger.L().Warn("failed to remove orphaned proof", zap.String("key", key), zap.Error(err))
		}
		if res.Error != nil {
			utils.RespondWithAppError(c, res.Error)
		} else {
			utils.RespondWithError(c, http.StatusConflict, "Pagamento já está quitado")
		}
		return
	}

	respondWithPayment(c, payment.ID, services.ChangeUpdate)
}

func exportFileName(ext string) string {
	return fmt.Sprintf("pagamentos-%s.%s", time.Now().Format("2006-01-02"), ext)
}

// ExportPaymentsCSV writes every visible payment, ignoring pagination
func ExportPaymentsCSV(c *gin.Context) {
	payments, ok := visiblePayments(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFileName("csv")+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := services.WritePaymentsCSV(c.Writer, payments); err != nil {
		logger.L().Error("failed to write csv export", zap.Error(err))
	}
}

func ExportPaymentsXLSX(c *gin.Context) {
	payments, ok := visiblePayments(c)
	if !ok {
		return
	}

	buf, err := services.PaymentsWorkbook(payments)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Falha ao gerar planilha", err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFileName("xlsx")+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// SweepOverduePayments runs the overdue sweep on demand
func SweepOverduePayments(c *gin.Context) {
	if deps.Overdue == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Rotina de vencimentos indisponível")
		return
	}
	result, err := deps.Overdue.Run(c.Request.Context())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

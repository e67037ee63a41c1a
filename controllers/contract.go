package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"djagency-backend/config"
	"djagency-backend/models"
	"djagency-backend/services"
	"djagency-backend/utils"
)

type UpdateContractInput struct {
	Content         *string `json:"content"`
	SignatureStatus *string `json:"signature_status"`
}

type SignContractInput struct {
	SignedBy string `json:"signed_by"`
}

func validSignatureStatus(s string) bool {
	switch s {
	case models.SignaturePending, models.SignatureSigned, models.SignatureCancelled:
		return true
	}
	return false
}

// contractScope restricts producers to contracts of their own events
func contractScope(c *gin.Context, db *gorm.DB) *gorm.DB {
	if isAdmin(c) {
		return db
	}
	userID, _ := utils.CurrentUserID(c)
	return db.Where("event_id IN (?)", config.DB.Model(&models.Event{}).Select("id").Where("producer_id = ?", userID))
}

func withContractRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Event").Preload("Event.DJ").Preload("Event.Producer")
}

func GetContracts(c *gin.Context) {
	query := contractScope(c, withContractRelations(config.DB.Model(&models.Contract{})))

	if status := c.Query("status"); status != "" {
		query = query.Where("signature_status = ?", status)
	}
	if signed := c.Query("signed"); signed != "" {
		b, err := strconv.ParseBool(signed)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Parâmetro signed inválido")
			return
		}
		query = query.Where("signed = ?", b)
	}

	var contracts []models.Contract
	if err := query.Order("created_at DESC").Find(&contracts).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func loadContract(c *gin.Context, db *gorm.DB) (*models.Contract, bool) {
	id, ok := parseID(c, "id", "contrato")
	if !ok {
		return nil, false
	}
	var contract models.Contract
	if err := contractScope(c, db).Where("id = ?", id).First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Contrato não encontrado")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return nil, false
	}
	return &contract, true
}

func GetContract(c *gin.Context) {
	contract, ok := loadContract(c, withContractRelations(config.DB))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, contract)
}

// UpdateContract lets an admin edit the text or the signature status
func UpdateContract(c *gin.Context) {
	var input UpdateContractInput
	if !bindJSON(c, &input) {
		return
	}

	contract, ok := loadContract(c, config.DB)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if input.SignatureStatus != nil {
		status := *input.SignatureStatus
		if !validSignatureStatus(status) {
			utils.RespondWithError(c, http.StatusBadRequest, "Status de assinatura inválido")
			return
		}
		updates["signature_status"] = status
		updates["signed"] = status == models.SignatureSigned
		if status == models.SignatureSigned && contract.SignedAt == nil {
			now := time.Now()
			updates["signed_at"] = &now
		}
		if status == models.SignaturePending {
			updates["signed_at"] = nil
			updates["signed_by"] = ""
		}
	}

	if len(updates) > 0 {
		if err := config.DB.Model(contract).Updates(updates).Error; err != nil {
			utils.RespondWithAppError(c, err)
			return
		}
	}
	if err := withContractRelations(config.DB).First(contract, "id = ?", contract.ID).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	publish(c, "contracts", services.ChangeUpdate, contract)
	c.JSON(http.StatusOK, contract)
}

// SignContract records the producer's signature on their own contract
func SignContract(c *gin.Context) {
	var input SignContractInput
	if c.Request.ContentLength > 0 && !bindJSON(c, &input) {
		return
	}

	contract, ok := loadContract(c, config.DB)
	if !ok {
		return
	}
	switch {
	case contract.Signed || contract.SignatureStatus == models.SignatureSigned:
		utils.RespondWithError(c, http.StatusConflict, "Contrato já assinado")
		return
	case contract.SignatureStatus == models.SignatureCancelled:
		utils.RespondWithError(c, http.StatusConflict, "Contrato cancelado não pode ser assinado")
		return
	}

	signedBy := input.SignedBy
	if signedBy == "" {
		userID, _ := utils.CurrentUserID(c)
		var profile models.Profile
		if err := config.DB.First(&profile, "id = ?", userID).Error; err == nil {
			signedBy = profile.Name
		}
	}

	now := time.Now()
	// the status guard keeps two concurrent signatures from both succeeding
	res := config.DB.Model(&models.Contract{}).
		Where("id = ? AND signature_status = ?", contract.ID, models.SignaturePending).
		Updates(map[string]interface{}{
			"signed":           true,
			"signature_status": models.SignatureSigned,
			"signed_at":        &now,
			"signed_by":        signedBy,
		})
	if res.Error != nil {
		utils.RespondWithAppError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusConflict, "Contrato já assinado")
		return
	}

	if err := withContractRelations(config.DB).First(contract, "id = ?", contract.ID).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	publish(c, "contracts", services.ChangeUpdate, contract)
	c.JSON(http.StatusOK, contract)
}

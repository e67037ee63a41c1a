package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"djagency-backend/config"
	"djagency-backend/models"
	"djagency-backend/utils"
)

// UpdateProfileInput holds the fields a user may change on their own profile
type UpdateProfileInput struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"company_name"`
	Document    *string `json:"document"`
}

func GetProfile(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Usuário não encontrado")
		return
	}

	var profile models.Profile
	if err := config.DB.First(&profile, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Usuário não encontrado")
		return
	}

	c.JSON(http.StatusOK, profile)
}

func UpdateProfile(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Usuário não encontrado")
		return
	}

	var input UpdateProfileInput
	if !bindJSON(c, &input) {
		return
	}

	var profile models.Profile
	if err := config.DB.First(&profile, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Usuário não encontrado")
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Nome é obrigatório")
			return
		}
		updates["name"] = name
	}
	if input.Phone != nil {
		if *input.Phone != "" && !utils.ValidatePhone(*input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Telefone inválido")
			return
		}
		updates["phone"] = *input.Phone
	}
	if input.CompanyName != nil {
		updates["company_name"] = *input.CompanyName
	}
	if input.Document != nil {
		updates["document"] = *input.Document
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&profile).Updates(updates).Error; err != nil {
			utils.RespondWithAppError(c, err)
			return
		}
		if err := config.DB.First(&profile, "id = ?", userID).Error; err != nil {
			utils.RespondWithAppError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, profile)
}

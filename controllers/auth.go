package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"djagency-backend/config"
	"djagency-backend/logger"
	"djagency-backend/models"
	"djagency-backend/utils"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ActiveProfile runs after utils.AuthMiddleware: the token's profile must
// still exist and be active, and its stored role replaces the role claim
func ActiveProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := utils.CurrentUserID(c)
		if !ok {
			utils.AbortWithError(c, utils.Unauthorized(""))
			return
		}

		var profile models.Profile
		err := config.DB.Select("id", "role", "is_active").First(&profile, "id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.AbortWithError(c, utils.Unauthorized("Usuário não encontrado"))
			return
		}
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}
		if !profile.IsActive {
			utils.AbortWithError(c, utils.Unauthorized("Conta desativada"))
			return
		}

		c.Set(utils.ContextKeyRole, profile.Role)
		c.Next()
	}
}

func Login(c *gin.Context) {
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}

	var profile models.Profile
	err := config.DB.Where("email = ?", utils.NormalizeEmail(input.Email)).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "E-mail ou senha inválidos")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, profile.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "E-mail ou senha inválidos")
		return
	}
	if !profile.IsActive {
		utils.RespondWithError(c, http.StatusForbidden, "Conta desativada, fale com a agência")
		return
	}

	token, err := utils.GenerateToken(deps.JWT.Secret, deps.JWT.TTL(), profile.ID.String(), profile.Role)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Falha ao gerar token", err))
		return
	}

	now := time.Now()
	if err := config.DB.Model(&profile).Update("last_login", &now).Error; err != nil {
		logger.L().Warn("failed to record last login", zap.String("profile_id", profile.ID.String()), zap.Error(err))
	}

	utils.SetTokenCookie(c, token, deps.JWT.TTL(), deps.SecureCookies)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  profile,
	})
}

func Logout(c *gin.Context) {
	c.SetCookie(utils.TokenCookie, "", -1, "/", "", deps.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"message": "Sessão encerrada"})
}

func Me(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Usuário não encontrado")
		return
	}

	var profile models.Profile
	if err := config.DB.First(&profile, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Usuário não encontrado")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// ChangePassword updates the caller's own password
func ChangePassword(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Usuário não encontrado")
		return
	}

	var input ChangePasswordInput
	if !bindJSON(c, &input) {
		return
	}

	var profile models.Profile
	if err := config.DB.First(&profile, "id = ?", userID).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	if !utils.CheckPasswordHash(input.CurrentPassword, profile.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Senha atual incorreta")
		return
	}

	hashed, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Falha ao atualizar senha", err))
		return
	}
	if err := config.DB.Model(&profile).Update("password", hashed).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Senha atualizada com sucesso"})
}

package controllers

import (
	"errors"
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

type SharePasswordInput struct {
	Password string `json:"password" binding:"required"`
}

// PublicDJProfile is what a share link exposes: no contact data, no cache
type PublicDJProfile struct {
	ID              uuid.UUID        `json:"id"`
	ArtistName      string           `json:"artist_name"`
	City            string           `json:"city"`
	State           string           `json:"state"`
	Genres          []string         `json:"genres"`
	Instagram       string           `json:"instagram"`
	SoundCloud      string           `json:"soundcloud"`
	YouTube         string           `json:"youtube"`
	Bio             string           `json:"bio"`
	ProfileImageURL string           `json:"profile_image_url"`
	Media           []models.DJMedia `json:"media"`
}

func publicProfile(dj *models.DJ) PublicDJProfile {
	media := dj.Media
	if media == nil {
		media = []models.DJMedia{}
	}
	genres := []string(dj.Genres)
	if genres == nil {
		genres = []string{}
	}
	return PublicDJProfile{
		ID:              dj.ID,
		ArtistName:      dj.ArtistName,
		City:            dj.City,
		State:           dj.State,
		Genres:          genres,
		Instagram:       dj.Instagram,
		SoundCloud:      dj.SoundCloud,
		YouTube:         dj.YouTube,
		Bio:             dj.Bio,
		ProfileImageURL: dj.ProfileImageURL,
		Media:           media,
	}
}

// CreateShareLink issues a password-protected link to a DJ's public profile
func CreateShareLink(c *gin.Context) {
	djID, ok := parseID(c, "id", "DJ")
	if !ok {
		return
	}
	var input SharePasswordInput
	if !bindJSON(c, &input) {
		return
	}

	var dj models.DJ
	if err := config.DB.First(&dj, "id = ?", djID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "DJ não encontrado")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return
	}

	var createdBy *uuid.UUID
	if userID, ok := utils.CurrentUserID(c); ok {
		createdBy = &userID
	}

	link, err := deps.Shares.Create(c.Request.Context(), dj.ID, input.Password, createdBy)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	resp := gin.H{
		"token":      link.Token,
		"dj_id":      link.DJID,
		"created_at": link.CreatedAt,
		"expires_at": link.ExpiresAt,
	}
	c.JSON(http.StatusCreated, resp)
}

// ResolveShareLink is public: the password unlocks the DJ profile and media
func ResolveShareLink(c *gin.Context) {
	var input SharePasswordInput
	if !bindJSON(c, &input) {
		return
	}

	link, err := deps.Shares.Resolve(c.Request.Context(), c.Param("token"), input.Password)
	switch {
	case errors.Is(err, services.ErrShareNotFound), errors.Is(err, services.ErrShareExpired):
		utils.RespondWithError(c, http.StatusNotFound, "Link não encontrado ou expirado")
		return
	case errors.Is(err, services.ErrInvalidSharePassword):
		utils.RespondWithError(c, http.StatusUnauthorized, "Senha incorreta")
		return
	case err != nil:
		utils.RespondWithAppError(c, err)
		return
	}

	var dj models.DJ
	if err := config.DB.Preload("Media", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).Where("id = ? AND is_active = ?", link.DJID, true).First(&dj).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Link não encontrado ou expirado")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return
	}

	var expiresIn *int64
	if link.ExpiresAt != nil {
		secs := int64(time.Until(*link.ExpiresAt).Seconds())
		expiresIn = &secs
	}
	c.JSON(http.StatusOK, gin.H{
		"dj":         publicProfile(&dj),
		"expires_in": expiresIn,
	})
}

func RevokeShareLink(c *gin.Context) {
	err := deps.Shares.Revoke(c.Request.Context(), c.Param("token"))
	if errors.Is(err, services.ErrShareNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, "Link não encontrado")
		return
	}
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Link revogado com sucesso"})
}

package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"djagency-backend/config"
	"djagency-backend/models"
	"djagency-backend/services"
	"djagency-backend/utils"
)

// CreateDJInput defines the expected JSON structure for creating a DJ
type CreateDJInput struct {
	ArtistName      string   `json:"artist_name" binding:"required"`
	RealName        string   `json:"real_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Genres          []string `json:"genres"`
	BaseCache       float64  `json:"base_cache"`
	Instagram       string   `json:"instagram"`
	SoundCloud      string   `json:"soundcloud"`
	YouTube         string   `json:"youtube"`
	Bio             string   `json:"bio"`
	ProfileImageURL string   `json:"profile_image_url"`
}

// UpdateDJInput uses pointers so omitted fields stay untouched
type UpdateDJInput struct {
	ArtistName      *string   `json:"artist_name"`
	RealName        *string   `json:"real_name"`
	Email           *string   `json:"email"`
	Phone           *string   `json:"phone"`
	City            *string   `json:"city"`
	State           *string   `json:"state"`
	Genres          *[]string `json:"genres"`
	BaseCache       *float64  `json:"base_cache"`
	Instagram       *string   `json:"instagram"`
	SoundCloud      *string   `json:"soundcloud"`
	YouTube         *string   `json:"youtube"`
	Bio             *string   `json:"bio"`
	ProfileImageURL *string   `json:"profile_image_url"`
	IsActive        *bool     `json:"is_active"`
}

func validateDJContact(c *gin.Context, email, phone string, baseCache float64) bool {
	if email != "" && !utils.ValidateEmail(email) {
		utils.RespondWithError(c, http.StatusBadRequest, "E-mail inválido")
		return false
	}
	if phone != "" && !utils.ValidatePhone(phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Telefone inválido")
		return false
	}
	if baseCache < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "O cachê base não pode ser negativo")
		return false
	}
	return true
}

// CreateDJ registers a new DJ
func CreateDJ(c *gin.Context) {
	var input CreateDJInput
	if !bindJSON(c, &input) {
		return
	}
	input.ArtistName = strings.TrimSpace(input.ArtistName)
	if input.ArtistName == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Nome artístico é obrigatório")
		return
	}
	if !validateDJContact(c, input.Email, input.Phone, input.BaseCache) {
		return
	}

	dj := models.DJ{
		ArtistName:      input.ArtistName,
		RealName:        input.RealName,
		Email:           utils.NormalizeEmail(input.Email),
		Phone:           input.Phone,
		City:            input.City,
		State:           strings.ToUpper(input.State),
		Genres:          models.StringList(input.Genres),
		BaseCache:       input.BaseCache,
		Instagram:       input.Instagram,
		SoundCloud:      input.SoundCloud,
		YouTube:         input.YouTube,
		Bio:             input.Bio,
		ProfileImageURL: input.ProfileImageURL,
		IsActive:        true,
	}

	if err := config.DB.Create(&dj).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	publish(c, "djs", services.ChangeInsert, dj)
	c.JSON(http.StatusCreated, dj)
}

// GetDJs lists DJs ordered by artist name, optionally filtered by ?active and ?q
func GetDJs(c *gin.Context) {
	query := config.DB.Model(&models.DJ{})

	if active := c.Query("active"); active != "" {
		isActive, err := strconv.ParseBool(active)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Parâmetro active inválido")
			return
		}
		query = query.Where("is_active = ?", isActive)
	} else if !isAdmin(c) {
		query = query.Where("is_active = ?", true)
	}

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(artist_name) LIKE ? OR LOWER(real_name) LIKE ? OR LOWER(city) LIKE ?", like, like, like)
	}

	var djs []models.DJ
	if err := query.Order("artist_name ASC").Find(&djs).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, djs)
}

// GetDJ retrieves a DJ with its media
func GetDJ(c *gin.Context) {
	id, ok := parseID(c, "id", "DJ")
	if !ok {
		return
	}

	var dj models.DJ
	if err := config.DB.Preload("Media", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).First(&dj, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "DJ não encontrado")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, dj)
}

// UpdateDJ updates the provided fields of a DJ
func UpdateDJ(c *gin.Context) {
	id, ok := parseID(c, "id", "DJ")
	if !ok {
		return
	}

	var input UpdateDJInput
	if !bindJSON(c, &input) {
		return
	}

	tx := config.DB.Begin()
	defer tx.Rollback()

	var dj models.DJ
	if err := tx.First(&dj, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "DJ não encontrado")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return
	}

	updates := map[string]interface{}{}
	if input.ArtistName != nil {
		name := strings.TrimSpace(*input.ArtistName)
		if name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Nome artístico é obrigatório")
			return
		}
		updates["artist_name"] = name
	}
	email, phone, baseCache := "", "", 0.0
	if input.Email != nil {
		email = *input.Email
		updates["email"] = utils.NormalizeEmail(email)
	}
	if input.Phone != nil {
		phone = *input.Phone
		updates["phone"] = phone
	}
	if input.BaseCache != nil {
		baseCache = *input.BaseCache
		updates["base_cache"] = baseCache
	}
	if !validateDJContact(c, email, phone, baseCache) {
		return
	}
	if input.RealName != nil {
		updates["real_name"] = *input.RealName
	}
	if input.City != nil {
		updates["city"] = *input.City
	}
	if input.State != nil {
		updates["state"] = strings.ToUpper(*input.State)
	}
	if input.Genres != nil {
		updates["genres"] = models.StringList(*input.Genres)
	}
	if input.Instagram != nil {
		updates["instagram"] = *input.Instagram
	}
	if input.SoundCloud != nil {
		updates["soundcloud"] = *input.SoundCloud
	}
	if input.YouTube != nil {
		updates["youtube"] = *input.YouTube
	}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.ProfileImageURL != nil {
		updates["profile_image_url"] = *input.ProfileImageURL
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := tx.Model(&dj).Updates(updates).Error; err != nil {
			utils.RespondWithAppError(c, err)
			return
		}
	}

	if err := tx.First(&dj, "id = ?", id).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	publish(c, "djs", services.ChangeUpdate, dj)
	c.JSON(http.StatusOK, dj)
}

// DeleteDJ deactivates a DJ; events keep pointing at the row
func DeleteDJ(c *gin.Context) {
	id, ok := parseID(c, "id", "DJ")
	if !ok {
		return
	}

	var dj models.DJ
	if err := config.DB.First(&dj, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "DJ não encontrado")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return
	}

	if err := config.DB.Model(&dj).Update("is_active", false).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	dj.IsActive = false

	publish(c, "djs", services.ChangeUpdate, dj)
	c.JSON(http.StatusOK, gin.H{"message": "DJ desativado com sucesso"})
}

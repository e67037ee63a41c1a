package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"djagency-backend/config"
	"djagency-backend/logger"
	"djagency-backend/models"
	"djagency-backend/services"
	"djagency-backend/utils"
)

// mediaTypes accepts what a press kit is made of: images, video, audio and documents
func mediaTypes(mime string) bool {
	if scriptableTypes[mime] {
		return false
	}
	for _, prefix := range []string{"image/", "video/", "audio/"} {
		if strings.HasPrefix(mime, prefix) {
			return true
		}
	}
	switch mime {
	case "application/pdf", "application/zip",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword":
		return true
	}
	return false
}

// UploadDJMedia stores a file in object storage and attaches it to the DJ
func UploadDJMedia(c *gin.Context) {
	djID, ok := parseID(c, "id", "DJ")
	if !ok {
		return
	}

	category := c.DefaultPostForm("category", "other")
	if !models.ValidMediaCategory(category) {
		utils.RespondWithError(c, http.StatusBadRequest, "Categoria inválida")
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

	file, ok := readUpload(c, "file", maxMediaSize, mediaTypes)
	if !ok {
		return
	}

	key := file.objectKey("media", dj.ID)
	if err := deps.Storage.Put(c.Request.Context(), key, file.Reader(), file.Size(), file.ContentType); err != nil {
		utils.RespondWithAppError(c, utils.Internal("Falha ao enviar arquivo", err))
		return
	}

	media := models.DJMedia{
		DJID:        dj.ID,
		Category:    category,
		FileName:    file.FileName,
		ObjectKey:   key,
		FileURL:     deps.Storage.URL(key),
		ContentType: file.ContentType,
		Size:        file.Size(),
	}
	if err := config.DB.Create(&media).Error; err != nil {
		if delErr := deps.Storage.Delete(c.Request.Context(), key); delErr != nil {
			logger.L().Warn("failed to remove orphaned media", zap.String("key", key), zap.Error(delErr))
		}
		utils.RespondWithAppError(c, err)
		return
	}

	publish(c, "dj_media", services.ChangeInsert, media)
	c.JSON(http.StatusCreated, media)
}

// GetDJMedia lists a DJ's files, newest first, optionally by ?category
func GetDJMedia(c *gin.Context) {
	djID, ok := parseID(c, "id", "DJ")
	if !ok {
		return
	}

	query := config.DB.Where("dj_id = ?", djID)
	if category := c.Query("category"); category != "" {
		if !models.ValidMediaCategory(category) {
			utils.RespondWithError(c, http.StatusBadRequest, "Categoria inválida")
			return
		}
		query = query.Where("category = ?", category)
	}

	var media []models.DJMedia
	if err := query.Order("created_at DESC").Find(&media).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, media)
}

// DeleteDJMedia removes the stored object and then the row
func DeleteDJMedia(c *gin.Context) {
	id, ok := parseID(c, "id", "mídia")
	if !ok {
		return
	}

	var media models.DJMedia
	if err := config.DB.First(&media, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Mídia não encontrada")
		} else {
			utils.RespondWithAppError(c, err)
		}
		return
	}

	if err := deps.Storage.Delete(c.Request.Context(), media.ObjectKey); err != nil {
		utils.RespondWithAppError(c, utils.Internal("Falha ao remover arquivo", err))
		return
	}
	if err := config.DB.Delete(&media).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	publish(c, "dj_media", services.ChangeDelete, media)
	c.JSON(http.StatusOK, gin.H{"message": "Mídia removida com sucesso"})
}

package controllers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"djagency-backend/utils"
)

const (
	maxProofSize = 10 << 20
	maxMediaSize = 50 << 20
)

// upload is a multipart file read into memory with its sniffed type
type upload struct {
	FileName    string
	ContentType string
	Extension   string
	Data        []byte
}

func (u *upload) Reader() io.Reader {
	return bytes.NewReader(u.Data)
}

func (u *upload) Size() int64 {
	return int64(len(u.Data))
}

// objectKey builds "<prefix>/<owner>/<random><ext>"
func (u *upload) objectKey(prefix string, owner uuid.UUID) string {
	return fmt.Sprintf("%s/%s/%s%s", prefix, owner, uuid.NewString(), u.Extension)
}

// readUpload reads the multipart field, rejecting files over maxSize or
// whose sniffed type allowed refuses
func readUpload(c *gin.Context, field string, maxSize int64, allowed func(mime string) bool) (*upload, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Arquivo não enviado")
		return nil, false
	}
	if fh.Size > maxSize {
		utils.RespondWithError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("Arquivo maior que %d MB", maxSize>>20))
		return nil, false
	}

	f, err := fh.Open()
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Falha ao ler arquivo", err))
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Falha ao ler arquivo", err))
		return nil, false
	}
	if int64(len(data)) > maxSize {
		utils.RespondWithError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("Arquivo maior que %d MB", maxSize>>20))
		return nil, false
	}
	if len(data) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Arquivo vazio")
		return nil, false
	}

	mtype := mimetype.Detect(data)
	contentType := strings.SplitN(mtype.String(), ";", 2)[0]
	if allowed != nil && !allowed(contentType) {
		utils.RespondWithError(c, http.StatusUnsupportedMediaType, "Tipo de arquivo não permitido: "+contentType)
		return nil, false
	}

	return &upload{
		FileName:    path.Base(strings.ReplaceAll(fh.Filename, "\\", "/")),
		ContentType: contentType,
		Extension:   mtype.Extension(),
		Data:        data,
	}, true
}

// scriptableTypes render as active documents in a browser
var scriptableTypes = map[string]bool{
	"image/svg+xml":         true,
	"text/html":             true,
	"application/xhtml+xml": true,
	"text/xml":              true,
	"application/xml":       true,
}

// proofTypes accepts PDFs and raster images
func proofTypes(mime string) bool {
	if scriptableTypes[mime] {
		return false
	}
	return mime == "application/pdf" || strings.HasPrefix(mime, "image/")
}

package utils

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"djagency-backend/logger"

	"go.uber.org/zap"
)

// Error codes returned in the "code" field
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeValidation   = "VALIDATION_FAILED"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
)

var statusCodes = map[int]string{
	http.StatusBadRequest:          ErrCodeBadRequest,
	http.StatusUnauthorized:        ErrCodeUnauthorized,
	http.StatusForbidden:           ErrCodeForbidden,
	http.StatusNotFound:            ErrCodeNotFound,
	http.StatusConflict:            ErrCodeConflict,
	http.StatusUnprocessableEntity: ErrCodeValidation,
	http.StatusServiceUnavailable:  ErrCodeUnavailable,
}

// AppError is an error with the HTTP status and user-facing message attached
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(status int, message, fallback string) *AppError {
	if message == "" {
		message = fallback
	}
	return &AppError{Status: status, Code: codeFor(status), Message: message}
}

func BadRequest(message string) *AppError {
	return newAppError(http.StatusBadRequest, message, "Requisição inválida")
}

func Unauthorized(message string) *AppError {
	return newAppError(http.StatusUnauthorized, message, "Autenticação necessária")
}

func Forbidden(message string) *AppError {
	return newAppError(http.StatusForbidden, message, "Você não tem permissão para esta ação")
}

func NotFound(message string) *AppError {
	return newAppError(http.StatusNotFound, message, "Registro não encontrado")
}

func Conflict(message string) *AppError {
	return newAppError(http.StatusConflict, message, "Registro já existe")
}

func Validation(message string) *AppError {
	return newAppError(http.StatusUnprocessableEntity, message, "Dados inválidos")
}

// Internal wraps an unexpected error; the cause is logged, never shown
func Internal(message string, err error) *AppError {
	e := newAppError(http.StatusInternalServerError, message, "Erro interno, tente novamente")
	e.Err = err
	return e
}

func codeFor(status int) string {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	return ErrCodeInternal
}

var friendlyPatterns = []struct {
	pattern *regexp.Regexp
	build   func() *AppError
}{
	{regexp.MustCompile(`(?i)already registered|duplicate key|unique constraint`), func() *AppError {
		return Conflict("Este registro já está cadastrado")
	}},
	{regexp.MustCompile(`(?i)row-level security|permission denied`), func() *AppError {
		return Forbidden("Você não tem permissão para realizar esta operação")
	}},
	{regexp.MustCompile(`(?i)violates foreign key|foreign key constraint`), func() *AppError {
		return BadRequest("Registro relacionado não encontrado")
	}},
	{regexp.MustCompile(`(?i)invalid input syntax|out of range`), func() *AppError {
		return BadRequest("Valor inválido informado")
	}},
}

// Classify turns any error into an AppError, sniffing known database
// messages into friendlier ones
func Classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Conflict("Este registro já está cadastrado")
	}
	msg := err.Error()
	for _, fp := range friendlyPatterns {
		if fp.pattern.MatchString(msg) {
			e := fp.build()
			e.Err = err
			return e
		}
	}
	return Internal("", err)
}

// RespondWithError writes {"error": message, "code": CODE}
func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message, "code": codeFor(status)})
}

// RespondWithAppError classifies err, logs server-side failures and writes the response
func RespondWithAppError(c *gin.Context, err error) {
	appErr := Classify(err)
	if appErr.Status >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(appErr.Status, gin.H{"error": appErr.Message, "code": appErr.Code})
}

// AbortWithError is RespondWithAppError for middleware
func AbortWithError(c *gin.Context, err error) {
	RespondWithAppError(c, err)
	c.Abort()
}

// Meta describes a page of results
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta computes the page count for total items
func NewMeta(page, perPage, total int) Meta {
	totalPages := 0
	if perPage > 0 {
		totalPages = total / perPage
		if total%perPage > 0 {
			totalPages++
		}
	}
	return Meta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// utils/auth.go
package utils

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Context keys set by AuthMiddleware
const (
	ContextKeyUserID = "userId"
	ContextKeyRole   = "role"
)

// TokenCookie is the HttpOnly cookie carrying the session token
const TokenCookie = "token"

// PasswordCost is the bcrypt cost, lowered in tests
var PasswordCost = 12

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken signs an HS256 token for the profile
func GenerateToken(secret string, ttl time.Duration, userID, role string) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not set")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	})
	return token.SignedString([]byte(secret))
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return ""
	}
	// EventSource clients cannot set headers, fall back to the session cookie
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// Auth middleware
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			AbortWithError(c, Unauthorized("Autenticação necessária"))
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				AbortWithError(c, Unauthorized("Sessão expirada, faça login novamente"))
				return
			}
			AbortWithError(c, Unauthorized("Token inválido"))
			return
		}
		if !token.Valid {
			AbortWithError(c, Unauthorized("Token inválido"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			AbortWithError(c, Unauthorized("Token inválido"))
			return
		}
		sub, _ := claims["sub"].(string)
		if _, err := uuid.Parse(sub); err != nil {
			AbortWithError(c, Unauthorized("Token inválido"))
			return
		}
		role, _ := claims["role"].(string)

		c.Set(ContextKeyUserID, sub)
		c.Set(ContextKeyRole, role)
		c.Next()
	}
}

// RequireRole aborts unless the authenticated role is one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := CurrentRole(c)
		if !ok {
			AbortWithError(c, Unauthorized(""))
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		AbortWithError(c, Forbidden(""))
	}
}

// CurrentUserID returns the authenticated profile id
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CurrentRole returns the authenticated role
func CurrentRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyRole)
	if !exists {
		return "", false
	}
	r, ok := v.(string)
	return r, ok
}

// SetTokenCookie writes the session cookie the browser client relies on
func SetTokenCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

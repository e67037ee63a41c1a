package routes

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"djagency-backend/logger"
	"djagency-backend/models"
	"djagency-backend/utils"
)

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	t.Run("success", func(t *testing.T) {
		w := s.do(http.MethodPost, "/auth/login", "", map[string]string{
			"email":    " MARIA@eventos.com ",
			"password": "password123",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Token string                 `json:"token"`
			User  map[string]interface{} `json:"user"`
		}
		decode(t, w, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "producer", resp.User["role"])
		assert.NotContains(t, resp.User, "password")

		var cookie *http.Cookie
		for _, c := range w.Result().Cookies() {
			if c.Name == utils.TokenCookie {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)

		var p models.Profile
		require.NoError(t, s.db.First(&p, "id = ?", s.producer.ID).Error)
		assert.NotNil(t, p.LastLogin)

		me := s.do(http.MethodGet, "/auth/me", resp.Token, nil)
		assert.Equal(t, http.StatusOK, me.Code)
		assert.Contains(t, me.Body.String(), "maria@eventos.com")
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "maria@eventos.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), utils.ErrCodeUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ghost@eventos.com", "password": "password123"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("inactive profile", func(t *testing.T) {
		inactive := s.createProfile("off@eventos.com", "Off", models.RoleProducer)
		require.NoError(t, s.db.Model(&inactive).Update("is_active", false).Error)

		w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "off@eventos.com", "password": "password123"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "maria@eventos.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPut, "/auth/password", s.producerToken, map[string]string{
		"current_password": "wrong-one",
		"new_password":     "brand-new-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPut, "/auth/password", s.producerToken, map[string]string{
		"current_password": "password123",
		"new_password":     "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "maria@eventos.com", "password": "brand-new-pass"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/djs", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil).Code)
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPut, "/api/profile", s.producerToken, map[string]string{"company_name": "Maria Eventos LTDA", "phone": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/profile", s.producerToken, map[string]string{"company_name": "Maria Eventos LTDA"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Maria Eventos LTDA")

	w = s.do(http.MethodGet, "/api/profile", s.producerToken, nil)
	assert.Contains(t, w.Body.String(), "Maria Eventos LTDA")
}

func TestProducersAdmin(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/producers", s.producerToken, nil).Code)

	w := s.do(http.MethodPost, "/api/producers", s.adminToken, map[string]string{
		"email":    "joao@producoes.com",
		"password": "password123",
		"name":     "João Produções",
		"phone":    "+5521998765432",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Profile
	decode(t, w, &created)
	assert.Equal(t, models.RoleProducer, created.Role)

	w = s.do(http.MethodPost, "/api/producers", s.adminToken, map[string]string{
		"email": "JOAO@producoes.com", "password": "password123", "name": "Dup",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// privileged update changes credentials and status
	w = s.do(http.MethodPut, "/api/producers/"+created.ID.String(), s.adminToken, map[string]interface{}{
		"email":    "joao.novo@producoes.com",
		"password": "another-pass",
		"name":     "João Novo",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "joao.novo@producoes.com")

	w = s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "joao.novo@producoes.com", "password": "another-pass"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPut, "/api/producers/"+created.ID.String(), s.adminToken, map[string]interface{}{"email": "maria@eventos.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// admins are not producers
	w = s.do(http.MethodGet, "/api/producers/"+s.admin.ID.String(), s.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/producers/"+created.ID.String(), s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p models.Profile
	require.NoError(t, s.db.First(&p, "id = ?", created.ID).Error)
	assert.False(t, p.IsActive)

	w = s.do(http.MethodGet, "/api/producers?active=true", s.adminToken, nil)
	var active []models.Profile
	decode(t, w, &active)
	require.Len(t, active, 1)
	assert.Equal(t, s.producer.ID, active[0].ID)
}

func TestDeactivatedProfileLosesAccess(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/events", s.producerToken, nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/producers/"+s.producer.ID.String(), s.adminToken, nil).Code)

	for _, path := range []string{"/api/events", "/api/dashboard/producer", "/auth/me"} {
		w := s.do(http.MethodGet, path, s.producerToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	require.NoError(t, s.db.Delete(&models.Profile{}, "id = ?", s.producer.ID).Error)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/events", s.producerToken, nil).Code)
}

func TestRoleComesFromStoredProfile(t *testing.T) {
	s := newTestServer(t)

	// a producer token claiming admin is held to the stored role
	forged, err := utils.GenerateToken(testJWTSecret, time.Hour, s.producer.ID.String(), models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/producers", forged, nil).Code)

	require.NoError(t, s.db.Model(&s.producer).Update("role", models.RoleAdmin).Error)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/producers", s.producerToken, nil).Code)
}

func TestLoginSurvivesLastLoginFailure(t *testing.T) {
	s := newTestServer(t)

	core, logs := observer.New(zap.WarnLevel)
	previous := logger.L()
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(previous) })

	require.NoError(t, s.db.Callback().Update().Before("gorm:update").Register("test:fail_profiles", func(db *gorm.DB) {
		if db.Statement.Table == "profiles" {
			_ = db.AddError(errors.New("disk full"))
		}
	}))

	w := s.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "maria@eventos.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entries := logs.FilterMessage("failed to record last login").All()
	require.Len(t, entries, 1)
	assert.Equal(t, s.producer.ID.String(), entries[0].ContextMap()["profile_id"])
}

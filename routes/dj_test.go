package routes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"djagency-backend/models"
	"djagency-backend/services"
)

func TestDJCrud(t *testing.T) {
	s := newTestServer(t)
	sub := s.hub.Subscribe("djs")

	w := s.do(http.MethodPost, "/api/djs", s.adminToken, map[string]interface{}{
		"artist_name": "Bea Beats",
		"real_name":   "Beatriz Souza",
		"email":       "bea@beats.com",
		"phone":       "+5511912345678",
		"state":       "sp",
		"genres":      []string{"house", "techno"},
		"base_cache":  4500,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dj models.DJ
	decode(t, w, &dj)
	assert.Equal(t, "SP", dj.State)
	assert.Equal(t, models.StringList{"house", "techno"}, dj.Genres)
	assert.True(t, dj.IsActive)

	change := <-sub.C
	assert.Equal(t, services.ChangeInsert, change.Type)

	w = s.do(http.MethodPut, "/api/djs/"+dj.ID.String(), s.adminToken, map[string]interface{}{
		"bio":        "Residente no Clube X",
		"soundcloud": "https://soundcloud.com/bea",
		"genres":     []string{"house"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &dj)
	assert.Equal(t, "Residente no Clube X", dj.Bio)
	assert.Equal(t, "https://soundcloud.com/bea", dj.SoundCloud)
	assert.Equal(t, models.StringList{"house"}, dj.Genres)
	assert.Equal(t, "Beatriz Souza", dj.RealName)

	w = s.do(http.MethodGet, "/api/djs/"+dj.ID.String(), s.producerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, "/api/djs/"+dj.ID.String(), s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.DJ
	require.NoError(t, s.db.First(&stored, "id = ?", dj.ID).Error)
	assert.False(t, stored.IsActive)
}

func TestDJValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing artist name", map[string]interface{}{"real_name": "Sem Nome"}},
		{"blank artist name", map[string]interface{}{"artist_name": "   "}},
		{"bad phone", map[string]interface{}{"artist_name": "X", "phone": "12"}},
		{"bad email", map[string]interface{}{"artist_name": "X", "email": "not-email"}},
		{"negative cache", map[string]interface{}{"artist_name": "X", "base_cache": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/djs", s.adminToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	var count int64
	s.db.Model(&models.DJ{}).Count(&count)
	assert.Zero(t, count)
}

func TestDJPermissionsAndFilters(t *testing.T) {
	s := newTestServer(t)
	s.createDJ("Alok Jr")
	bea := s.createDJ("Bea Beats")
	s.createDJ("Carl Cover")
	require.NoError(t, s.db.Model(&bea).Update("is_active", false).Error)

	w := s.do(http.MethodPost, "/api/djs", s.producerToken, map[string]interface{}{"artist_name": "Intruso"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var djs []models.DJ
	decode(t, s.do(http.MethodGet, "/api/djs", s.adminToken, nil), &djs)
	assert.Len(t, djs, 3)
	assert.Equal(t, "Alok Jr", djs[0].ArtistName)

	decode(t, s.do(http.MethodGet, "/api/djs?active=false", s.adminToken, nil), &djs)
	require.Len(t, djs, 1)
	assert.Equal(t, "Bea Beats", djs[0].ArtistName)

	decode(t, s.do(http.MethodGet, "/api/djs?q=CARL", s.adminToken, nil), &djs)
	require.Len(t, djs, 1)
	assert.Equal(t, "Carl Cover", djs[0].ArtistName)

	// producers only see active DJs
	decode(t, s.do(http.MethodGet, "/api/djs", s.producerToken, nil), &djs)
	assert.Len(t, djs, 2)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/djs?active=maybe", s.adminToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/djs/not-a-uuid", s.adminToken, nil).Code)
}

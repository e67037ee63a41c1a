package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"djagency-backend/config"
	"djagency-backend/controllers"
	"djagency-backend/models"
	"djagency-backend/services"
	"djagency-backend/utils"
)

const testJWTSecret = "routes-test-secret"

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

func init() {
	gin.SetMode(gin.TestMode)
	utils.PasswordCost = bcrypt.MinCost
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	db       *gorm.DB
	storage  *services.LocalStorage
	hub      *services.Hub
	admin    models.Profile
	producer models.Profile

	adminToken    string
	producerToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, services.SeedTemplates(db))
	config.DB = db

	storage, err := services.NewLocalStorage(t.TempDir(), "http://localhost:8080/files")
	require.NoError(t, err)
	hub := services.NewHub(32)

	cfg := &config.Config{
		App:  config.AppConfig{Name: "djagency-test", Environment: "development"},
		JWT:  config.JWTConfig{Secret: testJWTSecret, ExpiryHours: 1},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}

	s := &testServer{t: t, db: db, storage: storage, hub: hub}
	s.router = SetupRouter(cfg, controllers.Dependencies{
		JWT:     cfg.JWT,
		Storage: storage,
		Hub:     hub,
		Shares:  services.NewShareService(storage, time.Hour),
		Overdue: services.NewOverdueService(db, services.LogNotifier{}, hub),
	})

	s.admin = s.createProfile("admin@agencia.com", "Admin", models.RoleAdmin)
	s.producer = s.createProfile("maria@eventos.com", "Maria Eventos", models.RoleProducer)
	s.adminToken = s.tokenFor(s.admin)
	s.producerToken = s.tokenFor(s.producer)
	return s
}

func (s *testServer) createProfile(email, name, role string) models.Profile {
	s.t.Helper()
	p := models.Profile{Email: email, Password: "password123", Name: name, Phone: "+5511987654321", Role: role, IsActive: true}
	require.NoError(s.t, s.db.Create(&p).Error)
	return p
}

func (s *testServer) tokenFor(p models.Profile) string {
	s.t.Helper()
	token, err := utils.GenerateToken(testJWTSecret, time.Hour, p.ID.String(), p.Role)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(path, token, field, fileName string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile(field, fileName)
	require.NoError(s.t, err)
	_, err = fw.Write(data)
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *testServer) createDJ(name string) models.DJ {
	s.t.Helper()
	dj := models.DJ{ArtistName: name, Email: "contato@" + uuid.NewString()[:8] + ".com", City: "São Paulo", State: "SP", BaseCache: 3000, IsActive: true}
	require.NoError(s.t, s.db.Create(&dj).Error)
	return dj
}

// createEvent goes through the API so the payment and contract rows are created
func (s *testServer) createEvent(dj models.DJ, producer models.Profile, name, date string, cache *float64) controllers.EventResponse {
	s.t.Helper()
	body := map[string]interface{}{
		"dj_id":       dj.ID,
		"producer_id": producer.ID,
		"event_name":  name,
		"event_date":  date,
		"venue":       "Arena",
	}
	if cache != nil {
		body["cache_value"] = *cache
	}
	w := s.do(http.MethodPost, "/api/events", s.adminToken, body)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var ev controllers.EventResponse
	decode(s.t, w, &ev)
	return ev
}

func ptr[T any](v T) *T {
	return &v
}

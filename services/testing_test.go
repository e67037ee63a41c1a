package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"djagency-backend/models"
	"djagency-backend/utils"
)

func init() {
	utils.PasswordCost = bcrypt.MinCost
}

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func ptr[T any](v T) *T {
	return &v
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// paymentFixture builds an in-memory payment with its event, DJ and producer
func paymentFixture(eventName, djName, producerName string, eventDate time.Time, amount float64, status string) models.Payment {
	dj := &models.DJ{Base: models.Base{ID: uuid.New()}, ArtistName: djName}
	producer := &models.Profile{Base: models.Base{ID: uuid.New()}, Name: producerName, Role: models.RoleProducer}
	ev := &models.Event{
		Base:       models.Base{ID: uuid.New()},
		DJID:       dj.ID,
		ProducerID: producer.ID,
		EventName:  eventName,
		EventDate:  eventDate,
		CacheValue: ptr(amount),
		DJ:         dj,
		Producer:   producer,
	}
	return models.Payment{
		Base:    models.Base{ID: uuid.New(), CreatedAt: eventDate},
		EventID: ev.ID,
		Amount:  amount,
		Status:  status,
		Event:   ev,
	}
}

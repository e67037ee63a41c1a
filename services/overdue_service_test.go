package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"djagency-backend/config"
	"djagency-backend/models"
)

type overdueFixture struct {
	producer models.Profile
	dj       models.DJ
}

func seedOverdueFixture(t *testing.T, db *gorm.DB) overdueFixture {
	t.Helper()
	f := overdueFixture{
		producer: models.Profile{Email: "prod@example.com", Password: "secret123", Name: "Maria", Phone: "+5511987654321", Role: models.RoleProducer, IsActive: true},
		dj:       models.DJ{ArtistName: "Bea Beats", IsActive: true},
	}
	require.NoError(t, db.Create(&f.producer).Error)
	require.NoError(t, db.Create(&f.dj).Error)
	return f
}

func (f overdueFixture) payment(t *testing.T, db *gorm.DB, name string, eventDate time.Time, due *time.Time, status string) models.Payment {
	t.Helper()
	ev := models.Event{DJID: f.dj.ID, ProducerID: f.producer.ID, EventName: name, EventDate: eventDate, CacheValue: ptr(2500.0), Status: models.EventStatusConfirmed}
	require.NoError(t, db.Create(&ev).Error)
	p := models.Payment{EventID: ev.ID, Amount: 2500, Status: status, DueDate: due}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func statusOf(t *testing.T, db *gorm.DB, id uuid.UUID) string {
	t.Helper()
	var p models.Payment
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p.Status
}

func TestSweepMarksOnlyPastDuePending(t *testing.T) {
	db := newTestDB(t)
	f := seedOverdueFixture(t, db)
	today := day(2025, 6, 15)

	late := f.payment(t, db, "Late", day(2025, 6, 20), ptr(day(2025, 6, 10)), models.PaymentPending)
	noDue := f.payment(t, db, "No due date", day(2025, 6, 1), nil, models.PaymentPending)
	dueToday := f.payment(t, db, "Due today", day(2025, 6, 15), ptr(today), models.PaymentPending)
	future := f.payment(t, db, "Future", day(2025, 7, 1), ptr(day(2025, 7, 1)), models.PaymentPending)
	processing := f.payment(t, db, "Processing", day(2025, 6, 1), ptr(day(2025, 6, 1)), models.PaymentProcessing)
	paid := f.payment(t, db, "Paid", day(2025, 6, 1), ptr(day(2025, 6, 1)), models.PaymentPaid)

	hub := NewHub(16)
	sub := hub.Subscribe("payments")
	svc := NewOverdueService(db, &fakeNotifier{}, hub)
	svc.now = func() time.Time { return today.Add(9 * time.Hour) }

	result, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Marked)

	assert.Equal(t, models.PaymentOverdue, statusOf(t, db, late.ID))
	assert.Equal(t, models.PaymentOverdue, statusOf(t, db, noDue.ID))
	assert.Equal(t, models.PaymentPending, statusOf(t, db, dueToday.ID))
	assert.Equal(t, models.PaymentPending, statusOf(t, db, future.ID))
	assert.Equal(t, models.PaymentProcessing, statusOf(t, db, processing.ID))
	assert.Equal(t, models.PaymentPaid, statusOf(t, db, paid.ID))

	assert.Len(t, sub.C, 2)

	// a second sweep finds nothing new
	again, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Marked)
}

func TestSweepSkipsExemptAndCancelledEvents(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, SeedTemplates(db))
	f := seedOverdueFixture(t, db)
	due := ptr(day(2025, 6, 10))

	exempt := f.payment(t, db, "Agora isento", day(2025, 6, 12), due, models.PaymentPending)
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", exempt.EventID).Update("cache_value", 0).Error)
	cancelled := f.payment(t, db, "Cancelado", day(2025, 6, 12), due, models.PaymentPending)
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", cancelled.EventID).Update("status", models.EventStatusCancelled).Error)
	late := f.payment(t, db, "Atrasado", day(2025, 6, 12), due, models.PaymentPending)

	notifier := &fakeNotifier{}
	svc := NewOverdueService(db, notifier, nil)
	svc.now = func() time.Time { return day(2025, 6, 15) }

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Marked)
	assert.Equal(t, late.ID, result.Payments[0].ID)
	assert.Equal(t, models.PaymentPending, statusOf(t, db, exempt.ID))
	assert.Equal(t, models.PaymentPending, statusOf(t, db, cancelled.ID))

	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].Body, "Atrasado")
}

func TestRunSendsRemindersAndLogs(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, SeedTemplates(db))
	f := seedOverdueFixture(t, db)
	p := f.payment(t, db, "Festa Junina", day(2025, 6, 20), ptr(day(2025, 6, 10)), models.PaymentPending)

	notifier := &fakeNotifier{}
	svc := NewOverdueService(db, notifier, nil)
	svc.now = func() time.Time { return day(2025, 6, 15) }

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "+5511987654321", notifier.sent[0].Phone)
	assert.Contains(t, notifier.sent[0].Body, "Maria")
	assert.Contains(t, notifier.sent[0].Body, "Festa Junina")
	assert.Contains(t, notifier.sent[0].Body, "2.500,00")
	assert.Contains(t, notifier.sent[0].Body, "10/06/2025")

	var logs []models.PaymentReminderLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, p.ID, logs[0].PaymentID)
	assert.Equal(t, "sent", logs[0].Status)
	assert.Equal(t, ChannelWhatsApp, logs[0].Channel)
}

func TestRunLogsFailedReminders(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, SeedTemplates(db))
	f := seedOverdueFixture(t, db)
	f.payment(t, db, "Festa", day(2025, 6, 1), nil, models.PaymentPending)

	svc := NewOverdueService(db, &fakeNotifier{fail: true}, nil)
	svc.now = func() time.Time { return day(2025, 6, 15) }

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	var entry models.PaymentReminderLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "failed", entry.Status)
	assert.Equal(t, "twilio unavailable", entry.ErrorMessage)
}

func TestRunSkipsWhenTemplateInactive(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, SeedTemplates(db))
	require.NoError(t, db.Model(&models.NotificationTemplate{}).
		Where("type = ?", models.TemplatePaymentOverdue).
		Update("is_active", false).Error)
	f := seedOverdueFixture(t, db)
	f.payment(t, db, "Festa", day(2025, 6, 1), nil, models.PaymentPending)

	notifier := &fakeNotifier{}
	svc := NewOverdueService(db, notifier, nil)
	svc.now = func() time.Time { return day(2025, 6, 15) }

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Marked)
	assert.Empty(t, notifier.sent)
}

func TestRenderTemplate(t *testing.T) {
	producer := &models.Profile{Name: "João"}
	event := &models.Event{EventName: "Réveillon", EventDate: day(2025, 12, 31)}
	payment := &models.Payment{Amount: 12000, Event: event}

	got := RenderTemplate("[ProducerName]: [EventName] R$ [Amount] até [DueDate] [Unknown]", producer, event, payment, day(2026, 1, 2))
	assert.Equal(t, "João: Réveillon R$ 12.000,00 até 31/12/2025 [Unknown]", got)

	got = RenderTemplate("[DaysOverdue] dias", producer, event, payment, day(2026, 1, 5))
	assert.Equal(t, "5 dias", got)
	got = RenderTemplate("[DaysOverdue] dias", producer, event, payment, day(2025, 12, 1))
	assert.Equal(t, "0 dias", got)
}

func TestStartSchedulerRejectsBadSpec(t *testing.T) {
	svc := NewOverdueService(newTestDB(t), nil, nil)
	_, err := svc.StartScheduler("every day please")
	assert.Error(t, err)

	c, err := svc.StartScheduler("0 6 * * *")
	require.NoError(t, err)
	c.Stop()
}

func TestSeedAdmin(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, SeedAdmin(db, config.AdminConfig{}))
	var count int64
	db.Model(&models.Profile{}).Count(&count)
	assert.Zero(t, count)

	cfg := config.AdminConfig{Email: " Admin@Agencia.com ", Password: "admin-pass", Name: "Admin"}
	require.NoError(t, SeedAdmin(db, cfg))
	require.NoError(t, SeedAdmin(db, cfg))

	var admins []models.Profile
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@agencia.com", admins[0].Email)
	assert.NotEqual(t, "admin-pass", admins[0].Password)
}

func TestSeedTemplatesIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, SeedTemplates(db))
	require.NoError(t, SeedTemplates(db))

	var count int64
	db.Model(&models.NotificationTemplate{}).Count(&count)
	assert.Equal(t, int64(len(models.DefaultTemplates())), count)
}

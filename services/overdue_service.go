// services/overdue_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"djagency-backend/logger"
	"djagency-backend/models"
	"djagency-backend/utils"
)

// SweepResult lists the payments a sweep moved to overdue
type SweepResult struct {
	Marked   int              `json:"marked"`
	Payments []models.Payment `json:"payments"`
}

type OverdueService struct {
	db       *gorm.DB
	notifier Notifier
	hub      *Hub
	now      func() time.Time
}

func NewOverdueService(db *gorm.DB, notifier Notifier, hub *Hub) *OverdueService {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &OverdueService{db: db, notifier: notifier, hub: hub, now: time.Now}
}

// StartScheduler runs the daily sweep on spec; the caller stops the returned cron
func (s *OverdueService) StartScheduler(spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Run(ctx); err != nil {
			logger.L().Error("overdue sweep failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	c.Start()
	logger.L().Info("overdue scheduler started", zap.String("schedule", spec))
	return c, nil
}

// Run sweeps and then reminds producers about what was marked
func (s *OverdueService) Run(ctx context.Context) (*SweepResult, error) {
	result, err := s.Sweep(ctx)
	if err != nil {
		return nil, err
	}
	s.Remind(ctx, result.Payments)
	return result, nil
}

// Sweep writes "overdue" on pending payments whose due date (or event date)
// is before today, skipping exempt and cancelled events
func (s *OverdueService) Sweep(ctx context.Context) (*SweepResult, error) {
	today := utils.BeginningOfDay(s.now())

	var pending []models.Payment
	if err := s.db.WithContext(ctx).
		Preload("Event").
		Preload("Event.Producer").
		Where("status = ?", models.PaymentPending).
		Find(&pending).Error; err != nil {
		return nil, fmt.Errorf("load pending payments: %w", err)
	}

	result := &SweepResult{Payments: []models.Payment{}}
	for i := range pending {
		p := &pending[i]
		// exempt or cancelled events owe nothing
		if p.Event != nil && (!p.Event.HasCache() || p.Event.Status == models.EventStatusCancelled) {
			continue
		}
		due := p.EffectiveDueDate()
		if due == nil || !due.Before(today) {
			continue
		}

		// guard on status so a concurrent mark-paid wins
		res := s.db.WithContext(ctx).Model(&models.Payment{}).
			Where("id = ? AND status = ?", p.ID, models.PaymentPending).
			Update("status", models.PaymentOverdue)
		if res.Error != nil {
			return nil, fmt.Errorf("mark payment %s overdue: %w", p.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}

		p.Status = models.PaymentOverdue
		result.Payments = append(result.Payments, *p)
		if s.hub != nil {
			s.hub.Publish(ctx, "payments", ChangeUpdate, p)
		}
	}
	result.Marked = len(result.Payments)

	logger.L().Info("overdue sweep completed", zap.Int("marked", result.Marked))
	return result, nil
}

// Remind messages each producer about their newly overdue payments and logs every attempt
func (s *OverdueService) Remind(ctx context.Context, payments []models.Payment) {
	if len(payments) == 0 {
		return
	}

	var template models.NotificationTemplate
	err := s.db.WithContext(ctx).
		Where("type = ? AND is_active = ?", models.TemplatePaymentOverdue, true).
		First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.L().Info("no active overdue template, skipping reminders")
		return
	}
	if err != nil {
		logger.L().Error("failed to load overdue template", zap.Error(err))
		return
	}

	for i := range payments {
		p := &payments[i]
		if p.Event == nil || p.Event.Producer == nil {
			continue
		}
		producer := p.Event.Producer
		if producer.Phone == "" {
			logger.L().Info("producer has no phone, reminder skipped", zap.String("producer_id", producer.ID.String()))
			continue
		}

		message := RenderTemplate(template.Message, producer, p.Event, p, s.now())
		channel, sendErr := s.notifier.Send(ctx, producer.Phone, message)

		entry := models.PaymentReminderLog{
			PaymentID:  p.ID,
			ProducerID: producer.ID,
			TemplateID: template.ID,
			Message:    message,
			Status:     "sent",
			Channel:    channel,
			SentAt:     s.now(),
		}
		if sendErr != nil {
			logger.L().Warn("failed to send overdue reminder",
				zap.String("payment_id", p.ID.String()),
				zap.Error(sendErr))
			entry.Status = "failed"
			entry.ErrorMessage = sendErr.Error()
		}
		if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
			logger.L().Error("failed to log reminder", zap.String("payment_id", p.ID.String()), zap.Error(err))
		}
	}
}

// RenderTemplate fills the [ProducerName], [EventName], [Amount], [DueDate]
// and [DaysOverdue] placeholders
func RenderTemplate(message string, producer *models.Profile, event *models.Event, payment *models.Payment, now time.Time) string {
	var producerName, eventName, amount, dueDate, daysOverdue string
	if producer != nil {
		producerName = producer.Name
	}
	if event != nil {
		eventName = event.EventName
	}
	if payment != nil {
		amount = utils.FormatBRL(payment.Amount)
		if d := payment.EffectiveDueDate(); d != nil {
			dueDate = d.Format("02/01/2006")
			if days := utils.DaysBetween(*d, now); days > 0 {
				daysOverdue = strconv.Itoa(days)
			} else {
				daysOverdue = "0"
			}
		}
	}
	return strings.NewReplacer(
		"[ProducerName]", producerName,
		"[EventName]", eventName,
		"[Amount]", amount,
		"[DueDate]", dueDate,
		"[DaysOverdue]", daysOverdue,
	).Replace(message)
}

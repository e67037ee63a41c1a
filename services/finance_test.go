package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"djagency-backend/models"
)

func TestSummarize(t *testing.T) {
	s := Summarize(samplePayments())

	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 17500.0, s.Total)
	assert.Equal(t, StatusTotal{Count: 1, Amount: 8000}, s.Paid)
	assert.Equal(t, StatusTotal{Count: 1, Amount: 3000}, s.Pending)
	assert.Equal(t, StatusTotal{Count: 1, Amount: 5000}, s.Overdue)
	assert.Equal(t, StatusTotal{Count: 1, Amount: 1500}, s.Processing)
	assert.Equal(t, 9500.0, s.Outstanding)

	// DJ ids differ per fixture, so each payment is its own DJ here
	assert.Len(t, s.ByDJ, 4)
	assert.Equal(t, "Alok Jr", s.ByDJ[0].ArtistName)
	assert.Equal(t, 8000.0, s.ByDJ[0].Paid)
}

func TestSummarizeGroupsByDJ(t *testing.T) {
	payments := samplePayments()
	payments[3].Event.DJID = payments[1].Event.DJID

	s := Summarize(payments)
	assert.Len(t, s.ByDJ, 3)
	for _, dj := range s.ByDJ {
		if dj.ArtistName == "Bea Beats" {
			assert.Equal(t, 2, dj.Events)
			assert.Equal(t, 4500.0, dj.Total)
		}
	}
}

func TestReceivedBetween(t *testing.T) {
	payments := samplePayments()
	payments[0].PaidAt = ptr(time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC))
	// paid_at on a non-paid row never counts
	payments[1].PaidAt = ptr(day(2025, 1, 15))

	assert.Equal(t, 8000.0, ReceivedBetween(payments, day(2025, 1, 1), day(2025, 2, 1)))
	assert.Equal(t, 0.0, ReceivedBetween(payments, day(2025, 2, 1), day(2025, 3, 1)))

	payments[0].Status = models.PaymentProcessing
	assert.Equal(t, 0.0, ReceivedBetween(payments, day(2025, 1, 1), day(2025, 2, 1)))
}

func TestGrowthPercentage(t *testing.T) {
	assert.Equal(t, 0.0, GrowthPercentage(0, 0))
	assert.Equal(t, 100.0, GrowthPercentage(500, 0))
	assert.Equal(t, 50.0, GrowthPercentage(1500, 1000))
	assert.Equal(t, -25.0, GrowthPercentage(750, 1000))
}

package services

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"djagency-backend/models"
)

// StatusTotal is the count and amount of payments in one status
type StatusTotal struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// DJTotal aggregates payments of one DJ's events
type DJTotal struct {
	DJID       uuid.UUID `json:"dj_id"`
	ArtistName string    `json:"artist_name"`
	Events     int       `json:"events"`
	Total      float64   `json:"total"`
	Paid       float64   `json:"paid"`
}

// FinancialSummary aggregates a payment list
type FinancialSummary struct {
	Count       int         `json:"count"`
	Total       float64     `json:"total"`
	Outstanding float64     `json:"outstanding"`
	Pending     StatusTotal `json:"pending"`
	Processing  StatusTotal `json:"processing"`
	Paid        StatusTotal `json:"paid"`
	Overdue     StatusTotal `json:"overdue"`
	ByDJ        []DJTotal   `json:"by_dj"`
}

// Summarize totals payments per status and per DJ
func Summarize(payments []models.Payment) FinancialSummary {
	var s FinancialSummary
	byDJ := map[uuid.UUID]*DJTotal{}

	for i := range payments {
		p := &payments[i]
		s.Count++
		s.Total += p.Amount

		switch p.Status {
		case models.PaymentPaid:
			s.Paid.Count++
			s.Paid.Amount += p.Amount
		case models.PaymentProcessing:
			s.Processing.Count++
			s.Processing.Amount += p.Amount
		case models.PaymentOverdue:
			s.Overdue.Count++
			s.Overdue.Amount += p.Amount
		default:
			s.Pending.Count++
			s.Pending.Amount += p.Amount
		}

		if p.Event == nil {
			continue
		}
		t, ok := byDJ[p.Event.DJID]
		if !ok {
			t = &DJTotal{DJID: p.Event.DJID, ArtistName: djName(p)}
			byDJ[p.Event.DJID] = t
		}
		t.Events++
		t.Total += p.Amount
		if p.Status == models.PaymentPaid {
			t.Paid += p.Amount
		}
	}
	s.Outstanding = s.Pending.Amount + s.Processing.Amount + s.Overdue.Amount

	s.ByDJ = make([]DJTotal, 0, len(byDJ))
	for _, t := range byDJ {
		s.ByDJ = append(s.ByDJ, *t)
	}
	sort.Slice(s.ByDJ, func(i, j int) bool {
		if s.ByDJ[i].Total != s.ByDJ[j].Total {
			return s.ByDJ[i].Total > s.ByDJ[j].Total
		}
		return s.ByDJ[i].ArtistName < s.ByDJ[j].ArtistName
	})
	return s
}

// ReceivedBetween sums paid payments whose paid_at falls in [start, end)
func ReceivedBetween(payments []models.Payment, start, end time.Time) float64 {
	var total float64
	for i := range payments {
		p := &payments[i]
		if p.Status != models.PaymentPaid || p.PaidAt == nil {
			continue
		}
		if !p.PaidAt.Before(start) && p.PaidAt.Before(end) {
			total += p.Amount
		}
	}
	return total
}

// GrowthPercentage compares current against previous
func GrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"djagency-backend/models"
	"djagency-backend/utils"
)

// PaymentFilter narrows a fully fetched payment list. Zero fields match everything.
// Payments are expected to carry Event, Event.DJ and Event.Producer.
type PaymentFilter struct {
	DJID       *uuid.UUID
	ProducerID *uuid.UUID
	Status     string
	DateFrom   *time.Time // event date, inclusive
	DateTo     *time.Time // event date, inclusive through the end of that day
	MinAmount  *float64
	MaxAmount  *float64
	Query      string // event name, DJ or producer name, case-insensitive
}

// Matches reports whether p satisfies every set field of f
func (f PaymentFilter) Matches(p *models.Payment) bool {
	ev := p.Event
	if f.DJID != nil && (ev == nil || ev.DJID != *f.DJID) {
		return false
	}
	if f.ProducerID != nil && (ev == nil || ev.ProducerID != *f.ProducerID) {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.DateFrom != nil && (ev == nil || ev.EventDate.Before(utils.BeginningOfDay(*f.DateFrom))) {
		return false
	}
	if f.DateTo != nil {
		end := utils.BeginningOfDay(*f.DateTo).AddDate(0, 0, 1)
		if ev == nil || !ev.EventDate.Before(end) {
			return false
		}
	}
	if f.MinAmount != nil && p.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && p.Amount > *f.MaxAmount {
		return false
	}
	if q := strings.TrimSpace(strings.ToLower(f.Query)); q != "" {
		if ev == nil {
			return false
		}
		haystack := []string{ev.EventName}
		if ev.DJ != nil {
			haystack = append(haystack, ev.DJ.ArtistName, ev.DJ.RealName)
		}
		if ev.Producer != nil {
			haystack = append(haystack, ev.Producer.Name, ev.Producer.CompanyName)
		}
		found := false
		for _, h := range haystack {
			if strings.Contains(strings.ToLower(h), q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FilterPayments returns the payments matching f, preserving order
func FilterPayments(payments []models.Payment, f PaymentFilter) []models.Payment {
	out := make([]models.Payment, 0, len(payments))
	for i := range payments {
		if f.Matches(&payments[i]) {
			out = append(out, payments[i])
		}
	}
	return out
}

type paymentLess func(a, b *models.Payment) bool

var paymentSorts = map[string]paymentLess{
	"event_date": func(a, b *models.Payment) bool {
		return eventDate(a).Before(eventDate(b))
	},
	"due_date": func(a, b *models.Payment) bool {
		return dueDate(a).Before(dueDate(b))
	},
	"amount": func(a, b *models.Payment) bool {
		return a.Amount < b.Amount
	},
	"status": func(a, b *models.Payment) bool {
		return a.Status < b.Status
	},
	"dj_name": func(a, b *models.Payment) bool {
		return strings.ToLower(djName(a)) < strings.ToLower(djName(b))
	},
	"producer_name": func(a, b *models.Payment) bool {
		return strings.ToLower(producerName(a)) < strings.ToLower(producerName(b))
	},
	"created_at": func(a, b *models.Payment) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	},
}

// SortPayments stable-sorts payments in place by field; order is "asc" or "desc"
func SortPayments(payments []models.Payment, field, order string) error {
	if field == "" {
		field = "event_date"
	}
	less, ok := paymentSorts[field]
	if !ok {
		return fmt.Errorf("unknown sort field %q", field)
	}
	desc := strings.EqualFold(order, "desc")
	sort.SliceStable(payments, func(i, j int) bool {
		if desc {
			return less(&payments[j], &payments[i])
		}
		return less(&payments[i], &payments[j])
	})
	return nil
}

// Paginate slices items for a 1-based page
func Paginate[T any](items []T, page, perPage int) ([]T, utils.Meta) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	meta := utils.NewMeta(page, perPage, len(items))
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}, meta
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}

func eventDate(p *models.Payment) time.Time {
	if p.Event == nil {
		return time.Time{}
	}
	return p.Event.EventDate
}

func dueDate(p *models.Payment) time.Time {
	if d := p.EffectiveDueDate(); d != nil {
		return *d
	}
	return time.Time{}
}

func djName(p *models.Payment) string {
	if p.Event == nil || p.Event.DJ == nil {
		return ""
	}
	return p.Event.DJ.ArtistName
}

func producerName(p *models.Payment) string {
	if p.Event == nil || p.Event.Producer == nil {
		return ""
	}
	return p.Event.Producer.Name
}

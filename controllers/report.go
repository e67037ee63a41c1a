package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"djagency-backend/config"
	"djagency-backend/models"
	"djagency-backend/services"
	"djagency-backend/utils"
)

// ReportController handles all reporting functions
type ReportController struct{}

// PeriodRevenue is revenue received in a period against the previous one
type PeriodRevenue struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Received float64   `json:"received"`
	Previous float64   `json:"previous"`
	Growth   float64   `json:"growth"`
}

type QuickStatistics struct {
	TotalEvents     int     `json:"total_events"`
	BilledEvents    int     `json:"billed_events"`
	ExemptEvents    int     `json:"exempt_events"`
	AverageCache    float64 `json:"average_cache"`
	CollectionRatio float64 `json:"collection_ratio"`
}

// FinancialReport is the agency's revenue picture
type FinancialReport struct {
	Month       PeriodRevenue        `json:"month"`
	Quarter     PeriodRevenue        `json:"quarter"`
	Year        PeriodRevenue        `json:"year"`
	Pending     services.StatusTotal `json:"pending"`
	Processing  services.StatusTotal `json:"processing"`
	Paid        services.StatusTotal `json:"paid"`
	Overdue     services.StatusTotal `json:"overdue"`
	Outstanding float64              `json:"outstanding"`
	TopDJs      []services.DJTotal   `json:"top_djs"`
	QuickStats  QuickStatistics      `json:"quick_stats"`
}

const topDJLimit = 5

// GetFinancialReport reports received revenue by paid_at for the month,
// quarter and year containing ?at (default today)
func (rc *ReportController) GetFinancialReport(c *gin.Context) {
	now := time.Now()
	if at := c.Query("at"); at != "" {
		d, err := utils.ParseFlexibleDate(at)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Data de referência inválida")
			return
		}
		now = d
	}

	var payments []models.Payment
	if err := withPaymentRelations(config.DB).Find(&payments).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	var events []models.Event
	if err := config.DB.Where("status <> ?", models.EventStatusCancelled).Find(&events).Error; err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	report := rc.buildReport(payments, events, now)
	c.JSON(http.StatusOK, report)
}

func (rc *ReportController) buildReport(payments []models.Payment, events []models.Event, now time.Time) FinancialReport {
	loc := now.Location()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	quarterStart := utils.QuarterStart(now)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)

	summary := services.Summarize(payments)
	topDJs := summary.ByDJ
	if len(topDJs) > topDJLimit {
		topDJs = topDJs[:topDJLimit]
	}

	return FinancialReport{
		Month:       rc.periodRevenue(payments, firstOfMonth, firstOfMonth.AddDate(0, 1, 0), firstOfMonth.AddDate(0, -1, 0)),
		Quarter:     rc.periodRevenue(payments, quarterStart, quarterStart.AddDate(0, 3, 0), quarterStart.AddDate(0, -3, 0)),
		Year:        rc.periodRevenue(payments, yearStart, yearStart.AddDate(1, 0, 0), yearStart.AddDate(-1, 0, 0)),
		Pending:     summary.Pending,
		Processing:  summary.Processing,
		Paid:        summary.Paid,
		Overdue:     summary.Overdue,
		Outstanding: summary.Outstanding,
		TopDJs:      topDJs,
		QuickStats:  rc.quickStatistics(events, summary),
	}
}

// periodRevenue compares [start, end) with the same-length period starting at previousStart
func (rc *ReportController) periodRevenue(payments []models.Payment, start, end, previousStart time.Time) PeriodRevenue {
	current := services.ReceivedBetween(payments, start, end)
	previous := services.ReceivedBetween(payments, previousStart, start)
	return PeriodRevenue{
		Start:    start,
		End:      end,
		Received: current,
		Previous: previous,
		Growth:   services.GrowthPercentage(current, previous),
	}
}

func (rc *ReportController) quickStatistics(events []models.Event, summary services.FinancialSummary) QuickStatistics {
	var stats QuickStatistics
	var cacheTotal float64
	for i := range events {
		stats.TotalEvents++
		if events[i].HasCache() {
			stats.BilledEvents++
			cacheTotal += *events[i].CacheValue
		} else {
			stats.ExemptEvents++
		}
	}
	if stats.BilledEvents > 0 {
		stats.AverageCache = cacheTotal / float64(stats.BilledEvents)
	}
	if summary.Total > 0 {
		stats.CollectionRatio = summary.Paid.Amount / summary.Total * 100
	}
	return stats
}

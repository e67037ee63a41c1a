package services

import "djagency-backend/models"

// Display statuses shown in the dashboards
const (
	DisplayExempt     = "isento"
	DisplayPaid       = "pago"
	DisplayProcessing = "processando"
	DisplayPending    = "pendente"
)

// PaymentStatusFor derives the display status of an event from its cache
// value and its payment row (which may be nil). A stored "overdue" status
// still derives to "pendente".
func PaymentStatusFor(event *models.Event, payment *models.Payment) string {
	if event == nil || !event.HasCache() {
		return DisplayExempt
	}
	if payment == nil {
		return DisplayPending
	}
	switch payment.Status {
	case models.PaymentPaid:
		return DisplayPaid
	case models.PaymentProcessing:
		return DisplayProcessing
	default:
		return DisplayPending
	}
}

package models

const (
	TemplatePaymentOverdue  = "payment_overdue"
	TemplateContractPending = "contract_pending"
)

// NotificationTemplate is an admin-editable message with [Placeholder] tokens
type NotificationTemplate struct {
	Base
	Type     string `gorm:"type:varchar(30);uniqueIndex;not null" json:"type"`
	Message  string `gorm:"type:text;not null" json:"message"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// DefaultTemplates are seeded when the table is empty
func DefaultTemplates() []NotificationTemplate {
	return []NotificationTemplate{
		{
			Type:     TemplatePaymentOverdue,
			Message:  "Olá [ProducerName], o pagamento de R$ [Amount] referente ao evento [EventName] venceu em [DueDate]. Por favor, envie o comprovante.",
			IsActive: true,
		},
		{
			Type:     TemplateContractPending,
			Message:  "Olá [ProducerName], o contrato do evento [EventName] aguarda sua assinatura.",
			IsActive: true,
		},
	}
}

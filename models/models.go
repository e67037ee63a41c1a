package models

// All lists every table for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&DJ{},
		&Event{},
		&Contract{},
		&Payment{},
		&DJMedia{},
		&NotificationTemplate{},
		&PaymentReminderLog{},
	}
}

package repository

import "gorm.io/gorm"

// Migrate creates or updates the reminders table and its indexes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ReminderModel{})
}

package database

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordUsage adds one request to today's usage row for the key
func RecordUsage(db *gorm.DB, keyID uint, slots, members int) error {
	today := time.Now().Format("2006-01-02")

	// Single-query upsert, supported by both Postgres and SQLite
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"total_slots":   gorm.Expr("total_slots + ?", slots),
			"total_members": gorm.Expr("total_members + ?", members),
		}),
	}).Create(&APIUsage{
		KeyID:        keyID,
		Date:         today,
		RequestCount: 1,
		TotalSlots:   slots,
		TotalMembers: members,
	}).Error
}

// UsageHistory returns the latest 30 days of usage for a key, newest first
func UsageHistory(db *gorm.DB, keyID uint) ([]APIUsage, error) {
	var usage []APIUsage
	err := db.Where("key_id = ?", keyID).Order("date desc").Limit(30).Find(&usage).Error
	return usage, err
}

// RequestsToday returns how many requests the key has made today
func RequestsToday(db *gorm.DB, keyID uint) (int, error) {
	var usage APIUsage
	err := db.Where("key_id = ? AND date = ?", keyID, time.Now().Format("2006-01-02")).
		Limit(1).Find(&usage).Error
	return usage.RequestCount, err
}

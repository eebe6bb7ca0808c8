package model

import "time"

// Report status values.
const (
	ReportRunning  = "running"
	ReportComplete = "complete"
)

// Report is one generated uptime report.
type Report struct {
	ReportID    string     `gorm:"primaryKey;size:36"`
	Status      string     `gorm:"size:16;not null"`
	CreatedAt   time.Time  `gorm:"not null"`
	CompletedAt *time.Time

	// Associations
	Rows []ReportRow `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
}

// ReportRow is one store's line in a report. Position keeps the order stores
// were discovered in.
type ReportRow struct {
	ID               int64   `gorm:"primaryKey"`
	ReportID         string  `gorm:"size:36;not null;index"`
	Position         int     `gorm:"not null"`
	StoreID          string  `gorm:"size:64;not null"`
	UptimeLastHour   float64 `gorm:"not null"`
	DowntimeLastHour float64 `gorm:"not null"`
	UptimeLastDay    float64 `gorm:"not null"`
	DowntimeLastDay  float64 `gorm:"not null"`
	UptimeLastWeek   float64 `gorm:"not null"`
	DowntimeLastWeek float64 `gorm:"not null"`
}

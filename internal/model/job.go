package model

import "time"

// SentinelID is the primary key of the single job sentinel row.
const SentinelID = 1

// JobSentinel gates report generation: Status is ReportRunning while
// ReportID is being generated and ReportComplete otherwise.
type JobSentinel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	Status    string    `gorm:"size:16;not null"`
	ReportID  string    `gorm:"size:36"`
	UpdatedAt time.Time `gorm:"not null"`
}

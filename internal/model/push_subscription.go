package model

import "time"

// PushSubscription is a browser waiting to be told that a report is ready.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	ReportID  string    `gorm:"primaryKey;size:36;index"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

package model

// StoreStatus is one raw status ping. Timestamp and status are kept exactly as
// produced; they are parsed when a report runs.
type StoreStatus struct {
	ID           int64  `gorm:"primaryKey"`
	StoreID      string `gorm:"size:64;not null;index"`
	TimestampUTC string `gorm:"column:timestamp_utc;size:64;not null"`
	Status       string `gorm:"size:16;not null"`
}

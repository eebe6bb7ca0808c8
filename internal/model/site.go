package model

// StoreTimezone assigns an IANA timezone to a store.
type StoreTimezone struct {
	StoreID     string `gorm:"primaryKey;size:64"`
	TimezoneStr string `gorm:"size:64;not null"`
}

// BusinessHours is one local open interval of a store on a weekday (0 = Monday).
type BusinessHours struct {
	ID             int64  `gorm:"primaryKey"`
	StoreID        string `gorm:"size:64;not null;index"`
	Day            string `gorm:"size:1;not null"`
	StartTimeLocal string `gorm:"size:8;not null"`
	EndTimeLocal   string `gorm:"size:8;not null"`
}

// TableName pins the table name; the plural form of "hours" is ambiguous.
func (BusinessHours) TableName() string { return "business_hours" }

package models

import (
	"time"
)

type Base struct {
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;index" json:"updated_at"`
}

func NewBase() Base {
	now := Now()
	return Base{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Now is the store's clock: UTC at microsecond precision, which every supported driver keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

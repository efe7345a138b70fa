package models

import (
	"time"
)

type BlockedIP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IP        string    `gorm:"size:45;uniqueIndex;not null" json:"ip"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import (
	"time"
)

type Emoji struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	ImagePath string    `gorm:"not null" json:"image_path"` // relative to the static mount, e.g. "emojis/abc_party.png"
	CreatedAt time.Time `json:"created_at"`
}

package models

import (
	"time"
)

type Note struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Text       string    `gorm:"size:200" json:"text"` // empty only when RenoteFrom is set
	IP         string    `gorm:"size:45;not null" json:"-"`
	UserID     *uint     `gorm:"index" json:"user_id"` // nil = anonymous
	ReplyTo    *uint     `gorm:"index" json:"reply_to"`
	RenoteFrom *uint     `gorm:"index" json:"renote_from"`
	CreatedAt  time.Time `json:"created_at"`
}

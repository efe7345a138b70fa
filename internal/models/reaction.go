package models

import (
	"time"
)

// Reaction is a per-note counter for one emoji. One row per (note, emoji);
// the row is removed once its count drops to zero.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	NoteID    uint      `gorm:"not null;uniqueIndex:idx_note_emoji" json:"note_id"`
	EmojiID   uint      `gorm:"not null;uniqueIndex:idx_note_emoji" json:"emoji_id"`
	Count     int       `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

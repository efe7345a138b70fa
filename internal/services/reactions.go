package services

import (
	"errors"
	"fmt"

	"minibbs/internal/models"

	"gorm.io/gorm"
)

// ReactionResult is returned to the browser as JSON.
type ReactionResult struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// React applies a browser's emoji choice to a note. prev is the browser's
// recorded prior choice for this note (from its signed cookie), nil when it
// has not reacted yet.
//
// Repeating the same emoji is a no-op reported with Success=false. A
// different emoji moves the reaction: the old counter is decremented (row
// removed at zero) and the new one incremented or created at one. This is
// last-writer-wins per browser; the cookie is spoofable and that is an
// accepted property of the mechanism, not something to defend against here.
func React(gdb *gorm.DB, noteID, emojiID uint, prev *uint) (*ReactionResult, error) {
	var noteCount int64
	if err := gdb.Model(&models.Note{}).Where("id = ?", noteID).Count(&noteCount).Error; err != nil {
		return nil, fmt.Errorf("check note: %w", err)
	}
	if noteCount == 0 {
		return nil, ErrNotFound
	}

	var emojiCount int64
	if err := gdb.Model(&models.Emoji{}).Where("id = ?", emojiID).Count(&emojiCount).Error; err != nil {
		return nil, fmt.Errorf("check emoji: %w", err)
	}
	if emojiCount == 0 {
		return nil, ErrNotFound
	}

	if prev != nil && *prev == emojiID {
		count, err := reactionCount(gdb, noteID, emojiID)
		if err != nil {
			return nil, err
		}
		return &ReactionResult{Success: false, Count: count}, nil
	}

	if prev != nil {
		if err := decrementReaction(gdb, noteID, *prev); err != nil {
			return nil, err
		}
	}

	if err := incrementReaction(gdb, noteID, emojiID); err != nil {
		return nil, err
	}

	count, err := reactionCount(gdb, noteID, emojiID)
	if err != nil {
		return nil, err
	}
	return &ReactionResult{Success: true, Count: count}, nil
}

func reactionCount(gdb *gorm.DB, noteID, emojiID uint) (int, error) {
	var r models.Reaction
	err := gdb.Where("note_id = ? AND emoji_id = ?", noteID, emojiID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read reaction count: %w", err)
	}
	return r.Count, nil
}

func incrementReaction(gdb *gorm.DB, noteID, emojiID uint) error {
	var r models.Reaction
	err := gdb.Where("note_id = ? AND emoji_id = ?", noteID, emojiID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := gdb.Create(&models.Reaction{NoteID: noteID, EmojiID: emojiID, Count: 1}).Error; err != nil {
			return fmt.Errorf("create reaction: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("load reaction: %w", err)
	}

	if err := gdb.Model(&models.Reaction{}).Where("id = ?", r.ID).
		UpdateColumn("count", gorm.Expr("count + ?", 1)).Error; err != nil {
		return fmt.Errorf("increment reaction: %w", err)
	}
	return nil
}

func decrementReaction(gdb *gorm.DB, noteID, emojiID uint) error {
	var r models.Reaction
	err := gdb.Where("note_id = ? AND emoji_id = ?", noteID, emojiID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Cookie claims a reaction the store no longer has (emoji removed,
		// note trimmed, or a forged cookie); nothing to undo.
		return nil
	}
	if err != nil {
		return fmt.Errorf("load reaction: %w", err)
	}

	if r.Count <= 1 {
		if err := gdb.Delete(&models.Reaction{}, r.ID).Error; err != nil {
			return fmt.Errorf("remove reaction: %w", err)
		}
		return nil
	}
	if err := gdb.Model(&models.Reaction{}).Where("id = ?", r.ID).
		UpdateColumn("count", gorm.Expr("count - ?", 1)).Error; err != nil {
		return fmt.Errorf("decrement reaction: %w", err)
	}
	return nil
}

package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"minibbs/internal/models"

	"gorm.io/gorm"
)

const (
	// MaxNoteLength caps note text, counted in runes after trimming.
	MaxNoteLength = 200
	// RetentionLimit is the FIFO ceiling on stored notes.
	RetentionLimit = 1000
)

// CreateNote validates and persists a regular note or reply.
//
// Order matters: text is validated before the blocklist is consulted, and a
// reply target that does not exist is silently dropped rather than rejected.
func CreateNote(gdb *gorm.DB, text, ip string, author *models.User, replyTo *uint) (*models.Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxNoteLength {
		return nil, ErrTextTooLong
	}

	if replyTo != nil {
		var count int64
		if err := gdb.Model(&models.Note{}).Where("id = ?", *replyTo).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("resolve reply target: %w", err)
		}
		if count == 0 {
			replyTo = nil
		}
	}

	blocked, err := IsBlocked(gdb, ip)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	note := models.Note{
		Text:    text,
		IP:      ip,
		ReplyTo: replyTo,
	}
	if author != nil {
		note.UserID = &author.ID
	}
	if err := gdb.Create(&note).Error; err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return &note, nil
}

// CreateRenote persists an empty-text repost of an existing note.
// Renoting a renote or an empty note is a domain-rule violation, distinct
// from the target simply not existing.
func CreateRenote(gdb *gorm.DB, originalID uint, ip string, author *models.User) (*models.Note, error) {
	var target models.Note
	if err := gdb.First(&target, originalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load renote target: %w", err)
	}

	if target.RenoteFrom != nil || strings.TrimSpace(target.Text) == "" {
		return nil, ErrNotRenotable
	}

	blocked, err := IsBlocked(gdb, ip)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}

	note := models.Note{
		IP:         ip,
		RenoteFrom: &target.ID,
	}
	if author != nil {
		note.UserID = &author.ID
	}
	if err := gdb.Create(&note).Error; err != nil {
		return nil, fmt.Errorf("create renote: %w", err)
	}
	return &note, nil
}

// DeleteNote removes a single note (admin action).
func DeleteNote(gdb *gorm.DB, id uint) error {
	res := gdb.Delete(&models.Note{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete note %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TrimNotes enforces the retention ceiling: when more than RetentionLimit
// notes are stored, the oldest overflow is deleted so exactly the ceiling
// remains. Runs inline with every listing read; IDs are monotonic, so
// "oldest" is "smallest ID".
func TrimNotes(gdb *gorm.DB) error {
	var count int64
	if err := gdb.Model(&models.Note{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count notes: %w", err)
	}
	if count <= RetentionLimit {
		return nil
	}

	var pivot models.Note
	if err := gdb.Select("id").Order("id DESC").Offset(RetentionLimit - 1).First(&pivot).Error; err != nil {
		return fmt.Errorf("find retention pivot: %w", err)
	}
	if err := gdb.Where("id < ?", pivot.ID).Delete(&models.Note{}).Error; err != nil {
		return fmt.Errorf("trim notes: %w", err)
	}
	return nil
}

// NoteView is a note assembled for presentation: author, threading context
// and reaction summary resolved up front.
type NoteView struct {
	Note         models.Note
	Author       *models.User
	ReplyTarget  *models.Note
	RenoteTarget *models.Note
	Reactions    []ReactionSummary
}

type ReactionSummary struct {
	Emoji models.Emoji
	Count int
}

// ListNotes returns all stored notes newest-first with their display context.
// Everything is fetched in a fixed number of batched queries; no lazy
// per-row loading.
func ListNotes(gdb *gorm.DB) ([]NoteView, error) {
	var notes []models.Note
	if err := gdb.Order("id DESC").Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return assembleViews(gdb, notes)
}

// RecentNotes returns the newest notes for the admin console.
func RecentNotes(gdb *gorm.DB, limit int) ([]NoteView, error) {
	var notes []models.Note
	if err := gdb.Order("id DESC").Limit(limit).Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("recent notes: %w", err)
	}
	return assembleViews(gdb, notes)
}

func assembleViews(gdb *gorm.DB, notes []models.Note) ([]NoteView, error) {
	if len(notes) == 0 {
		return []NoteView{}, nil
	}

	noteIDs := make([]uint, 0, len(notes))
	userIDs := make([]uint, 0)
	targetIDs := make([]uint, 0)
	for _, n := range notes {
		noteIDs = append(noteIDs, n.ID)
		if n.UserID != nil {
			userIDs = append(userIDs, *n.UserID)
		}
		if n.ReplyTo != nil {
			targetIDs = append(targetIDs, *n.ReplyTo)
		}
		if n.RenoteFrom != nil {
			targetIDs = append(targetIDs, *n.RenoteFrom)
		}
	}

	userMap := make(map[uint]models.User)
	if len(userIDs) > 0 {
		var users []models.User
		if err := gdb.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return nil, fmt.Errorf("load authors: %w", err)
		}
		for _, u := range users {
			userMap[u.ID] = u
		}
	}

	targetMap := make(map[uint]models.Note)
	if len(targetIDs) > 0 {
		var targets []models.Note
		if err := gdb.Where("id IN ?", targetIDs).Find(&targets).Error; err != nil {
			return nil, fmt.Errorf("load thread targets: %w", err)
		}
		for _, t := range targets {
			targetMap[t.ID] = t
		}
	}

	var reactions []models.Reaction
	if err := gdb.Where("note_id IN ?", noteIDs).Order("emoji_id ASC").Find(&reactions).Error; err != nil {
		return nil, fmt.Errorf("load reactions: %w", err)
	}

	emojiMap := make(map[uint]models.Emoji)
	if len(reactions) > 0 {
		emojiIDs := make([]uint, 0, len(reactions))
		for _, r := range reactions {
			emojiIDs = append(emojiIDs, r.EmojiID)
		}
		var emojis []models.Emoji
		if err := gdb.Where("id IN ?", emojiIDs).Find(&emojis).Error; err != nil {
			return nil, fmt.Errorf("load reaction emojis: %w", err)
		}
		for _, e := range emojis {
			emojiMap[e.ID] = e
		}
	}

	reactionMap := make(map[uint][]ReactionSummary)
	for _, r := range reactions {
		emoji, ok := emojiMap[r.EmojiID]
		if !ok {
			// Emoji deleted from the catalog; the dangling counter is
			// accepted but not rendered.
			continue
		}
		reactionMap[r.NoteID] = append(reactionMap[r.NoteID], ReactionSummary{Emoji: emoji, Count: r.Count})
	}

	views := make([]NoteView, 0, len(notes))
	for _, n := range notes {
		v := NoteView{Note: n, Reactions: reactionMap[n.ID]}
		if n.UserID != nil {
			if u, ok := userMap[*n.UserID]; ok {
				v.Author = &u
			}
		}
		if n.ReplyTo != nil {
			if t, ok := targetMap[*n.ReplyTo]; ok {
				v.ReplyTarget = &t
			}
		}
		if n.RenoteFrom != nil {
			if t, ok := targetMap[*n.RenoteFrom]; ok {
				v.RenoteTarget = &t
			}
		}
		views = append(views, v)
	}
	return views, nil
}

package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"minibbs/internal/models"
	"minibbs/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddEmoji stores an uploaded emoji image under dir and records it in the
// catalog. The filename is sanitized and prefixed with a short random id so
// uploads can never collide or escape the directory.
func AddEmoji(gdb *gorm.DB, name string, file *multipart.FileHeader, dir string) (*models.Emoji, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if file == nil {
		return nil, ErrNoFile
	}

	filename := fmt.Sprintf("%s_%s", uuid.NewString()[:8], utils.SanitizeFilename(file.Filename))
	if err := saveUpload(file, filepath.Join(dir, filename)); err != nil {
		return nil, fmt.Errorf("store emoji image: %w", err)
	}

	emoji := models.Emoji{
		Name:      name,
		ImagePath: "emojis/" + filename,
	}
	if err := gdb.Create(&emoji).Error; err != nil {
		return nil, fmt.Errorf("create emoji: %w", err)
	}
	return &emoji, nil
}

// DeleteEmoji removes an emoji from the catalog. Reactions referencing it
// are left alone; the stored image file stays on disk as well.
func DeleteEmoji(gdb *gorm.DB, id uint) error {
	res := gdb.Delete(&models.Emoji{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete emoji %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetEmoji loads a single catalog entry.
func GetEmoji(gdb *gorm.DB, id uint) (*models.Emoji, error) {
	var emoji models.Emoji
	if err := gdb.First(&emoji, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &emoji, nil
}

// ListEmojis returns the full catalog, oldest first.
func ListEmojis(gdb *gorm.DB) ([]models.Emoji, error) {
	var emojis []models.Emoji
	if err := gdb.Order("id ASC").Find(&emojis).Error; err != nil {
		return nil, err
	}
	return emojis, nil
}

func saveUpload(file *multipart.FileHeader, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

package services

import (
	"fmt"

	"minibbs/internal/models"

	"gorm.io/gorm"
)

// IsBlocked checks exact-match membership in the blocklist.
func IsBlocked(gdb *gorm.DB, ip string) (bool, error) {
	var count int64
	if err := gdb.Model(&models.BlockedIP{}).Where("ip = ?", ip).Count(&count).Error; err != nil {
		return false, fmt.Errorf("blocklist lookup: %w", err)
	}
	return count > 0, nil
}

// Block adds an IP to the blocklist. Blocking an already-blocked IP is a no-op.
func Block(gdb *gorm.DB, ip string) error {
	blocked, err := IsBlocked(gdb, ip)
	if err != nil {
		return err
	}
	if blocked {
		return nil
	}
	if err := gdb.Create(&models.BlockedIP{IP: ip}).Error; err != nil {
		return fmt.Errorf("block %s: %w", ip, err)
	}
	return nil
}

// Unblock removes an IP from the blocklist. Unblocking an IP that is not
// blocked is a no-op.
func Unblock(gdb *gorm.DB, ip string) error {
	if err := gdb.Where("ip = ?", ip).Delete(&models.BlockedIP{}).Error; err != nil {
		return fmt.Errorf("unblock %s: %w", ip, err)
	}
	return nil
}

// ListBlockedIPs returns the blocklist for the admin console.
func ListBlockedIPs(gdb *gorm.DB) ([]models.BlockedIP, error) {
	var ips []models.BlockedIP
	if err := gdb.Order("created_at DESC").Find(&ips).Error; err != nil {
		return nil, err
	}
	return ips, nil
}

package db

import (
	"log"
	"strings"

	"minibbs/internal/config"
	"minibbs/internal/models"
	"minibbs/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error
	DB, err = gorm.Open(openDialector(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedAdmin(cfg)
}

// openDialector picks postgres for DSN-looking strings and sqlite for
// everything else (a bare file path, or file: / :memory: URIs).
func openDialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Note{},
		&models.BlockedIP{},
		&models.Emoji{},
		&models.Reaction{},
	)
}

// seedAdmin provisions the first admin account from env credentials.
// Runs once: skipped as soon as any admin exists.
func seedAdmin(cfg *config.Config) {
	var count int64
	DB.Model(&models.User{}).Where("is_admin = ?", true).Count(&count)
	if count > 0 {
		return
	}

	if cfg.AdminPassword == "" {
		log.Println("No admin account and ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	admin := models.User{
		Username: cfg.AdminUser,
		Password: hash,
		IsAdmin:  true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Fatalf("Failed to seed admin user %s: %v", cfg.AdminUser, err)
	}
	log.Printf("Seeded admin user %s", cfg.AdminUser)
}

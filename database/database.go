package database

import (
	"fmt"
	"log"
	"strings"

	"streamdraw/config"
	"streamdraw/internal/domain/billing"
	"streamdraw/internal/domain/outbox"
	"streamdraw/internal/domain/streams"
	"streamdraw/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Open picks the dialector from the DSN: "sqlite:<path>" or "file:<path>"
// uses sqlite, anything else is handed to the postgres driver.
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		dialector = sqlite.Open(strings.TrimPrefix(dsn, "sqlite:"))
	case strings.HasPrefix(dsn, "file:"):
		dialector = sqlite.Open(dsn)
	default:
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// the join table carries its own model so membership keeps a timestamp
	if err := db.SetupJoinTable(&streams.Stream{}, "Participants", &streams.Participant{}); err != nil {
		return nil, fmt.Errorf("setup participants join table: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&streams.Stream{},
		&streams.Participant{},
		&billing.Payment{},
		&outbox.Message{},
	)
}

func InitDB() {
	if config.DB_URL == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := Open(config.DB_URL)
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	DB = db
	fmt.Println("✅ Connected and migrated successfully")
}

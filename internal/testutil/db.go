// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"streamdraw/database"
	"streamdraw/internal/domain/streams"
	"streamdraw/internal/domain/users"

	"gorm.io/gorm"
)

// NewDB returns a migrated sqlite database in a temp dir. A single open
// connection serializes writers the way a row lock would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "streamdraw.db")
	db, err := database.Open("sqlite:" + path + "?_busy_timeout=5000")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, name, mobile string) *users.User {
	t.Helper()
	u := &users.User{Name: name, Mobile: mobile, UPI: name + "@upi"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func CreateStream(t *testing.T, db *gorm.DB, title string, price int64, status streams.Status) *streams.Stream {
	t.Helper()
	s := &streams.Stream{Title: title, Host: "host", Price: price, Status: status}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("create stream: %v", err)
	}
	return s
}

// ParticipantIDs returns the user ids recorded for a stream.
func ParticipantIDs(t *testing.T, db *gorm.DB, streamID uint) []uint {
	t.Helper()
	var ids []uint
	if err := db.Model(&streams.Participant{}).
		Where("stream_id = ?", streamID).
		Order("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		t.Fatalf("list participants: %v", err)
	}
	return ids
}

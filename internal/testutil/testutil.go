// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// DB opens a fresh migrated SQLite database with foreign keys enforced. Each
// call gets its own named in-memory database.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:lms_test_%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		tb.Fatalf("enable foreign keys: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}

	tb.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func SeedUser(tb testing.TB, db *gorm.DB, email string, role models.Role) *models.User {
	tb.Helper()
	u := &models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, db *gorm.DB, owner *models.User, name string) *models.Course {
	tb.Helper()
	c := &models.Course{
		ID:          uuid.New(),
		Name:        name,
		Description: "test course",
	}
	if owner != nil {
		c.OwnerID = PtrUUID(owner.ID)
	}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedLesson(tb testing.TB, db *gorm.DB, course *models.Course, owner *models.User, name string) *models.Lesson {
	tb.Helper()
	link := "https://youtube.com/watch?v=test"
	l := &models.Lesson{
		ID:          uuid.New(),
		Name:        name,
		Description: "test lesson",
		Link:        &link,
		CourseID:    course.ID,
	}
	if owner != nil {
		l.OwnerID = PtrUUID(owner.ID)
	}
	if err := db.Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrString(v string) *string { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

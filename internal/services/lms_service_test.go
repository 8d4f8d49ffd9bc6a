package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/policy"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/testutil"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.CourseUpdated
}

func (p *recordingPublisher) PublishCourseUpdated(_ context.Context, ev notify.CourseUpdated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func identity(u *models.User) *policy.Identity {
	return &policy.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

var allRows = Page{Offset: 0, Limit: 100}

func TestCourseAccessPolicy(t *testing.T) {
	db := testutil.DB(t)
	svc := NewCourseService(db, &recordingPublisher{}, discardLogger())
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "owner@example.com", models.RoleUser)
	other := testutil.SeedUser(t, db, "other@example.com", models.RoleUser)
	mod := testutil.SeedUser(t, db, "mod@example.com", models.RoleModerator)

	course, err := svc.Create(ctx, identity(owner), &dto.CourseRequest{Name: "Go", Description: "basics"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if course.OwnerID == nil || *course.OwnerID != owner.ID {
		t.Fatal("creator should own the course")
	}

	if _, err := svc.Create(ctx, identity(mod), &dto.CourseRequest{Name: "x", Description: "y"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("moderator create: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Create(ctx, nil, &dto.CourseRequest{Name: "x", Description: "y"}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous create: expected ErrUnauthenticated, got %v", err)
	}

	name := "Go 2"
	if _, err := svc.Update(ctx, identity(other), course.ID, CourseChanges{Name: &name}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner update: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, identity(mod), course.ID, CourseChanges{Name: &name}); err != nil {
		t.Fatalf("moderator update: %v", err)
	}
	if err := svc.Delete(ctx, identity(mod), course.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("moderator delete: expected ErrForbidden, got %v", err)
	}

	items, total, err := svc.List(ctx, identity(other), allRows)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("list: items=%d total=%d err=%v", len(items), total, err)
	}
	if _, _, err := svc.List(ctx, nil, allRows); err != nil {
		t.Fatalf("anonymous list: %v", err)
	}

	if err := svc.Delete(ctx, identity(owner), course.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(ctx, identity(owner), course.ID); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound after delete, got %v", err)
	}
}

func TestCourseDetailAndSubscriptionFlag(t *testing.T) {
	db := testutil.DB(t)
	svc := NewCourseService(db, &recordingPublisher{}, discardLogger())
	subs := NewSubscriptionService(db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "owner@example.com", models.RoleUser)
	course := testutil.SeedCourse(t, db, owner, "Go")
	testutil.SeedLesson(t, db, course, owner, "intro")
	testutil.SeedLesson(t, db, course, owner, "types")

	if _, err := subs.Toggle(ctx, identity(owner), course.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	detail, err := svc.Get(ctx, identity(owner), course.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.LessonsCount != 2 || len(detail.Lessons) != 2 {
		t.Fatalf("expected 2 lessons, got count=%d len=%d", detail.LessonsCount, len(detail.Lessons))
	}
	if !detail.IsSubscribed {
		t.Fatal("owner should be subscribed")
	}

	items, _, err := svc.List(ctx, nil, allRows)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].IsSubscribed {
		t.Fatal("anonymous caller must never be subscribed")
	}
}

func TestCourseUpdateNotifiesSubscribers(t *testing.T) {
	db := testutil.DB(t)
	pub := &recordingPublisher{}
	svc := NewCourseService(db, pub, discardLogger())
	subs := NewSubscriptionService(db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "owner@example.com", models.RoleUser)
	a := testutil.SeedUser(t, db, "a@example.com", models.RoleUser)
	b := testutil.SeedUser(t, db, "b@example.com", models.RoleUser)
	course := testutil.SeedCourse(t, db, owner, "Go")

	for _, u := range []*models.User{a, b} {
		if _, err := subs.Toggle(ctx, identity(u), course.ID); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}

	desc := "updated"
	if _, err := svc.Update(ctx, identity(owner), course.ID, CourseChanges{Description: &desc}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(pub.events))
	}
	if pub.events[0].Email != "a@example.com" || pub.events[0].CourseName != "Go" {
		t.Fatalf("unexpected event %+v", pub.events[0])
	}
}

func TestDeletingCourseCascadesLessons(t *testing.T) {
	db := testutil.DB(t)
	svc := NewCourseService(db, &recordingPublisher{}, discardLogger())
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "owner@example.com", models.RoleUser)
	course := testutil.SeedCourse(t, db, owner, "Go")
	testutil.SeedLesson(t, db, course, owner, "intro")
	testutil.SeedLesson(t, db, course, owner, "types")

	if err := svc.Delete(ctx, identity(owner), course.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var lessons int64
	db.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Count(&lessons)
	if lessons != 0 {
		t.Fatalf("expected lessons to be deleted with course, %d left", lessons)
	}
}

func TestLessonUpdateByNonOwnerIsForbidden(t *testing.T) {
	db := testutil.DB(t)
	lessons := NewLessonService(db)
	courses := NewCourseService(db, &recordingPublisher{}, discardLogger())
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "owner@example.com", models.RoleUser)
	stranger := testutil.SeedUser(t, db, "stranger@example.com", models.RoleUser)
	course := testutil.SeedCourse(t, db, owner, "Go")
	lesson := testutil.SeedLesson(t, db, course, owner, "intro")

	name := "hijacked"
	if _, err := lessons.Update(ctx, identity(stranger), lesson.ID, LessonInput{Name: &name}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, _, err := courses.List(ctx, identity(stranger), allRows); err != nil {
		t.Fatalf("same identity listing courses should succeed: %v", err)
	}
}

func TestLessonCreateValidatesLinkAndCourse(t *testing.T) {
	db := testutil.DB(t)
	svc := NewLessonService(db)
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "owner@example.com", models.RoleUser)
	course := testutil.SeedCourse(t, db, owner, "Go")
	name, desc := "intro", "first"

	bad := "https://vimeo.com/123"
	_, err := svc.Create(ctx, identity(owner), LessonInput{Name: &name, Description: &desc, Link: &bad, CourseID: &course.ID})
	var fields validation.FieldErrors
	if !errors.As(err, &fields) || fields["link"] != validation.VideoLinkMessage {
		t.Fatalf("expected link validation error, got %v", err)
	}

	missing := uuid.New()
	_, err = svc.Create(ctx, identity(owner), LessonInput{Name: &name, Description: &desc, CourseID: &missing})
	if !errors.As(err, &fields) || fields["course"] == "" {
		t.Fatalf("expected course validation error, got %v", err)
	}

	good := "https://youtu.be/abc"
	lesson, err := svc.Create(ctx, identity(owner), LessonInput{Name: &name, Description: &desc, Link: &good, CourseID: &course.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lesson.OwnerID == nil || *lesson.OwnerID != owner.ID {
		t.Fatal("creator should own the lesson")
	}
}

func TestToggleTwiceRestoresState(t *testing.T) {
	db := testutil.DB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "u@example.com", models.RoleUser)
	course := testutil.SeedCourse(t, db, user, "Go")

	first, err := svc.Toggle(ctx, identity(user), course.ID)
	if err != nil || first != SubscriptionAdded {
		t.Fatalf("first toggle: state=%q err=%v", first, err)
	}
	second, err := svc.Toggle(ctx, identity(user), course.ID)
	if err != nil || second != SubscriptionRemoved {
		t.Fatalf("second toggle: state=%q err=%v", second, err)
	}

	ok, err := svc.IsSubscribed(ctx, user.ID, course.ID)
	if err != nil || ok {
		t.Fatalf("expected no subscription after two toggles, got %v (%v)", ok, err)
	}
	if first.Message() != "Subscription added" || second.Message() != "Subscription removed" {
		t.Fatal("unexpected toggle messages")
	}
}

func TestToggleUnknownCourse(t *testing.T) {
	db := testutil.DB(t)
	svc := NewSubscriptionService(db)
	user := testutil.SeedUser(t, db, "u@example.com", models.RoleUser)

	if _, err := svc.Toggle(context.Background(), identity(user), uuid.New()); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestConcurrentTogglesKeepAtMostOneRow(t *testing.T) {
	db := testutil.DB(t)
	svc := NewSubscriptionService(db)
	user := testutil.SeedUser(t, db, "u@example.com", models.RoleUser)
	course := testutil.SeedCourse(t, db, user, "Go")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Toggle(context.Background(), identity(user), course.ID); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	var rows int64
	db.Model(&models.Subscription{}).Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&rows)
	if rows > 1 {
		t.Fatalf("expected at most one subscription row, got %d", rows)
	}
}

func TestToggleLosingInsertStillReportsAdded(t *testing.T) {
	db := testutil.DB(t)
	svc := NewSubscriptionService(db)
	user := testutil.SeedUser(t, db, "u@example.com", models.RoleUser)
	course := testutil.SeedCourse(t, db, user, "Go")

	// Another request subscribes between this toggle's delete and insert.
	var winner *models.Subscription
	err := db.Callback().Delete().After("gorm:delete").Register("test:concurrent_subscribe", func(tx *gorm.DB) {
		if winner != nil || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "subscriptions" {
			return
		}
		winner = &models.Subscription{UserID: user.ID, CourseID: course.ID}
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(winner).Error; err != nil {
			t.Errorf("concurrent subscribe: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	state, err := svc.Toggle(context.Background(), identity(user), course.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if winner == nil {
		t.Fatal("concurrent subscribe did not run")
	}
	if state != SubscriptionAdded {
		t.Fatalf("expected %q after losing the insert, got %q", SubscriptionAdded, state)
	}

	var subs []models.Subscription
	if err := db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).Find(&subs).Error; err != nil {
		t.Fatalf("load subscriptions: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != winner.ID {
		t.Fatalf("expected only the winning row, got %+v", subs)
	}
}

func TestCourseUpdateClearsEmptyImage(t *testing.T) {
	db := testutil.DB(t)
	svc := NewCourseService(db, &recordingPublisher{}, discardLogger())
	ctx := context.Background()

	owner := testutil.SeedUser(t, db, "owner@example.com", models.RoleUser)
	course := testutil.SeedCourse(t, db, owner, "Go")
	if err := db.Model(course).Update("image", "courses/go.png").Error; err != nil {
		t.Fatalf("set image: %v", err)
	}

	name := "Go 2"
	if _, err := svc.Update(ctx, identity(owner), course.ID, CourseChanges{Name: &name}); err != nil {
		t.Fatalf("partial update: %v", err)
	}
	var kept models.Course
	db.First(&kept, "id = ?", course.ID)
	if kept.Image == nil || *kept.Image != "courses/go.png" {
		t.Fatalf("nil image should be left unchanged, got %v", kept.Image)
	}

	empty := ""
	detail, err := svc.Update(ctx, identity(owner), course.ID, CourseChanges{Name: &name, Image: &empty})
	if err != nil {
		t.Fatalf("full update: %v", err)
	}
	if detail.Image != nil {
		t.Fatalf("empty image should clear the column, got %q", *detail.Image)
	}
}

func TestLessonCreateReportsEachMissingField(t *testing.T) {
	db := testutil.DB(t)
	svc := NewLessonService(db)
	owner := testutil.SeedUser(t, db, "owner@example.com", models.RoleUser)
	course := testutil.SeedCourse(t, db, owner, "Go")

	_, err := svc.Create(context.Background(), identity(owner), LessonInput{CourseID: &course.ID})
	var fields validation.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if fields["name"] == "" || fields["description"] == "" {
		t.Fatalf("expected name and description errors, got %v", fields)
	}
	if _, ok := fields["course"]; ok {
		t.Fatalf("course was given and should not be reported: %v", fields)
	}
}

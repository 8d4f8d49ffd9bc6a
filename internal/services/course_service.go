package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/policy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseChanges carries the fields of a course update; nil fields are left
// unchanged and an empty Image clears the column.
type CourseChanges struct {
	Name        *string
	Description *string
	Image       *string
}

type CourseService struct {
	db        *gorm.DB
	publisher notify.Publisher
	logger    *slog.Logger
}

func NewCourseService(db *gorm.DB, publisher notify.Publisher, logger *slog.Logger) *CourseService {
	return &CourseService{db: db, publisher: publisher, logger: logger}
}

func (s *CourseService) List(ctx context.Context, id *policy.Identity, page Page) ([]dto.CourseListItem, int64, error) {
	if !policy.Allow(policy.ActionList, id, nil) {
		return nil, 0, ErrForbidden
	}

	db := s.db.WithContext(ctx).Model(&models.Course{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []models.Course
	if err := db.Order("created_at, id").Offset(page.Offset).Limit(page.Limit).Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	subscribed, err := s.subscribedSet(ctx, id, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]dto.CourseListItem, 0, len(courses))
	for _, c := range courses {
		out = append(out, dto.CourseListItem{
			ID:           c.ID,
			Name:         c.Name,
			Image:        c.Image,
			Description:  c.Description,
			Owner:        c.OwnerID,
			IsSubscribed: subscribed[c.ID],
		})
	}
	return out, total, nil
}

func (s *CourseService) Create(ctx context.Context, id *policy.Identity, req *dto.CourseRequest) (*models.Course, error) {
	if err := authorize(policy.ActionCreate, id, nil); err != nil {
		return nil, err
	}

	course := models.Course{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		OwnerID:     &id.UserID,
	}
	if err := s.db.WithContext(ctx).Create(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *CourseService) Get(ctx context.Context, id *policy.Identity, courseID uuid.UUID) (*dto.CourseDetail, error) {
	course, err := s.find(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := authorize(policy.ActionRetrieve, id, course.OwnerID); err != nil {
		return nil, err
	}
	return s.detail(ctx, id, course)
}

// Update applies changes and queues a course-updated email for every
// subscriber. Notification failures are logged and do not fail the update.
func (s *CourseService) Update(ctx context.Context, id *policy.Identity, courseID uuid.UUID, changes CourseChanges) (*dto.CourseDetail, error) {
	course, err := s.find(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := authorize(policy.ActionUpdate, id, course.OwnerID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if changes.Name != nil {
		updates["name"] = *changes.Name
	}
	if changes.Description != nil {
		updates["description"] = *changes.Description
	}
	if changes.Image != nil {
		updates["image"] = nullable(*changes.Image)
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(course).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if course, err = s.find(ctx, courseID); err != nil {
		return nil, err
	}

	s.notifySubscribers(ctx, course)
	return s.detail(ctx, id, course)
}

// Delete removes the course; its lessons and subscriptions go with it.
func (s *CourseService) Delete(ctx context.Context, id *policy.Identity, courseID uuid.UUID) error {
	course, err := s.find(ctx, courseID)
	if err != nil {
		return err
	}
	if err := authorize(policy.ActionDestroy, id, course.OwnerID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(course).Error
}

// SubscriberEmails lists the emails of users subscribed to the course.
func (s *CourseService) SubscriberEmails(ctx context.Context, courseID uuid.UUID) ([]string, error) {
	var emails []string
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.user_id = users.id").
		Where("subscriptions.course_id = ?", courseID).
		Order("users.email").
		Pluck("users.email", &emails).Error
	return emails, err
}

func (s *CourseService) notifySubscribers(ctx context.Context, course *models.Course) {
	emails, err := s.SubscriberEmails(ctx, course.ID)
	if err != nil {
		s.logger.Error("failed to load course subscribers", "error", err, "course_id", course.ID)
		return
	}
	for _, email := range emails {
		ev := notify.CourseUpdated{Email: email, CourseName: course.Name}
		if err := s.publisher.PublishCourseUpdated(ctx, ev); err != nil {
			s.logger.Error("failed to queue course update email", "error", err, "course_id", course.ID, "email", email)
		}
	}
}

func (s *CourseService) find(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (s *CourseService) detail(ctx context.Context, id *policy.Identity, course *models.Course) (*dto.CourseDetail, error) {
	lessons := []models.Lesson{}
	if err := s.db.WithContext(ctx).Where("course_id = ?", course.ID).Order("created_at, id").Find(&lessons).Error; err != nil {
		return nil, err
	}
	subscribed, err := s.subscribedSet(ctx, id, []uuid.UUID{course.ID})
	if err != nil {
		return nil, err
	}

	return &dto.CourseDetail{
		ID:           course.ID,
		Name:         course.Name,
		Description:  course.Description,
		Image:        course.Image,
		Owner:        course.OwnerID,
		LessonsCount: int64(len(lessons)),
		Lessons:      lessons,
		IsSubscribed: subscribed[course.ID],
	}, nil
}

func (s *CourseService) subscribedSet(ctx context.Context, id *policy.Identity, courseIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(courseIDs))
	if id == nil || len(courseIDs) == 0 {
		return set, nil
	}

	var subscribed []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND course_id IN ?", id.UserID, courseIDs).
		Pluck("course_id", &subscribed).Error
	if err != nil {
		return nil, err
	}
	for _, cid := range subscribed {
		set[cid] = true
	}
	return set, nil
}

// authorize maps a policy decision to the error the handlers expect.
func authorize(action policy.Action, id *policy.Identity, ownerID *uuid.UUID) error {
	if policy.Allow(action, id, ownerID) {
		return nil
	}
	if id == nil {
		return ErrUnauthenticated
	}
	return ErrForbidden
}

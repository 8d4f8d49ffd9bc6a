package services

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/policy"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LessonInput carries lesson fields for create and update. On update nil
// fields are left unchanged and empty Image or Link clear the column; on
// create Name, Description and CourseID are required.
type LessonInput struct {
	Name        *string
	Description *string
	Image       *string
	Link        *string
	CourseID    *uuid.UUID
}

type LessonService struct {
	db *gorm.DB
}

func NewLessonService(db *gorm.DB) *LessonService {
	return &LessonService{db: db}
}

func (s *LessonService) List(ctx context.Context, id *policy.Identity, page Page) ([]models.Lesson, int64, error) {
	if !policy.Allow(policy.ActionList, id, nil) {
		return nil, 0, ErrForbidden
	}

	db := s.db.WithContext(ctx).Model(&models.Lesson{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	lessons := []models.Lesson{}
	if err := db.Order("created_at, id").Offset(page.Offset).Limit(page.Limit).Find(&lessons).Error; err != nil {
		return nil, 0, err
	}
	return lessons, total, nil
}

func (s *LessonService) Create(ctx context.Context, id *policy.Identity, in LessonInput) (*models.Lesson, error) {
	if err := authorize(policy.ActionCreate, id, nil); err != nil {
		return nil, err
	}
	if missing := requiredLessonFields(in); len(missing) > 0 {
		return nil, missing
	}
	if err := s.checkLink(in.Link); err != nil {
		return nil, err
	}
	if err := s.courseExists(ctx, *in.CourseID); err != nil {
		return nil, err
	}

	lesson := models.Lesson{
		Name:        *in.Name,
		Description: *in.Description,
		Image:       in.Image,
		Link:        in.Link,
		CourseID:    *in.CourseID,
		OwnerID:     &id.UserID,
	}
	if err := s.db.WithContext(ctx).Create(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (s *LessonService) Get(ctx context.Context, id *policy.Identity, lessonID uuid.UUID) (*models.Lesson, error) {
	lesson, err := s.find(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if err := authorize(policy.ActionRetrieve, id, lesson.OwnerID); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) Update(ctx context.Context, id *policy.Identity, lessonID uuid.UUID, in LessonInput) (*models.Lesson, error) {
	lesson, err := s.find(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if err := authorize(policy.ActionUpdate, id, lesson.OwnerID); err != nil {
		return nil, err
	}
	if err := s.checkLink(in.Link); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Image != nil {
		updates["image"] = nullable(*in.Image)
	}
	if in.Link != nil {
		updates["link"] = nullable(*in.Link)
	}
	if in.CourseID != nil {
		if err := s.courseExists(ctx, *in.CourseID); err != nil {
			return nil, err
		}
		updates["course_id"] = *in.CourseID
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(lesson).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.find(ctx, lessonID)
}

func (s *LessonService) Delete(ctx context.Context, id *policy.Identity, lessonID uuid.UUID) error {
	lesson, err := s.find(ctx, lessonID)
	if err != nil {
		return err
	}
	if err := authorize(policy.ActionDestroy, id, lesson.OwnerID); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(lesson).Error
}

func (s *LessonService) find(ctx context.Context, lessonID uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := s.db.WithContext(ctx).First(&lesson, "id = ?", lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return &lesson, nil
}

func requiredLessonFields(in LessonInput) validation.FieldErrors {
	missing := validation.FieldErrors{}
	if in.Name == nil || *in.Name == "" {
		missing["name"] = "This field is required."
	}
	if in.Description == nil || *in.Description == "" {
		missing["description"] = "This field is required."
	}
	if in.CourseID == nil {
		missing["course"] = "This field is required."
	}
	return missing
}

func (s *LessonService) checkLink(link *string) error {
	if link != nil && *link != "" && !validation.IsVideoLink(*link) {
		return validation.FieldErrors{"link": validation.VideoLinkMessage}
	}
	return nil
}

func (s *LessonService) courseExists(ctx context.Context, courseID uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return validation.FieldErrors{"course": "Invalid pk \"" + courseID.String() + "\" - object does not exist."}
	}
	return nil
}

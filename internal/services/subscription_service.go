package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/policy"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ToggleState string

const (
	SubscriptionAdded   ToggleState = "added"
	SubscriptionRemoved ToggleState = "removed"
)

func (s ToggleState) Message() string {
	if s == SubscriptionRemoved {
		return "Subscription removed"
	}
	return "Subscription added"
}

type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Toggle flips the caller's subscription to a course inside one transaction.
// The delete runs first; if it removed nothing the row is inserted with
// ON CONFLICT DO NOTHING, so a concurrent add that wins the race leaves a
// single row and both callers observe "added".
func (s *SubscriptionService) Toggle(ctx context.Context, id *policy.Identity, courseID uuid.UUID) (ToggleState, error) {
	if id == nil {
		return "", ErrUnauthenticated
	}

	var state ToggleState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrCourseNotFound
		}

		res := tx.Where("user_id = ? AND course_id = ?", id.UserID, courseID).Delete(&models.Subscription{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			state = SubscriptionRemoved
			return nil
		}

		sub := models.Subscription{UserID: id.UserID, CourseID: courseID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub).Error; err != nil {
			return err
		}
		state = SubscriptionAdded
		return nil
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

// IsSubscribed reports whether the user currently holds a subscription.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

package dto

import (
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/google/uuid"
)

type CourseRequest struct {
	Name        string  `json:"name" validate:"required,max=150"`
	Description string  `json:"description" validate:"required"`
	Image       *string `json:"image" validate:"omitempty,max=255"`
}

type CoursePatchRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=150"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	Image       *string `json:"image" validate:"omitempty,max=255"`
}

type CourseListItem struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Image        *string    `json:"image"`
	Description  string     `json:"description"`
	Owner        *uuid.UUID `json:"owner"`
	IsSubscribed bool       `json:"is_subscribed"`
}

type CourseDetail struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Image        *string         `json:"image"`
	Owner        *uuid.UUID      `json:"owner"`
	LessonsCount int64           `json:"lessons_count"`
	Lessons      []models.Lesson `json:"lessons"`
	IsSubscribed bool            `json:"is_subscribed"`
}

type LessonRequest struct {
	Name        string  `json:"name" validate:"required,max=150"`
	Description string  `json:"description" validate:"required"`
	Image       *string `json:"image" validate:"omitempty,max=255"`
	Link        *string `json:"link" validate:"omitempty,max=250,videolink"`
	Course      string  `json:"course" validate:"required,uuid"`
}

type LessonPatchRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=150"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	Image       *string `json:"image" validate:"omitempty,max=255"`
	Link        *string `json:"link" validate:"omitempty,max=250,videolink"`
	Course      *string `json:"course" validate:"omitempty,uuid"`
}

type SubscriptionRequest struct {
	CourseID string `json:"course_id" validate:"required,uuid"`
}

type SubscriptionResponse struct {
	Message string `json:"message"`
	State   string `json:"state"`
}

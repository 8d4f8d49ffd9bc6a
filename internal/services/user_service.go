package services

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/policy"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// List returns public fields for every user except the caller, whose entry
// is the full record with payments.
func (s *UserService) List(ctx context.Context, id *policy.Identity, page Page) ([]any, int64, error) {
	if id == nil {
		return nil, 0, ErrUnauthenticated
	}

	db := s.db.WithContext(ctx).Model(&models.User{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := db.Order("email").Offset(page.Offset).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	out := make([]any, 0, len(users))
	for i := range users {
		if users[i].ID != id.UserID {
			out = append(out, dto.NewUserPublic(&users[i]))
			continue
		}
		detail, err := s.detail(ctx, &users[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, detail)
	}
	return out, total, nil
}

// Get returns the full record with payments when the caller asks for
// themselves, and only public fields otherwise.
func (s *UserService) Get(ctx context.Context, id *policy.Identity, userID uuid.UUID) (any, error) {
	if id == nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ID != id.UserID {
		return dto.NewUserPublic(user), nil
	}
	return s.detail(ctx, user)
}

func (s *UserService) Update(ctx context.Context, id *policy.Identity, userID uuid.UUID, req *dto.UserUpdateRequest) (*dto.UserDetail, error) {
	if id == nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ID != id.UserID {
		return nil, ErrCannotEditUser
	}

	updates := map[string]any{}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			var count int64
			if err := s.db.WithContext(ctx).Model(&models.User{}).
				Where("email = ? AND id <> ?", email, user.ID).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrEmailTaken
			}
			updates["email"] = email
		}
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
		if user, err = s.find(ctx, userID); err != nil {
			return nil, err
		}
	}
	return s.detail(ctx, user)
}

// Delete removes the caller's account. Their payments stay with the user
// reference cleared; subscriptions and refresh tokens go with the row.
func (s *UserService) Delete(ctx context.Context, id *policy.Identity, userID uuid.UUID) error {
	if id == nil {
		return ErrUnauthenticated
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if user.ID != id.UserID {
		return ErrCannotDeleteUser
	}
	return s.db.WithContext(ctx).Delete(user).Error
}

func (s *UserService) find(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) detail(ctx context.Context, user *models.User) (*dto.UserDetail, error) {
	payments := []models.Payment{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).Order("payment_date").Find(&payments).Error; err != nil {
		return nil, err
	}
	return &dto.UserDetail{User: *user, Payments: payments}, nil
}

package services

import "errors"

var (
	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrForbidden          = errors.New("you do not have permission to perform this action")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
	ErrCannotEditUser     = errors.New("You cannot edit other user's profile")
	ErrCannotDeleteUser   = errors.New("You cannot delete other user's profile")
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrSessionNotFound    = errors.New("checkout session not found")
)

// nullable stores an empty optional column as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Page is a LIMIT/OFFSET window over an ordered list.
type Page struct {
	Offset int
	Limit  int
}

package services

import (
	"errors"
	"fmt"
)

// ===== SENTINEL ERRORS =====

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSubjectNotFound     = errors.New("subject not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrGradeNotFound       = errors.New("grade not found")
	ErrInstitutionNotFound = errors.New("institution not found")

	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrAlreadySubmitted  = errors.New("task already submitted")
	ErrTaskNotActive     = errors.New("task is not active")
	ErrInvalidLoginState = errors.New("invalid login state")
)

// PermissionError carries who tried what on which resource and why it was
// refused. Handlers map it to 403 with the role's default redirect.
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

// IsPermissionError reports whether err is (or wraps) a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsNotFoundError reports whether err is one of the service not-found
// sentinels.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSubjectNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrGradeNotFound) ||
		errors.Is(err, ErrInstitutionNotFound)
}

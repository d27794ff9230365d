package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound indicates the session does not exist or belongs to
	// another user.
	ErrSessionNotFound = errors.New("session not found")

	// ErrQuestionNotFound indicates the question does not exist or belongs
	// to another user's session.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned for any failed password login. It
	// does not distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEvaluationUnavailable is returned when an answer cannot be graded.
	// There is no safe default grade, so the submission is rejected.
	ErrEvaluationUnavailable = errors.New("answer evaluation unavailable")
)

// ServiceError adds the failing operation to an unexpected error.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{Service: service, Operation: operation, Message: message, Err: err}
}

package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Error kinds. Every error returned by a service wraps exactly one of these so
// transports can classify failures with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInsufficientData = errors.New("insufficient data")
	ErrUpstream         = errors.New("upstream error")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
)

// Error carries a client-safe message alongside its kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Frequently returned errors.
var (
	ErrQuestionNotFound   = newError(ErrNotFound, "Question not found")
	ErrExamNotFound       = newError(ErrNotFound, "Exam not found")
	ErrStudentNotFound    = newError(ErrNotFound, "Student not found")
	ErrAssignmentNotFound = newError(ErrNotFound, "Assignment not found")
	ErrResultNotFound     = newError(ErrNotFound, "Result not found")
	ErrUserNotFound       = newError(ErrNotFound, "User not found")

	ErrAssignmentExists   = newError(ErrConflict, "Assignment already exists for this student")
	ErrResultExists       = newError(ErrConflict, "Result already recorded for this exam and student")
	ErrCNICTaken          = newError(ErrConflict, "A user with this CNIC already exists")
	ErrInvalidCredentials = newError(ErrUnauthorized, "Invalid credentials")
	ErrNotOwner           = newError(ErrForbidden, "You do not have access to this resource")
	ErrNoAIProvider       = newError(ErrUpstream, "No AI provider is configured")
)

// InsufficientQuestionsError reports a question pool smaller than the number
// of questions requested for a generated paper.
type InsufficientQuestionsError struct {
	Available int
	Requested int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("Not enough questions available. Found %d, but %d required.", e.Available, e.Requested)
}

func (e *InsufficientQuestionsError) Unwrap() error { return ErrInsufficientData }

// IsValidation reports whether err is a validation failure, including the
// field errors produced by the validator.
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidation) {
		return true
	}
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}

// ErrorKind returns the name of the error class err belongs to, or an empty
// string for unclassified errors.
func ErrorKind(err error) string {
	switch {
	case IsValidation(err):
		return "ValidationError"
	case errors.Is(err, ErrNotFound):
		return "NotFoundError"
	case errors.Is(err, ErrConflict):
		return "ConflictError"
	case errors.Is(err, ErrInsufficientData):
		return "InsufficientDataError"
	case errors.Is(err, ErrUpstream):
		return "UpstreamError"
	case errors.Is(err, ErrForbidden):
		return "ForbiddenError"
	case errors.Is(err, ErrUnauthorized):
		return "UnauthorizedError"
	default:
		return ""
	}
}

func validationError(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

func upstreamError(format string, args ...interface{}) error {
	return newError(ErrUpstream, format, args...)
}

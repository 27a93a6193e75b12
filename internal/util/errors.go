package util

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindNotFound            ErrorKind = "not_found"
	KindValidation          ErrorKind = "validation_failed"
	KindConflict            ErrorKind = "conflict"
	KindInvalidState        ErrorKind = "invalid_state"
	KindCapacity            ErrorKind = "capacity"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
)

// HTTPStatus maps an error kind to the response status code.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindInvalidState, KindCapacity:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the error type every service operation fails with.
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap keeps the identity of a sentinel while attaching a cause.
func Wrap(sentinel *AppError, cause error) *AppError {
	return &AppError{Kind: sentinel.Kind, Message: sentinel.Message, Fields: sentinel.Fields, Err: &wrapped{sentinel: sentinel, cause: cause}}
}

type wrapped struct {
	sentinel *AppError
	cause    error
}

func (w *wrapped) Error() string   { return w.cause.Error() }
func (w *wrapped) Unwrap() []error { return []error{w.sentinel, w.cause} }

func NotFoundError(message string) *AppError {
	return NewError(KindNotFound, message)
}

func InvalidStateError(message string) *AppError {
	return NewError(KindInvalidState, message)
}

func ForbiddenError(message string) *AppError {
	return NewError(KindUnauthorized, message)
}

func UpstreamError(message string, cause error) *AppError {
	return &AppError{Kind: KindUpstreamUnavailable, Message: message, Err: cause}
}

// ValidationError carries per-field messages.
func ValidationError(fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: "payload validation failed", Fields: fields}
}

// KindOf returns the taxonomy kind of err, or "" for untyped errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

var (
	ErrPermissionDenied = NewError(KindUnauthorized, "permission denied")

	ErrCourseNotFound      = NotFoundError("course not found")
	ErrPlanNotFound        = NotFoundError("learning plan not found")
	ErrProgressNotFound    = NotFoundError("progress record not found")
	ErrTrainingNotFound    = NotFoundError("training not found")
	ErrSessionNotFound     = NotFoundError("training session not found")
	ErrApplicationNotFound = NotFoundError("training application not found")
	ErrCompletionNotFound  = NotFoundError("training completion not found")
	ErrEmployeeNotFound    = NotFoundError("employee not found")
	ErrNotEnrolled         = NotFoundError("user is not enrolled in this course")
	ErrNotAssigned         = NotFoundError("user is not assigned to this learning plan")
	ErrFeedbackNotFound    = NotFoundError("feedback not found")
	ErrAssessmentNotFound  = NotFoundError("trainer assessment not found")
	ErrNoteNotFound        = NotFoundError("performance note not found")

	ErrAlreadyEnrolled        = NewError(KindConflict, "user is already enrolled in this course")
	ErrAlreadyAssigned        = NewError(KindConflict, "user is already assigned to this learning plan")
	ErrDuplicateApplication   = NewError(KindConflict, "an active application already exists for this training")
	ErrDuplicateCompletion    = NewError(KindConflict, "a completion is already recorded for this application")
	ErrDuplicateEmployee      = NewError(KindConflict, "employee code, email or user is already in use")
	ErrEnrollmentCompleted    = InvalidStateError("completed enrollments cannot be changed")
	ErrEmptyPlan              = InvalidStateError("learning plan has no courses")
	ErrPlanHasAssignees       = InvalidStateError("learning plan still has assigned users")
	ErrApplicationNotPending  = InvalidStateError("application is not pending")
	ErrApplicationTerminal    = InvalidStateError("application is already in a terminal state")
	ErrApplicationNotApproved = InvalidStateError("application is not approved")
	ErrTrainingInactive       = InvalidStateError("training is not accepting applications")
	ErrPlanNotDraft           = NewError(KindUnauthorized, "only draft learning plans can be deleted")
	ErrTrainingFull           = NewError(KindCapacity, "training has no available slots")

	ErrDirectoryUnavailable = NewError(KindUpstreamUnavailable, "directory service unavailable")
)

package errors

import (
	"fmt"
	"time"
)

// AppError là custom error type cho application
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}

func newAppError(code ErrorCode, message string, raw error) AppError {
	if message == "" {
		message = code.UserMessage()
	}
	return AppError{
		Raw:       raw,
		HTTPCode:  code.HTTPStatus(),
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// General Errors
func ErrInternal(err error) AppError {
	return newAppError(ErrorCode_INTERNAL, "", err)
}

func ErrInvalidArgument(message string) AppError {
	return newAppError(ErrorCode_INVALID_ARGUMENT, message, nil)
}

func ErrNotFound(resource string) AppError {
	return newAppError(ErrorCode_NOT_FOUND, fmt.Sprintf("%s not found", resource), nil)
}

func ErrConflict(message string) AppError {
	return newAppError(ErrorCode_CONFLICT, message, nil)
}

// Authentication Errors
func ErrUnauthenticated() AppError {
	return newAppError(ErrorCode_UNAUTHENTICATED, "", nil)
}

func ErrInvalidToken(err error) AppError {
	return newAppError(ErrorCode_AUTH_INVALID_TOKEN, "", err)
}

func ErrTokenExpired() AppError {
	return newAppError(ErrorCode_AUTH_TOKEN_EXPIRED, "", nil)
}

// Analysis Pipeline Errors
func ErrUnsupportedFileType(mimeType string) AppError {
	return newAppError(ErrorCode_UNSUPPORTED_FILE_TYPE, "", nil).WithDetail("mime_type", mimeType)
}

func ErrExtractionFailed(err error) AppError {
	return newAppError(ErrorCode_EXTRACTION_FAILED, "", err)
}

func ErrRequestFailed(err error) AppError {
	return newAppError(ErrorCode_REQUEST_FAILED, "", err)
}

func ErrRateLimited(err error) AppError {
	return newAppError(ErrorCode_RATE_LIMITED, "", err)
}

func ErrCreditsExhausted(err error) AppError {
	return newAppError(ErrorCode_CREDITS_EXHAUSTED, "", err)
}

func ErrMalformedAnalysis(err error) AppError {
	return newAppError(ErrorCode_MALFORMED_ANALYSIS, "", err)
}

func ErrPersistenceFailed(err error) AppError {
	return newAppError(ErrorCode_PERSISTENCE_FAILED, "", err)
}

func ErrAnalysisInProgress(meetingID string) AppError {
	return newAppError(ErrorCode_ANALYSIS_IN_PROGRESS, "", nil).WithDetail("meeting_id", meetingID)
}

func ErrMeetingCancelled(meetingID string) AppError {
	return newAppError(ErrorCode_MEETING_CANCELLED, "", nil).WithDetail("meeting_id", meetingID)
}

func ErrTranscriptLocked(meetingID string) AppError {
	return newAppError(ErrorCode_TRANSCRIPT_LOCKED, "", nil).WithDetail("meeting_id", meetingID)
}

func ErrCancelled(err error) AppError {
	return newAppError(ErrorCode_CANCELLED, "", err)
}

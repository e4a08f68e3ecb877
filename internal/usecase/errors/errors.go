package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("resource not found")
	ErrConflict      = errors.New("resource conflict")
	ErrInternalError = errors.New("internal server error")
)

// Meeting errors
var (
	ErrTranscriptLocked = errors.New("transcript already analyzed")
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// Analysis pipeline errors
var (
	ErrNoTranscriptInput   = errors.New("neither file nor text provided")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrExtractionFailed    = errors.New("transcript extraction failed")
	ErrRequestFailed       = errors.New("analysis request failed")
	ErrRateLimited         = errors.New("analysis backend rate limited")
	ErrCreditsExhausted    = errors.New("analysis backend credits exhausted")
	ErrMalformedAnalysis   = errors.New("malformed analysis")
	ErrPersistenceFailed   = errors.New("analysis persistence failed")
	ErrAnalysisInProgress  = errors.New("analysis already in progress")
	ErrAnalysisCancelled   = errors.New("analysis cancelled")
)

// UnsupportedFileTypeError carries the resolved media type of a rejected upload
type UnsupportedFileTypeError struct {
	MIMEType string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedFileType, e.MIMEType)
}

func (e *UnsupportedFileTypeError) Is(target error) bool {
	return target == ErrUnsupportedFileType
}

package entities

import "errors"

// Domain errors
var (
	ErrMeetingNotFound         = errors.New("meeting not found")
	ErrMeetingCancelled        = errors.New("meeting is cancelled")
	ErrTranscriptRequired      = errors.New("analysis requires a stored transcript")
	ErrInvalidAgendaDuration   = errors.New("agenda item duration must be a positive number of minutes")
	ErrInvalidStatusTransition = errors.New("invalid meeting status transition")
)

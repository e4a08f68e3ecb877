package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Create stores a meeting together with its agenda and participants
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves a meeting with agenda items (in order) and participants.
	// Returns nil, nil when the meeting does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// UpdateStatus changes the meeting status
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) error
}

// TranscriptRepository defines the interface for transcript data access
type TranscriptRepository interface {
	// Upsert replaces the transcript of the meeting
	Upsert(ctx context.Context, transcript *entities.Transcript) error

	// FindByMeetingID returns nil, nil when no transcript exists
	FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.Transcript, error)
}

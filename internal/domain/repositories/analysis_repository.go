package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
)

// AnalysisRepository persists analysis results
type AnalysisRepository interface {
	// SaveAndComplete upserts the transcript (when non-nil) and the result
	// keyed by meeting id, then marks the meeting completed. All writes succeed
	// or none is applied. With a nil transcript the meeting must already have one.
	SaveAndComplete(ctx context.Context, transcript *entities.Transcript, result *entities.AnalysisResult) error

	// FindByMeetingID returns nil, nil when the meeting has no analysis
	FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.AnalysisResult, error)

	// FindUncompletedWithAnalysis lists scheduled meetings that already have an analysis
	FindUncompletedWithAnalysis(ctx context.Context, limit int) ([]uuid.UUID, error)

	// FindCompletedWithoutAnalysis lists completed meetings missing an analysis
	FindCompletedWithoutAnalysis(ctx context.Context, limit int) ([]uuid.UUID, error)
}

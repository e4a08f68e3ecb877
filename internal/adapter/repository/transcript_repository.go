package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-analyzer/internal/domain/repositories"
)

// transcriptRepository handles transcript data operations
type transcriptRepository struct {
	db *gorm.DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) repo.TranscriptRepository {
	return &transcriptRepository{db: db}
}

// Upsert stores the transcript, replacing the meeting's previous one
func (r *transcriptRepository) Upsert(ctx context.Context, transcript *entities.Transcript) error {
	if transcript == nil {
		return errors.New("transcript cannot be nil")
	}
	return upsertTranscript(r.db.WithContext(ctx), transcript)
}

// upsertTranscript runs on tx so the analysis store can write the transcript
// in the same transaction as the result
func upsertTranscript(tx *gorm.DB, transcript *entities.Transcript) error {
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "meeting_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content", "uploaded_by", "source", "file_name", "artifact_key", "updated_at",
		}),
	}).Create(transcript).Error
	if err != nil {
		return err
	}
	var stored entities.Transcript
	if err := tx.Where("meeting_id = ?", transcript.MeetingID).First(&stored).Error; err != nil {
		return err
	}
	*transcript = stored
	return nil
}

// FindByMeetingID retrieves a transcript by meeting ID
func (r *transcriptRepository) FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.Transcript, error) {
	var transcript entities.Transcript
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&transcript).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transcript, nil
}

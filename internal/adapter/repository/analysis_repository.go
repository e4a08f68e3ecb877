package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	repo "github.com/johnquangdev/meeting-analyzer/internal/domain/repositories"
)

var analysisUpsertColumns = []string{
	"productivity_score",
	"score_clamped",
	"summary",
	"decisions",
	"action_items",
	"agenda_adherence",
	"recommendations",
	"participant_analysis",
	"model_used",
	"updated_at",
}

type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository backed by GORM
func NewAnalysisRepository(db *gorm.DB) repo.AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) SaveAndComplete(ctx context.Context, transcript *entities.Transcript, result *entities.AnalysisResult) error {
	if result == nil {
		return errors.New("analysis result cannot be nil")
	}
	if transcript != nil && transcript.MeetingID != result.MeetingID {
		return errors.New("transcript belongs to another meeting")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meeting entities.Meeting
		if err := tx.Select("id", "status").Where("id = ?", result.MeetingID).First(&meeting).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entities.ErrMeetingNotFound
			}
			return fmt.Errorf("failed to load meeting: %w", err)
		}
		if !meeting.CanTransitionTo(entities.MeetingStatusCompleted) {
			if meeting.IsCancelled() {
				return entities.ErrMeetingCancelled
			}
			return entities.ErrInvalidStatusTransition
		}

		if transcript != nil {
			if err := upsertTranscript(tx, transcript); err != nil {
				return fmt.Errorf("failed to store transcript: %w", err)
			}
		} else {
			var transcripts int64
			if err := tx.Model(&entities.Transcript{}).Where("meeting_id = ?", result.MeetingID).Count(&transcripts).Error; err != nil {
				return fmt.Errorf("failed to check transcript: %w", err)
			}
			if transcripts == 0 {
				return entities.ErrTranscriptRequired
			}
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meeting_id"}},
			DoUpdates: clause.AssignmentColumns(analysisUpsertColumns),
		}).Create(result).Error
		if err != nil {
			return fmt.Errorf("failed to upsert analysis: %w", err)
		}

		if err := tx.Model(&entities.Meeting{}).
			Where("id = ?", result.MeetingID).
			Update("status", entities.MeetingStatusCompleted).Error; err != nil {
			return fmt.Errorf("failed to complete meeting: %w", err)
		}

		var stored entities.AnalysisResult
		if err := tx.Where("meeting_id = ?", result.MeetingID).First(&stored).Error; err != nil {
			return fmt.Errorf("failed to reload analysis: %w", err)
		}
		*result = stored
		return nil
	})
}

func (r *analysisRepository) FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.AnalysisResult, error) {
	var result entities.AnalysisResult
	if err := r.db.WithContext(ctx).Where("meeting_id = ?", meetingID).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *analysisRepository) FindUncompletedWithAnalysis(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Joins("JOIN meeting_analysis ON meeting_analysis.meeting_id = meetings.id").
		Where("meetings.status = ?", entities.MeetingStatusScheduled).
		Limit(limit).
		Pluck("meetings.id", &ids).Error
	return ids, err
}

func (r *analysisRepository) FindCompletedWithoutAnalysis(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Joins("LEFT JOIN meeting_analysis ON meeting_analysis.meeting_id = meetings.id").
		Where("meetings.status = ? AND meeting_analysis.id IS NULL", entities.MeetingStatusCompleted).
		Limit(limit).
		Pluck("meetings.id", &ids).Error
	return ids, err
}

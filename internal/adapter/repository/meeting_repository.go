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

type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository backed by GORM
func NewMeetingRepository(db *gorm.DB) repo.MeetingRepository {
	return &meetingRepository{db: db}
}

func (r *meetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(meeting).Error; err != nil {
			return fmt.Errorf("failed to create meeting: %w", err)
		}
		for i := range meeting.Participants {
			meeting.Participants[i].MeetingID = meeting.ID
		}
		if len(meeting.Participants) > 0 {
			if err := tx.Create(&meeting.Participants).Error; err != nil {
				return fmt.Errorf("failed to create participants: %w", err)
			}
		}
		for i := range meeting.AgendaItems {
			meeting.AgendaItems[i].MeetingID = meeting.ID
		}
		if len(meeting.AgendaItems) > 0 {
			if err := tx.Omit("Responsible").Create(&meeting.AgendaItems).Error; err != nil {
				return fmt.Errorf("failed to create agenda: %w", err)
			}
		}
		return nil
	})
}

func (r *meetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := r.db.WithContext(ctx).
		Preload("AgendaItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("AgendaItems.Responsible").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, name ASC")
		}).
		Where("id = ?", id).
		First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

func (r *meetingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entities.ErrMeetingNotFound
	}
	return nil
}

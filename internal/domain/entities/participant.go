package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Participant is a person invited to a meeting
type Participant struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	MeetingID uuid.UUID  `gorm:"type:uuid;not null;index" json:"meeting_id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Email     string     `gorm:"type:varchar(255)" json:"email,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for Participant
func (Participant) TableName() string {
	return "meeting_participants"
}

// BeforeCreate assigns an id when none was set
func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

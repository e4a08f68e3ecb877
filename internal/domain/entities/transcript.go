package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TranscriptSource records where the transcript text came from
type TranscriptSource string

const (
	TranscriptSourceText TranscriptSource = "text"
	TranscriptSourcePDF  TranscriptSource = "pdf"
)

// Transcript is the stored transcript model, one per meeting
type Transcript struct {
	ID          uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	MeetingID   uuid.UUID        `json:"meeting_id" gorm:"type:uuid;not null;uniqueIndex"`
	Content     string           `json:"content" gorm:"type:text;not null"`
	UploadedBy  uuid.UUID        `json:"uploaded_by" gorm:"type:uuid;not null"`
	Source      TranscriptSource `json:"source" gorm:"type:varchar(20);not null"`
	FileName    string           `json:"file_name,omitempty" gorm:"type:varchar(255)"`
	ArtifactKey string           `json:"artifact_key,omitempty" gorm:"type:varchar(512)"`
	CreatedAt   time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Transcript) TableName() string {
	return "transcripts"
}

// BeforeCreate assigns an id when none was set
func (t *Transcript) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

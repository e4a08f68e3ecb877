package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Score bounds
const (
	MinProductivityScore = 0.0
	MaxProductivityScore = 10.0
)

// Level is the closed set used for priority and participation level
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// NormalizeLevel maps any value outside high/medium/low to medium
func NormalizeLevel(v string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(v))) {
	case LevelHigh:
		return LevelHigh
	case LevelLow:
		return LevelLow
	default:
		return LevelMedium
	}
}

// Decision represents a decision made during the meeting
type Decision struct {
	Decision    string `json:"decision"`
	Responsible string `json:"responsible"`
}

// ActionItem is a follow-up task extracted from the transcript
type ActionItem struct {
	Task        string `json:"task"`
	Responsible string `json:"responsible"`
	Priority    Level  `json:"priority"`
}

// ParticipantAnalysis describes how one person took part in the meeting
type ParticipantAnalysis struct {
	Name               string `json:"name"`
	ParticipationLevel Level  `json:"participation_level"`
	KeyContributions   string `json:"key_contributions"`
}

// AnalysisResult is the persisted productivity analysis of a meeting
type AnalysisResult struct {
	ID                  uuid.UUID                                `json:"id" gorm:"type:uuid;primaryKey"`
	MeetingID           uuid.UUID                                `json:"meeting_id" gorm:"type:uuid;not null;uniqueIndex"`
	ProductivityScore   float64                                  `json:"productivity_score" gorm:"type:numeric(3,1);not null"`
	ScoreClamped        bool                                     `json:"score_clamped" gorm:"not null;default:false"`
	Summary             string                                   `json:"summary" gorm:"type:text;not null"`
	Decisions           datatypes.JSONSlice[Decision]            `json:"decisions" gorm:"type:jsonb"`
	ActionItems         datatypes.JSONSlice[ActionItem]          `json:"action_items" gorm:"type:jsonb"`
	AgendaAdherence     string                                   `json:"agenda_adherence" gorm:"type:text"`
	Recommendations     string                                   `json:"recommendations" gorm:"type:text"`
	ParticipantAnalysis datatypes.JSONSlice[ParticipantAnalysis] `json:"participant_analysis" gorm:"type:jsonb"`
	ModelUsed           string                                   `json:"model_used,omitempty" gorm:"type:varchar(100)"`
	CreatedAt           time.Time                                `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time                                `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (AnalysisResult) TableName() string {
	return "meeting_analysis"
}

// BeforeCreate assigns an id when none was set
func (a *AnalysisResult) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

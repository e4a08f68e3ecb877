package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MeetingStatus represents the lifecycle state of a meeting
type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusCompleted MeetingStatus = "completed"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// Meeting represents a scheduled meeting
type Meeting struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string        `gorm:"type:varchar(255);not null" json:"title"`
	Objective    string        `gorm:"type:text" json:"objective,omitempty"`
	ScheduledAt  *time.Time    `gorm:"index" json:"scheduled_at,omitempty"`
	Status       MeetingStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	OrganizerID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"organizer_id"`
	AgendaItems  []AgendaItem  `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"agenda_items,omitempty"`
	Participants []Participant `gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Meeting
func (Meeting) TableName() string {
	return "meetings"
}

// BeforeCreate assigns an id when none was set
func (m *Meeting) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = MeetingStatusScheduled
	}
	return nil
}

// CanTransitionTo reports whether the status change is allowed.
// completed and cancelled are both reachable only from scheduled; completed
// may be re-entered when an analysis is recomputed.
func (m *Meeting) CanTransitionTo(next MeetingStatus) bool {
	switch next {
	case MeetingStatusCompleted:
		return m.Status == MeetingStatusScheduled || m.Status == MeetingStatusCompleted
	case MeetingStatusCancelled:
		return m.Status == MeetingStatusScheduled
	default:
		return m.Status == next
	}
}

// IsCancelled returns true if the meeting reached its terminal cancelled state
func (m *Meeting) IsCancelled() bool {
	return m.Status == MeetingStatusCancelled
}

// AgendaItem is one planned topic of a meeting
type AgendaItem struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	MeetingID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"meeting_id"`
	OrderIndex      int          `gorm:"not null" json:"order_index"`
	Title           string       `gorm:"type:varchar(255);not null" json:"title"`
	DurationMinutes int          `gorm:"not null" json:"duration_minutes"`
	Context         string       `gorm:"type:text" json:"context,omitempty"`
	ResponsibleID   *uuid.UUID   `gorm:"type:uuid" json:"responsible_id,omitempty"`
	Responsible     *Participant `gorm:"foreignKey:ResponsibleID" json:"responsible,omitempty"`
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for AgendaItem
func (AgendaItem) TableName() string {
	return "agenda_items"
}

// BeforeCreate assigns an id when none was set
func (a *AgendaItem) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.DurationMinutes <= 0 {
		return ErrInvalidAgendaDuration
	}
	return nil
}

// ResponsibleName returns the display name of the responsible party, or ""
func (a AgendaItem) ResponsibleName() string {
	if a.Responsible == nil {
		return ""
	}
	return a.Responsible.Name
}

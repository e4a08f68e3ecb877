package analysis

import "time"

// Decision is a decision reached in the meeting
type Decision struct {
	Decision    string `json:"decision"`
	Responsible string `json:"responsible"`
}

// ActionItem is a follow-up task
type ActionItem struct {
	Task        string `json:"task"`
	Responsible string `json:"responsible"`
	Priority    string `json:"priority"` // high, medium, low
}

// ParticipantAnalysis describes one participant's engagement
type ParticipantAnalysis struct {
	Name               string `json:"name"`
	ParticipationLevel string `json:"participation_level"` // high, medium, low
	KeyContributions   string `json:"key_contributions"`
}

// AnalyzeResponse is the 200 body of POST /analyze
type AnalyzeResponse struct {
	Success             bool                  `json:"success"`
	Score               float64               `json:"score"`
	ProductivityScore   float64               `json:"productivity_score"`
	ScoreClamped        bool                  `json:"score_clamped"`
	Summary             string                `json:"summary"`
	Decisions           []Decision            `json:"decisions"`
	ActionItems         []ActionItem          `json:"action_items"`
	ParticipantAnalysis []ParticipantAnalysis `json:"participant_analysis"`
	AgendaAdherence     string                `json:"agenda_adherence"`
	Recommendations     string                `json:"recommendations"`
	MeetingID           string                `json:"meeting_id,omitempty"`
	Persisted           bool                  `json:"persisted"`
}

// AnalysisResponse is a stored analysis
type AnalysisResponse struct {
	ID                  string                `json:"id"`
	MeetingID           string                `json:"meeting_id"`
	ProductivityScore   float64               `json:"productivity_score"`
	ScoreClamped        bool                  `json:"score_clamped"`
	Summary             string                `json:"summary"`
	Decisions           []Decision            `json:"decisions"`
	ActionItems         []ActionItem          `json:"action_items"`
	ParticipantAnalysis []ParticipantAnalysis `json:"participant_analysis"`
	AgendaAdherence     string                `json:"agenda_adherence"`
	Recommendations     string                `json:"recommendations"`
	ModelUsed           string                `json:"model_used,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// TranscriptResponse is a stored transcript without its content
type TranscriptResponse struct {
	ID          string    `json:"id"`
	MeetingID   string    `json:"meeting_id"`
	Source      string    `json:"source"`
	FileName    string    `json:"file_name,omitempty"`
	ArtifactKey string    `json:"artifact_key,omitempty"`
	Length      int       `json:"length"`
	UploadedBy  string    `json:"uploaded_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}

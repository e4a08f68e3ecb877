package presenter

import (
	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-analyzer/internal/adapter/dto/analysis"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
)

// ToAnalyzeResponse converts a pipeline result to the POST /analyze body
func ToAnalyzeResponse(r *entities.AnalysisResult, persisted bool) *analysis.AnalyzeResponse {
	if r == nil {
		return nil
	}

	response := &analysis.AnalyzeResponse{
		Success:             true,
		Score:               r.ProductivityScore,
		ProductivityScore:   r.ProductivityScore,
		ScoreClamped:        r.ScoreClamped,
		Summary:             r.Summary,
		Decisions:           toDecisions(r.Decisions),
		ActionItems:         toActionItems(r.ActionItems),
		ParticipantAnalysis: toParticipantAnalysis(r.ParticipantAnalysis),
		AgendaAdherence:     r.AgendaAdherence,
		Recommendations:     r.Recommendations,
		Persisted:           persisted,
	}
	if r.MeetingID != uuid.Nil {
		response.MeetingID = r.MeetingID.String()
	}
	return response
}

// ToAnalysisResponse converts a stored AnalysisResult entity to its DTO
func ToAnalysisResponse(r *entities.AnalysisResult) *analysis.AnalysisResponse {
	if r == nil {
		return nil
	}
	return &analysis.AnalysisResponse{
		ID:                  r.ID.String(),
		MeetingID:           r.MeetingID.String(),
		ProductivityScore:   r.ProductivityScore,
		ScoreClamped:        r.ScoreClamped,
		Summary:             r.Summary,
		Decisions:           toDecisions(r.Decisions),
		ActionItems:         toActionItems(r.ActionItems),
		ParticipantAnalysis: toParticipantAnalysis(r.ParticipantAnalysis),
		AgendaAdherence:     r.AgendaAdherence,
		Recommendations:     r.Recommendations,
		ModelUsed:           r.ModelUsed,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

// ToTranscriptResponse converts a Transcript entity to its DTO
func ToTranscriptResponse(t *entities.Transcript) *analysis.TranscriptResponse {
	if t == nil {
		return nil
	}
	return &analysis.TranscriptResponse{
		ID:          t.ID.String(),
		MeetingID:   t.MeetingID.String(),
		Source:      string(t.Source),
		FileName:    t.FileName,
		ArtifactKey: t.ArtifactKey,
		Length:      len(t.Content),
		UploadedBy:  t.UploadedBy.String(),
		UpdatedAt:   t.UpdatedAt,
	}
}

func toDecisions(in []entities.Decision) []analysis.Decision {
	out := make([]analysis.Decision, len(in))
	for i, d := range in {
		out[i] = analysis.Decision{Decision: d.Decision, Responsible: d.Responsible}
	}
	return out
}

func toActionItems(in []entities.ActionItem) []analysis.ActionItem {
	out := make([]analysis.ActionItem, len(in))
	for i, a := range in {
		out[i] = analysis.ActionItem{Task: a.Task, Responsible: a.Responsible, Priority: string(a.Priority)}
	}
	return out
}

func toParticipantAnalysis(in []entities.ParticipantAnalysis) []analysis.ParticipantAnalysis {
	out := make([]analysis.ParticipantAnalysis, len(in))
	for i, p := range in {
		out[i] = analysis.ParticipantAnalysis{
			Name:               p.Name,
			ParticipationLevel: string(p.ParticipationLevel),
			KeyContributions:   p.KeyContributions,
		}
	}
	return out
}

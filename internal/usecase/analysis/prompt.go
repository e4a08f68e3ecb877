package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	"github.com/johnquangdev/meeting-analyzer/pkg/ai"
)

const systemInstruction = "You are an expert in meeting analysis and productivity. " +
	"You evaluate meetings objectively against their agenda and objective. " +
	"Always answer with a single valid JSON object and nothing else."

// AgendaLine is one agenda item as rendered in the prompt
type AgendaLine struct {
	Title           string
	DurationMinutes int
	Responsible     string
}

// MeetingContext is the meeting metadata the model sees
type MeetingContext struct {
	Title        string
	Objective    string
	ScheduledAt  *time.Time
	Participants []string
	Agenda       []AgendaLine
}

// NewMeetingContext builds the prompt context from a stored meeting.
// Agenda items are emitted in order_index order.
func NewMeetingContext(m *entities.Meeting) MeetingContext {
	mc := MeetingContext{
		Title:       m.Title,
		Objective:   m.Objective,
		ScheduledAt: m.ScheduledAt,
	}
	for _, p := range m.Participants {
		mc.Participants = append(mc.Participants, p.Name)
	}
	items := append([]entities.AgendaItem(nil), m.AgendaItems...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].OrderIndex < items[j].OrderIndex
	})
	for _, item := range items {
		mc.Agenda = append(mc.Agenda, AgendaLine{
			Title:           item.Title,
			DurationMinutes: item.DurationMinutes,
			Responsible:     item.ResponsibleName(),
		})
	}
	return mc
}

// BuildPrompt renders the analysis request. It is a pure function of its
// inputs: equal inputs give byte-identical prompts.
func BuildPrompt(mc MeetingContext, transcript string) ai.Prompt {
	var b strings.Builder

	b.WriteString("Analyze the following meeting transcript and produce a productivity analysis.\n\n")

	b.WriteString("MEETING INFORMATION:\n")
	fmt.Fprintf(&b, "- Title: %s\n", orDefault(mc.Title, "Untitled meeting"))
	fmt.Fprintf(&b, "- Objective: %s\n", orDefault(mc.Objective, "Not defined"))
	if mc.ScheduledAt != nil {
		fmt.Fprintf(&b, "- Date: %s\n", mc.ScheduledAt.UTC().Format("2006-01-02 15:04 UTC"))
	} else {
		b.WriteString("- Date: Not defined\n")
	}
	fmt.Fprintf(&b, "- Participants (%d): %s\n", len(mc.Participants), orDefault(strings.Join(mc.Participants, ", "), "Not defined"))

	b.WriteString("\nPLANNED AGENDA:\n")
	if len(mc.Agenda) == 0 {
		b.WriteString("No agenda defined\n")
	}
	for i, item := range mc.Agenda {
		fmt.Fprintf(&b, "%d. %s (%d min) - Responsible: %s\n",
			i+1, item.Title, item.DurationMinutes, orDefault(item.Responsible, "Not defined"))
	}

	b.WriteString("\nTRANSCRIPT:\n")
	b.WriteString(strings.TrimSpace(transcript))
	b.WriteString("\n\n")

	b.WriteString(`Respond ONLY with a JSON object in exactly this shape, without markdown or commentary:
{
  "productivity_score": <number from 0 to 10 with one decimal>,
  "summary": "<executive summary of the meeting>",
  "decisions": [{"decision": "<decision made>", "responsible": "<person responsible>"}],
  "action_items": [{"task": "<task>", "responsible": "<person responsible>", "priority": "high|medium|low"}],
  "agenda_adherence": "<how closely the meeting followed the planned agenda>",
  "recommendations": "<concrete recommendations to improve future meetings>",
  "participant_analysis": [{"name": "<participant>", "participation_level": "high|medium|low", "key_contributions": "<main contributions>"}]
}

SCORE CRITERIA:
- Clarity of the objectives and whether they were reached
- Adherence to the agenda and its time boxes
- Concrete decisions taken
- Action items with a clear owner
- Balanced participation and focus of the discussion
`)

	return ai.Prompt{
		System: systemInstruction,
		User:   b.String(),
		Schema: AnalysisSchema(),
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// AnalysisSchema is the single output schema of the analysis request
func AnalysisSchema() *ai.Schema {
	minScore, maxScore := entities.MinProductivityScore, entities.MaxProductivityScore
	levels := []string{string(entities.LevelHigh), string(entities.LevelMedium), string(entities.LevelLow)}

	return &ai.Schema{
		Type: ai.TypeObject,
		Properties: map[string]*ai.Schema{
			"productivity_score": {Type: ai.TypeNumber, Minimum: &minScore, Maximum: &maxScore, Description: "Productivity score from 0 to 10"},
			"summary":            {Type: ai.TypeString},
			"decisions": {
				Type: ai.TypeArray,
				Items: &ai.Schema{
					Type: ai.TypeObject,
					Properties: map[string]*ai.Schema{
						"decision":    {Type: ai.TypeString},
						"responsible": {Type: ai.TypeString},
					},
					Required: []string{"decision", "responsible"},
				},
			},
			"action_items": {
				Type: ai.TypeArray,
				Items: &ai.Schema{
					Type: ai.TypeObject,
					Properties: map[string]*ai.Schema{
						"task":        {Type: ai.TypeString},
						"responsible": {Type: ai.TypeString},
						"priority":    {Type: ai.TypeString, Enum: levels},
					},
					Required: []string{"task", "responsible", "priority"},
				},
			},
			"agenda_adherence": {Type: ai.TypeString},
			"recommendations":  {Type: ai.TypeString},
			"participant_analysis": {
				Type: ai.TypeArray,
				Items: &ai.Schema{
					Type: ai.TypeObject,
					Properties: map[string]*ai.Schema{
						"name":                {Type: ai.TypeString},
						"participation_level": {Type: ai.TypeString, Enum: levels},
						"key_contributions":   {Type: ai.TypeString},
					},
					Required: []string{"name", "participation_level", "key_contributions"},
				},
			},
		},
		Required: []string{"productivity_score", "summary", "decisions", "action_items", "agenda_adherence", "recommendations"},
	}
}

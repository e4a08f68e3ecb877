package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
)

func sampleMeeting() *entities.Meeting {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	alice := entities.Participant{ID: uuid.New(), Name: "Alice"}
	return &entities.Meeting{
		Title:        "Sprint review",
		Objective:    "Decide the release date",
		ScheduledAt:  &at,
		Participants: []entities.Participant{alice, {Name: "Bob"}},
		AgendaItems: []entities.AgendaItem{
			{OrderIndex: 2, Title: "Deployment plan", DurationMinutes: 15, Responsible: &alice},
			{OrderIndex: 1, Title: "Demo", DurationMinutes: 20},
		},
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	mc := NewMeetingContext(sampleMeeting())
	a := BuildPrompt(mc, "Team agreed to ship feature X by Friday.")
	b := BuildPrompt(NewMeetingContext(sampleMeeting()), "Team agreed to ship feature X by Friday.")

	assert.Equal(t, a.System, b.System)
	assert.Equal(t, a.User, b.User)
	require.NotNil(t, a.Schema)
}

func TestBuildPrompt_AgendaInOrder(t *testing.T) {
	p := BuildPrompt(NewMeetingContext(sampleMeeting()), "text")

	demo := strings.Index(p.User, "1. Demo (20 min) - Responsible: Not defined")
	deploy := strings.Index(p.User, "2. Deployment plan (15 min) - Responsible: Alice")
	require.NotEqual(t, -1, demo, p.User)
	require.NotEqual(t, -1, deploy, p.User)
	assert.Less(t, demo, deploy)
	assert.NotContains(t, p.User, "No agenda defined")

	assert.Contains(t, p.User, "- Title: Sprint review")
	assert.Contains(t, p.User, "- Objective: Decide the release date")
	assert.Contains(t, p.User, "- Date: 2025-03-14 09:30 UTC")
	assert.Contains(t, p.User, "- Participants (2): Alice, Bob")
}

func TestBuildPrompt_NoAgenda(t *testing.T) {
	p := BuildPrompt(MeetingContext{Title: "Ad hoc"}, "text")
	assert.Contains(t, p.User, "No agenda defined")
	assert.Contains(t, p.User, "- Objective: Not defined")
	assert.Contains(t, p.User, "- Participants (0): Not defined")
}

func TestBuildPrompt_RequestsJSONOnly(t *testing.T) {
	p := BuildPrompt(MeetingContext{}, "  transcript body  ")
	assert.Contains(t, p.User, "Respond ONLY with a JSON object")
	assert.Contains(t, p.User, "TRANSCRIPT:\ntranscript body\n")
	assert.Contains(t, p.System, "JSON")
	for _, key := range []string{"productivity_score", "summary", "decisions", "action_items", "agenda_adherence", "recommendations", "participant_analysis"} {
		assert.Contains(t, p.User, `"`+key+`"`)
		assert.Contains(t, p.Schema.Properties, key)
	}
}

func TestAnalysisSchema_Enums(t *testing.T) {
	s := AnalysisSchema()
	priority := s.Properties["action_items"].Items.Properties["priority"]
	assert.Equal(t, []string{"high", "medium", "low"}, priority.Enum)
	assert.Equal(t, 10.0, *s.Properties["productivity_score"].Maximum)
}

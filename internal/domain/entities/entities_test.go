package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLevel(t *testing.T) {
	cases := map[string]Level{
		"high":     LevelHigh,
		" HIGH ":   LevelHigh,
		"low":      LevelLow,
		"medium":   LevelMedium,
		"urgent":   LevelMedium,
		"":         LevelMedium,
		"critical": LevelMedium,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLevel(in), "input %q", in)
	}
}

func TestMeeting_CanTransitionTo(t *testing.T) {
	scheduled := &Meeting{Status: MeetingStatusScheduled}
	assert.True(t, scheduled.CanTransitionTo(MeetingStatusCompleted))
	assert.True(t, scheduled.CanTransitionTo(MeetingStatusCancelled))

	completed := &Meeting{Status: MeetingStatusCompleted}
	assert.True(t, completed.CanTransitionTo(MeetingStatusCompleted))
	assert.False(t, completed.CanTransitionTo(MeetingStatusCancelled))

	cancelled := &Meeting{Status: MeetingStatusCancelled}
	assert.False(t, cancelled.CanTransitionTo(MeetingStatusCompleted))
	assert.False(t, cancelled.CanTransitionTo(MeetingStatusScheduled))
	assert.True(t, cancelled.IsCancelled())
}

func TestAgendaItem_BeforeCreateRejectsNonPositiveDuration(t *testing.T) {
	item := &AgendaItem{Title: "x", DurationMinutes: 0}
	assert.ErrorIs(t, item.BeforeCreate(nil), ErrInvalidAgendaDuration)

	item.DurationMinutes = 5
	assert.NoError(t, item.BeforeCreate(nil))
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", item.ID.String())
}

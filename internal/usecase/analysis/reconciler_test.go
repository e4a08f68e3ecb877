package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-analyzer/internal/adapter/repository"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
)

func TestReconciler_RepairsBothDirections(t *testing.T) {
	var n int32
	f := newFixture(t, &sequenceRequester{calls: &n})
	ctx := context.Background()
	meetings := repository.NewMeetingRepository(f.db)

	// analysis row written but status never flipped
	require.NoError(t, f.db.Create(&entities.AnalysisResult{
		MeetingID:         f.meeting.ID,
		ProductivityScore: 7,
		Summary:           "ok",
	}).Error)

	stale := &entities.Meeting{Title: "M2", OrganizerID: f.meeting.OrganizerID, Status: entities.MeetingStatusCompleted}
	require.NoError(t, meetings.Create(ctx, stale))

	r := NewReconciler(meetings, repository.NewAnalysisRepository(f.db), f.locker, nil, nil)
	report, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Reverted)

	assert.Equal(t, entities.MeetingStatusCompleted, f.status(t))
	got, err := meetings.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.MeetingStatusScheduled, got.Status)

	report, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{}, report)
}

func TestReconciler_SkipsLockedMeetings(t *testing.T) {
	var n int32
	f := newFixture(t, &sequenceRequester{calls: &n})
	ctx := context.Background()
	require.NoError(t, f.db.Create(&entities.AnalysisResult{
		MeetingID:         f.meeting.ID,
		ProductivityScore: 7,
		Summary:           "ok",
	}).Error)

	unlock, ok, err := f.locker.TryLock(ctx, f.meeting.ID.String(), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer unlock()

	r := NewReconciler(repository.NewMeetingRepository(f.db), repository.NewAnalysisRepository(f.db), f.locker, nil, nil)
	report, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, entities.MeetingStatusScheduled, f.status(t))
}

func TestReconciler_StartRejectsBadSpec(t *testing.T) {
	r := NewReconciler(nil, nil, nil, nil, nil)
	assert.Error(t, r.Start("not a schedule"))
	r.Stop(context.Background())
}

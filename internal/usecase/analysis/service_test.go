package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-analyzer/internal/adapter/repository"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/repositories"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/database"
	ucErrors "github.com/johnquangdev/meeting-analyzer/internal/usecase/errors"
	"github.com/johnquangdev/meeting-analyzer/pkg/ai"
)

const shipTranscript = "Team agreed to ship feature X by Friday. Alice owns deployment."

const shipAnalysis = `{
  "productivity_score": 8.5,
  "summary": "The team agreed to ship feature X by Friday.",
  "decisions": [{"decision": "Ship feature X by Friday", "responsible": "Alice"}],
  "action_items": [{"task": "Deploy feature X", "responsible": "Alice", "priority": "high"}],
  "participant_analysis": [{"name": "Alice", "participation_level": "high", "key_contributions": "Owns deployment"}],
  "agenda_adherence": "Followed the agenda",
  "recommendations": "Keep the demo shorter"
}`

type fixture struct {
	db      *gorm.DB
	service *Service
	locker  *cache.Locker
	cache   *cache.AnalysisCache
	meeting *entities.Meeting
}

func jsonString(t *testing.T, s string) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func newFixture(t *testing.T, requester AnalysisRequester) *fixture {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB(db) })

	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(store.Close)

	meetings := repository.NewMeetingRepository(db)
	alice := entities.Participant{ID: uuid.New(), Name: "Alice"}
	meeting := &entities.Meeting{
		Title:        "M1",
		Objective:    "Plan the release",
		OrganizerID:  uuid.New(),
		Participants: []entities.Participant{alice, {Name: "Bob"}},
		AgendaItems: []entities.AgendaItem{
			{OrderIndex: 1, Title: "Release plan", DurationMinutes: 15, ResponsibleID: &alice.ID},
		},
	}
	require.NoError(t, meetings.Create(context.Background(), meeting))

	f := &fixture{
		db:      db,
		locker:  cache.NewLocker(store, "lock:"),
		cache:   cache.NewAnalysisCache(store, time.Minute),
		meeting: meeting,
	}
	f.service = NewService(Dependencies{
		Meetings:    meetings,
		Transcripts: repository.NewTranscriptRepository(db),
		Analyses:    repository.NewAnalysisRepository(db),
		Extractor:   NewExtractor(t.TempDir(), 1<<20, nil),
		Requester:   requester,
		Locker:      f.locker,
		Cache:       f.cache,
	}, Options{LLMTimeout: 5 * time.Second, PersistPolicy: testPolicy()})
	return f
}

func (f *fixture) status(t *testing.T) entities.MeetingStatus {
	t.Helper()
	var m entities.Meeting
	require.NoError(t, f.db.First(&m, "id = ?", f.meeting.ID).Error)
	return m.Status
}

func (f *fixture) analysisCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&entities.AnalysisResult{}).Count(&n).Error)
	return n
}

func TestService_AnalyzeCompletesMeeting(t *testing.T) {
	backend, _ := fakeBackend(t, []int{200}, jsonString(t, shipAnalysis))
	f := newFixture(t, NewRequester(backend, testPolicy(), nil, nil))

	out, err := f.service.Analyze(context.Background(), Input{
		MeetingID:  f.meeting.ID.String(),
		UploadedBy: uuid.New(),
		Text:       shipTranscript,
	})
	require.NoError(t, err)
	require.True(t, out.Persisted)

	assert.Equal(t, 8.5, out.Result.ProductivityScore)
	assert.Equal(t, "test-model", out.Result.ModelUsed)
	require.NotEmpty(t, out.Result.Decisions)
	assert.Contains(t, out.Result.Decisions[0].Decision, "feature X")
	assert.Equal(t, entities.MeetingStatusCompleted, f.status(t))

	transcript, err := repository.NewTranscriptRepository(f.db).FindByMeetingID(context.Background(), f.meeting.ID)
	require.NoError(t, err)
	require.NotNil(t, transcript)
	assert.Equal(t, shipTranscript, transcript.Content)

	stored, err := f.service.GetAnalysis(context.Background(), f.meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Result.Summary, stored.Summary)
}

func TestService_ReanalysisReplacesResult(t *testing.T) {
	second := strings.Replace(shipAnalysis, "8.5", "6", 1)
	var n int32
	stub := &sequenceRequester{outputs: []string{shipAnalysis, second}, calls: &n}
	f := newFixture(t, stub)

	for i := 0; i < 2; i++ {
		_, err := f.service.Analyze(context.Background(), Input{MeetingID: f.meeting.ID.String(), Text: shipTranscript})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), f.analysisCount(t))

	stored, err := f.service.GetAnalysis(context.Background(), f.meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, stored.ProductivityScore)
}

func TestService_RateLimitedLeavesMeetingUntouched(t *testing.T) {
	backend, calls := fakeBackend(t, []int{http.StatusTooManyRequests}, `""`)
	f := newFixture(t, NewRequester(backend, testPolicy(), nil, nil))

	_, err := f.service.Analyze(context.Background(), Input{MeetingID: f.meeting.ID.String(), Text: shipTranscript})
	assert.ErrorIs(t, err, ucErrors.ErrRateLimited)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, int64(0), f.analysisCount(t))
	assert.Equal(t, entities.MeetingStatusScheduled, f.status(t))
}

func TestService_UnsupportedFileTypeRejectedBeforeAnyWork(t *testing.T) {
	var n int32
	f := newFixture(t, &sequenceRequester{outputs: []string{shipAnalysis}, calls: &n})

	_, err := f.service.Analyze(context.Background(), Input{
		MeetingID: f.meeting.ID.String(),
		File: &Artifact{
			FileName: "notes.docx",
			MIMEType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Content:  bytes.NewReader([]byte("PK")),
		},
	})
	assert.ErrorIs(t, err, ucErrors.ErrUnsupportedFileType)
	assert.Equal(t, int32(0), atomic.LoadInt32(&n))
	assert.Equal(t, int64(0), f.analysisCount(t))
	assert.Equal(t, entities.MeetingStatusScheduled, f.status(t))
}

func TestService_MalformedOutputIsNotPersisted(t *testing.T) {
	var n int32
	f := newFixture(t, &sequenceRequester{outputs: []string{`{"decisions": []}`}, calls: &n})

	_, err := f.service.Analyze(context.Background(), Input{MeetingID: f.meeting.ID.String(), Text: shipTranscript})
	assert.ErrorIs(t, err, ucErrors.ErrMalformedAnalysis)
	assert.Equal(t, int64(0), f.analysisCount(t))
	assert.Equal(t, entities.MeetingStatusScheduled, f.status(t))
}

func TestService_UnknownMeetingIsNotPersisted(t *testing.T) {
	var n int32
	f := newFixture(t, &sequenceRequester{outputs: []string{shipAnalysis}, calls: &n})

	out, err := f.service.Analyze(context.Background(), Input{MeetingID: uuid.NewString(), Text: shipTranscript})
	require.NoError(t, err)
	assert.False(t, out.Persisted)
	assert.Equal(t, 8.5, out.Result.ProductivityScore)
	assert.Equal(t, int64(0), f.analysisCount(t))
}

func TestService_NoInput(t *testing.T) {
	var n int32
	f := newFixture(t, &sequenceRequester{calls: &n})

	_, err := f.service.Analyze(context.Background(), Input{MeetingID: f.meeting.ID.String(), Text: "   "})
	assert.ErrorIs(t, err, ucErrors.ErrNoTranscriptInput)

	_, err = f.service.Analyze(context.Background(), Input{MeetingID: "not-a-uuid", Text: shipTranscript})
	assert.ErrorIs(t, err, ucErrors.ErrInvalidInput)
}

func TestService_CancelledMeeting(t *testing.T) {
	var n int32
	f := newFixture(t, &sequenceRequester{outputs: []string{shipAnalysis}, calls: &n})
	require.NoError(t, f.db.Model(&entities.Meeting{}).Where("id = ?", f.meeting.ID).
		Update("status", entities.MeetingStatusCancelled).Error)

	_, err := f.service.Analyze(context.Background(), Input{MeetingID: f.meeting.ID.String(), Text: shipTranscript})
	assert.ErrorIs(t, err, entities.ErrMeetingCancelled)
	assert.Equal(t, int32(0), atomic.LoadInt32(&n))
}

func TestService_ConcurrentAnalysisRejected(t *testing.T) {
	var n int32
	f := newFixture(t, &sequenceRequester{outputs: []string{shipAnalysis}, calls: &n})

	unlock, ok, err := f.locker.TryLock(context.Background(), f.meeting.ID.String(), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.service.Analyze(context.Background(), Input{MeetingID: f.meeting.ID.String(), Text: shipTranscript})
	assert.ErrorIs(t, err, ucErrors.ErrAnalysisInProgress)
	assert.Equal(t, int32(0), atomic.LoadInt32(&n))

	unlock()
	_, err = f.service.Analyze(context.Background(), Input{MeetingID: f.meeting.ID.String(), Text: shipTranscript})
	assert.NoError(t, err)
}

func TestService_CallerCancellationDiscardsResult(t *testing.T) {
	req := &blockingRequester{
		started: make(chan struct{}),
		release: make(chan struct{}),
		done:    make(chan struct{}),
		out:     shipAnalysis,
	}
	f := newFixture(t, req)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := f.service.Analyze(ctx, Input{MeetingID: f.meeting.ID.String(), Text: shipTranscript})
		errc <- err
	}()

	<-req.started
	cancel()
	assert.ErrorIs(t, <-errc, ucErrors.ErrAnalysisCancelled)

	close(req.release)
	<-req.done
	assert.NoError(t, req.err, "model call must outlive the caller")
	assert.Equal(t, int64(0), f.analysisCount(t))
	assert.Equal(t, entities.MeetingStatusScheduled, f.status(t))

	transcript, err := repository.NewTranscriptRepository(f.db).FindByMeetingID(context.Background(), f.meeting.ID)
	require.NoError(t, err)
	assert.Nil(t, transcript)
}

func TestService_UploadTranscriptLockedAfterAnalysis(t *testing.T) {
	var n int32
	f := newFixture(t, &sequenceRequester{outputs: []string{shipAnalysis}, calls: &n})
	ctx := context.Background()

	_, err := f.service.UploadTranscript(ctx, TranscriptInput{MeetingID: f.meeting.ID, Text: "first draft"})
	require.NoError(t, err)

	_, err = f.service.Analyze(ctx, Input{MeetingID: f.meeting.ID.String(), Text: shipTranscript})
	require.NoError(t, err)

	_, err = f.service.UploadTranscript(ctx, TranscriptInput{MeetingID: f.meeting.ID, Text: "rewrite"})
	assert.ErrorIs(t, err, ucErrors.ErrTranscriptLocked)

	transcript, err := f.service.UploadTranscript(ctx, TranscriptInput{MeetingID: f.meeting.ID, Text: "rewrite", Force: true})
	require.NoError(t, err)
	assert.Equal(t, "rewrite", transcript.Content)

	_, err = f.service.UploadTranscript(ctx, TranscriptInput{MeetingID: uuid.New(), Text: "x"})
	assert.ErrorIs(t, err, entities.ErrMeetingNotFound)
}

func TestService_GetAnalysisNotFound(t *testing.T) {
	var n int32
	f := newFixture(t, &sequenceRequester{calls: &n})

	_, err := f.service.GetAnalysis(context.Background(), f.meeting.ID)
	assert.ErrorIs(t, err, ucErrors.ErrAnalysisNotFound)
}

func TestService_UnreadableFileFailsEvenWithText(t *testing.T) {
	var n int32
	f := newFixture(t, &sequenceRequester{outputs: []string{shipAnalysis}, calls: &n})

	_, err := f.service.Analyze(context.Background(), Input{
		MeetingID: f.meeting.ID.String(),
		File:      &Artifact{FileName: "broken.pdf", MIMEType: MIMETypePDF, Content: strings.NewReader("%PDF-1.4 garbage")},
		Text:      shipTranscript,
	})
	assert.ErrorIs(t, err, ucErrors.ErrExtractionFailed)
	assert.Equal(t, int32(0), atomic.LoadInt32(&n))
	assert.Equal(t, int64(0), f.analysisCount(t))
	assert.Equal(t, entities.MeetingStatusScheduled, f.status(t))
}

func TestService_FailedReanalysisKeepsPreviousTranscript(t *testing.T) {
	backend, calls := fakeBackend(t, []int{http.StatusOK, http.StatusTooManyRequests}, jsonString(t, shipAnalysis))
	f := newFixture(t, NewRequester(backend, testPolicy(), nil, nil))
	ctx := context.Background()

	_, err := f.service.Analyze(ctx, Input{MeetingID: f.meeting.ID.String(), Text: shipTranscript})
	require.NoError(t, err)

	_, err = f.service.Analyze(ctx, Input{MeetingID: f.meeting.ID.String(), Text: "A completely different meeting about budgets."})
	assert.ErrorIs(t, err, ucErrors.ErrRateLimited)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))

	transcript, err := repository.NewTranscriptRepository(f.db).FindByMeetingID(ctx, f.meeting.ID)
	require.NoError(t, err)
	require.NotNil(t, transcript)
	assert.Equal(t, shipTranscript, transcript.Content)

	stored, err := repository.NewAnalysisRepository(f.db).FindByMeetingID(ctx, f.meeting.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "The team agreed to ship feature X by Friday.", stored.Summary)
	assert.Equal(t, entities.MeetingStatusCompleted, f.status(t))
}

// concurrentWriteAnalyses runs onFirstRead right after the first lookup
// returns, before the caller gets to use the row
type concurrentWriteAnalyses struct {
	repositories.AnalysisRepository
	onFirstRead func()
	reads       int32
}

func (r *concurrentWriteAnalyses) FindByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.AnalysisResult, error) {
	result, err := r.AnalysisRepository.FindByMeetingID(ctx, meetingID)
	if atomic.AddInt32(&r.reads, 1) == 1 && r.onFirstRead != nil {
		r.onFirstRead()
	}
	return result, err
}

func TestService_GetAnalysisDoesNotCacheReplacedRow(t *testing.T) {
	var n int32
	f := newFixture(t, &sequenceRequester{outputs: []string{shipAnalysis}, calls: &n})
	ctx := context.Background()

	_, err := f.service.Analyze(ctx, Input{MeetingID: f.meeting.ID.String(), Text: shipTranscript})
	require.NoError(t, err)

	analyses := repository.NewAnalysisRepository(f.db)
	racing := &concurrentWriteAnalyses{AnalysisRepository: analyses}
	racing.onFirstRead = func() {
		time.Sleep(5 * time.Millisecond)
		replacement := &entities.AnalysisResult{MeetingID: f.meeting.ID, ProductivityScore: 4, Summary: "replaced"}
		require.NoError(t, analyses.SaveAndComplete(ctx, nil, replacement))
		require.NoError(t, f.cache.Invalidate(ctx, f.meeting.ID))
	}
	reader := NewService(Dependencies{
		Meetings:    repository.NewMeetingRepository(f.db),
		Transcripts: repository.NewTranscriptRepository(f.db),
		Analyses:    racing,
		Requester:   &sequenceRequester{outputs: []string{shipAnalysis}, calls: &n},
		Cache:       f.cache,
	}, Options{})

	first, err := reader.GetAnalysis(ctx, f.meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, "The team agreed to ship feature X by Friday.", first.Summary)

	_, hit, err := f.cache.Get(ctx, f.meeting.ID)
	require.NoError(t, err)
	assert.False(t, hit)

	second, err := reader.GetAnalysis(ctx, f.meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, "replaced", second.Summary)
}

type sequenceRequester struct {
	outputs []string
	calls   *int32
}

func (s *sequenceRequester) Request(ctx context.Context, p ai.Prompt) (string, error) {
	n := atomic.AddInt32(s.calls, 1)
	if int(n) > len(s.outputs) {
		return s.outputs[len(s.outputs)-1], nil
	}
	return s.outputs[n-1], nil
}

func (s *sequenceRequester) Model() string { return "stub" }

type blockingRequester struct {
	started chan struct{}
	release chan struct{}
	done    chan struct{}
	out     string
	err     error
}

func (b *blockingRequester) Request(ctx context.Context, p ai.Prompt) (string, error) {
	defer close(b.done)
	close(b.started)
	select {
	case <-b.release:
		return b.out, nil
	case <-ctx.Done():
		b.err = ctx.Err()
		return "", ctx.Err()
	}
}

func (b *blockingRequester) Model() string { return "stub" }

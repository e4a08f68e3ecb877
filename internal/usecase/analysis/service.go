package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/repositories"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/observability"
	ucErrors "github.com/johnquangdev/meeting-analyzer/internal/usecase/errors"
	"github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"github.com/johnquangdev/meeting-analyzer/pkg/retry"
)

const maxLoggedRaw = 2 << 10

// AnalysisRequester sends a prompt to the model and returns its raw output
type AnalysisRequester interface {
	Request(ctx context.Context, p ai.Prompt) (string, error)
	Model() string
}

// Locker serializes work per key
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

// Cache is the read-through analysis cache
type Cache interface {
	Get(ctx context.Context, meetingID uuid.UUID) (*entities.AnalysisResult, bool, error)
	Set(ctx context.Context, result *entities.AnalysisResult) error
	Invalidate(ctx context.Context, meetingID uuid.UUID) error
}

// Archive keeps a copy of uploaded transcripts in object storage
type Archive interface {
	ArchiveTranscript(ctx context.Context, meetingID uuid.UUID, fileName, text string) (string, error)
}

// Options tunes the pipeline
type Options struct {
	LockTTL        time.Duration
	LLMTimeout     time.Duration
	PersistTimeout time.Duration
	PersistPolicy  retry.Policy
}

// Dependencies groups the collaborators of the Service. Cache and Archive are optional.
type Dependencies struct {
	Meetings    repositories.MeetingRepository
	Transcripts repositories.TranscriptRepository
	Analyses    repositories.AnalysisRepository
	Extractor   *Extractor
	Validator   *Validator
	Requester   AnalysisRequester
	Locker      Locker
	Cache       Cache
	Archive     Archive
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// Input is one analysis request. Text is used only when there is no File;
// an unreadable File fails the request.
type Input struct {
	MeetingID    string
	MeetingTitle string
	UploadedBy   uuid.UUID
	File         *Artifact
	Text         string
}

// Outcome is the validated analysis and whether it was stored
type Outcome struct {
	Result    *entities.AnalysisResult
	Persisted bool
}

// TranscriptInput uploads a transcript without analyzing it
type TranscriptInput struct {
	MeetingID  uuid.UUID
	UploadedBy uuid.UUID
	File       *Artifact
	Text       string
	// Force replaces a transcript that an analysis already consumed
	Force bool
}

// Service runs the transcript analysis pipeline
type Service struct {
	deps   Dependencies
	opts   Options
	tracer *observability.Tracer
}

// NewService creates the analysis service
func NewService(deps Dependencies, opts Options) *Service {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 3 * time.Minute
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = 60 * time.Second
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = 15 * time.Second
	}
	if opts.PersistPolicy.MaxAttempts <= 0 {
		opts.PersistPolicy = retry.DefaultPolicy()
	}
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	return &Service{deps: deps, opts: opts, tracer: observability.NewTracer()}
}

// Analyze runs extraction, prompt building, the model call, validation and
// persistence. With an unknown or empty meeting id the analysis is returned
// without being stored.
func (s *Service) Analyze(ctx context.Context, in Input) (outcome *Outcome, err error) {
	ctx, span := s.tracer.StartAnalysis(ctx, in.MeetingID)
	defer func() {
		s.deps.Metrics.IncAnalysis(outcomeLabel(err))
		observability.End(span, err)
	}()

	if in.File == nil && strings.TrimSpace(in.Text) == "" {
		return nil, ucErrors.ErrNoTranscriptInput
	}

	var meetingID uuid.UUID
	if id := strings.TrimSpace(in.MeetingID); id != "" {
		meetingID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w: meetingId must be a UUID", ucErrors.ErrInvalidInput)
		}
	}

	var meeting *entities.Meeting
	if meetingID != uuid.Nil {
		unlock, err := s.lock(ctx, meetingID)
		if err != nil {
			return nil, err
		}
		defer unlock()

		meeting, err = s.deps.Meetings.FindByID(ctx, meetingID)
		if err != nil {
			return nil, fmt.Errorf("%w: load meeting: %w", ucErrors.ErrPersistenceFailed, err)
		}
		if meeting != nil && meeting.IsCancelled() {
			return nil, entities.ErrMeetingCancelled
		}
		if meeting == nil {
			s.info("Meeting not found, analysis will not be stored", zap.String("meeting_id", meetingID.String()))
		}
	}

	extracted, err := s.extract(ctx, in.File, in.Text)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	mc := MeetingContext{Title: in.MeetingTitle}
	if meeting != nil {
		mc = NewMeetingContext(meeting)
	}
	prompt := BuildPrompt(mc, extracted.Text)
	s.deps.Metrics.ObserveStage(observability.StagePrompt, start)

	raw, err := s.request(ctx, meetingID, prompt)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	result, err := s.deps.Validator.Validate(raw)
	s.deps.Metrics.ObserveStage(observability.StageValidate, start)
	if err != nil {
		var malformedErr *MalformedAnalysisError
		if errors.As(err, &malformedErr) && s.deps.Logger != nil {
			s.deps.Logger.Warn("❌ Model returned a malformed analysis",
				zap.String("meeting_id", in.MeetingID),
				zap.String("raw", truncate(malformedErr.Raw, maxLoggedRaw)),
				zap.Error(err))
		}
		return nil, err
	}
	result.ModelUsed = s.deps.Requester.Model()
	if result.ScoreClamped {
		s.deps.Metrics.IncScoreClamped()
		if s.deps.Logger != nil {
			s.deps.Logger.Warn("⚠️ Model score out of range, clamped",
				zap.String("meeting_id", in.MeetingID),
				zap.Float64("score", result.ProductivityScore))
		}
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ucErrors.ErrAnalysisCancelled, ctx.Err())
	}

	if meeting == nil {
		return &Outcome{Result: result, Persisted: false}, nil
	}

	transcript := newTranscript(meeting.ID, in.UploadedBy, in.File, extracted)
	s.archive(ctx, transcript)
	result.MeetingID = meeting.ID
	if err := s.persist(ctx, transcript, result); err != nil {
		return nil, err
	}

	s.info("✅ Meeting analysis stored",
		zap.String("meeting_id", meeting.ID.String()),
		zap.Float64("score", result.ProductivityScore),
		zap.Int("decisions", len(result.Decisions)),
		zap.Int("action_items", len(result.ActionItems)))

	return &Outcome{Result: result, Persisted: true}, nil
}

// UploadTranscript extracts and stores a meeting transcript. Once the
// meeting has an analysis the transcript is only replaced with Force.
func (s *Service) UploadTranscript(ctx context.Context, in TranscriptInput) (*entities.Transcript, error) {
	if in.File == nil && strings.TrimSpace(in.Text) == "" {
		return nil, ucErrors.ErrNoTranscriptInput
	}

	unlock, err := s.lock(ctx, in.MeetingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	meeting, err := s.deps.Meetings.FindByID(ctx, in.MeetingID)
	if err != nil {
		return nil, fmt.Errorf("%w: load meeting: %w", ucErrors.ErrPersistenceFailed, err)
	}
	if meeting == nil {
		return nil, entities.ErrMeetingNotFound
	}
	if meeting.IsCancelled() {
		return nil, entities.ErrMeetingCancelled
	}

	if !in.Force {
		existing, err := s.deps.Analyses.FindByMeetingID(ctx, in.MeetingID)
		if err != nil {
			return nil, fmt.Errorf("%w: load analysis: %w", ucErrors.ErrPersistenceFailed, err)
		}
		if existing != nil {
			return nil, ucErrors.ErrTranscriptLocked
		}
	}

	extracted, err := s.extract(ctx, in.File, in.Text)
	if err != nil {
		return nil, err
	}
	transcript := newTranscript(in.MeetingID, in.UploadedBy, in.File, extracted)
	s.archive(ctx, transcript)
	if err := s.deps.Transcripts.Upsert(ctx, transcript); err != nil {
		return nil, fmt.Errorf("%w: store transcript: %w", ucErrors.ErrPersistenceFailed, err)
	}
	return transcript, nil
}

// GetAnalysis returns the stored analysis of a meeting through the cache
func (s *Service) GetAnalysis(ctx context.Context, meetingID uuid.UUID) (*entities.AnalysisResult, error) {
	if s.deps.Cache != nil {
		cached, hit, err := s.deps.Cache.Get(ctx, meetingID)
		if err != nil && s.deps.Logger != nil {
			s.deps.Logger.Warn("analysis cache read failed", zap.String("meeting_id", meetingID.String()), zap.Error(err))
		}
		s.deps.Metrics.IncCacheLookup(hit)
		if hit {
			return cached, nil
		}
	}

	result, err := s.deps.Analyses.FindByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("%w: load analysis: %w", ucErrors.ErrPersistenceFailed, err)
	}
	if result == nil {
		return nil, ucErrors.ErrAnalysisNotFound
	}

	if s.deps.Cache != nil {
		s.fillCache(ctx, result)
	}
	return result, nil
}

// fillCache stores result, then drops it again if a writer replaced the row
// in the meantime. Writers invalidate after commit, so either the writer's
// invalidation or this re-check clears a stale entry.
func (s *Service) fillCache(ctx context.Context, result *entities.AnalysisResult) {
	if err := s.deps.Cache.Set(ctx, result); err != nil {
		if s.deps.Logger != nil {
			s.deps.Logger.Warn("analysis cache write failed", zap.String("meeting_id", result.MeetingID.String()), zap.Error(err))
		}
		return
	}

	current, err := s.deps.Analyses.FindByMeetingID(ctx, result.MeetingID)
	if err == nil && current != nil && current.ID == result.ID && current.UpdatedAt.Equal(result.UpdatedAt) {
		return
	}
	if err := s.deps.Cache.Invalidate(context.WithoutCancel(ctx), result.MeetingID); err != nil && s.deps.Logger != nil {
		s.deps.Logger.Warn("analysis cache invalidation failed", zap.String("meeting_id", result.MeetingID.String()), zap.Error(err))
	}
}

func (s *Service) lock(ctx context.Context, meetingID uuid.UUID) (func(), error) {
	if s.deps.Locker == nil {
		return func() {}, nil
	}
	unlock, ok, err := s.deps.Locker.TryLock(ctx, meetingID.String(), s.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire meeting lock: %w", ucErrors.ErrInternalError, err)
	}
	if !ok {
		return nil, ucErrors.ErrAnalysisInProgress
	}
	return unlock, nil
}

func (s *Service) extract(ctx context.Context, file *Artifact, text string) (*Extracted, error) {
	ctx, span := s.tracer.StartStage(ctx, observability.StageExtract)
	start := time.Now()
	defer s.deps.Metrics.ObserveStage(observability.StageExtract, start)

	if file == nil {
		observability.End(span, nil)
		return &Extracted{Text: text, Source: entities.TranscriptSourceText}, nil
	}

	extracted, err := s.deps.Extractor.Extract(ctx, *file)
	if err == nil && strings.TrimSpace(extracted.Text) == "" {
		err = fmt.Errorf("%w: transcript file is empty", ucErrors.ErrExtractionFailed)
	}
	observability.End(span, err)
	return extracted, err
}

func newTranscript(meetingID, uploadedBy uuid.UUID, file *Artifact, extracted *Extracted) *entities.Transcript {
	transcript := &entities.Transcript{
		MeetingID:  meetingID,
		Content:    extracted.Text,
		UploadedBy: uploadedBy,
		Source:     extracted.Source,
	}
	if file != nil {
		transcript.FileName = file.FileName
	}
	return transcript
}

// archive copies the transcript to object storage under a new key. A failed
// archive only costs the copy.
func (s *Service) archive(ctx context.Context, transcript *entities.Transcript) {
	if s.deps.Archive == nil {
		return
	}
	key, err := s.deps.Archive.ArchiveTranscript(ctx, transcript.MeetingID, transcript.FileName, transcript.Content)
	if err != nil {
		if s.deps.Logger != nil {
			s.deps.Logger.Warn("⚠️ Failed to archive transcript", zap.String("meeting_id", transcript.MeetingID.String()), zap.Error(err))
		}
		return
	}
	transcript.ArtifactKey = key
}

type requestResult struct {
	raw string
	err error
}

// request dispatches the model call on a context detached from the caller.
// If the caller goes away first, the eventual answer is dropped.
func (s *Service) request(ctx context.Context, meetingID uuid.UUID, prompt ai.Prompt) (string, error) {
	start := time.Now()
	defer s.deps.Metrics.ObserveStage(observability.StageRequest, start)

	done := make(chan requestResult, 1)
	go func() {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.LLMTimeout)
		defer cancel()
		raw, err := s.deps.Requester.Request(callCtx, prompt)
		done <- requestResult{raw: raw, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && s.deps.Logger != nil {
			s.deps.Logger.Error("❌ Model request failed",
				zap.String("meeting_id", meetingID.String()),
				zap.Error(res.err))
		}
		return res.raw, res.err
	case <-ctx.Done():
		s.info("Caller went away, model answer will be discarded", zap.String("meeting_id", meetingID.String()))
		return "", fmt.Errorf("%w: %w", ucErrors.ErrAnalysisCancelled, ctx.Err())
	}
}

// persist writes the transcript, the result and the status change in one
// transaction so a failed run leaves the previous analysis and its transcript intact
func (s *Service) persist(ctx context.Context, transcript *entities.Transcript, result *entities.AnalysisResult) error {
	ctx, span := s.tracer.StartStage(ctx, observability.StagePersist)
	start := time.Now()

	persistCtx, cancel := context.WithTimeout(ctx, s.opts.PersistTimeout)
	defer cancel()

	err := s.opts.PersistPolicy.Do(persistCtx, func(ctx context.Context) error {
		return s.deps.Analyses.SaveAndComplete(ctx, transcript, result)
	}, isTransientPersistence, func(attempt int, err error, wait time.Duration) {
		if s.deps.Logger != nil {
			s.deps.Logger.Warn("⚠️ Analysis write failed, retrying",
				zap.String("meeting_id", result.MeetingID.String()),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
	})
	s.deps.Metrics.ObserveStage(observability.StagePersist, start)

	switch {
	case err == nil:
	case ctx.Err() != nil:
		err = fmt.Errorf("%w: %w", ucErrors.ErrAnalysisCancelled, ctx.Err())
	case errors.Is(err, entities.ErrMeetingCancelled), errors.Is(err, entities.ErrMeetingNotFound):
	default:
		err = fmt.Errorf("%w: %w", ucErrors.ErrPersistenceFailed, err)
	}
	observability.End(span, err)
	if err != nil {
		return err
	}

	if s.deps.Cache != nil {
		if cerr := s.deps.Cache.Invalidate(context.WithoutCancel(ctx), result.MeetingID); cerr != nil && s.deps.Logger != nil {
			s.deps.Logger.Warn("analysis cache invalidation failed", zap.String("meeting_id", result.MeetingID.String()), zap.Error(cerr))
		}
	}
	return nil
}

func isTransientPersistence(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, entities.ErrMeetingNotFound),
		errors.Is(err, entities.ErrMeetingCancelled),
		errors.Is(err, entities.ErrTranscriptRequired),
		errors.Is(err, entities.ErrInvalidStatusTransition):
		return false
	}
	return true
}

func (s *Service) info(msg string, fields ...zap.Field) {
	if s.deps.Logger != nil {
		s.deps.Logger.Info(msg, fields...)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ucErrors.ErrUnsupportedFileType):
		return "unsupported_file_type"
	case errors.Is(err, ucErrors.ErrExtractionFailed):
		return "extraction_failed"
	case errors.Is(err, ucErrors.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ucErrors.ErrCreditsExhausted):
		return "credits_exhausted"
	case errors.Is(err, ucErrors.ErrMalformedAnalysis):
		return "malformed_analysis"
	case errors.Is(err, ucErrors.ErrRequestFailed):
		return "request_failed"
	case errors.Is(err, ucErrors.ErrPersistenceFailed):
		return "persistence_failed"
	case errors.Is(err, ucErrors.ErrAnalysisInProgress):
		return "in_progress"
	case errors.Is(err, ucErrors.ErrAnalysisCancelled):
		return "cancelled"
	case errors.Is(err, entities.ErrMeetingCancelled):
		return "meeting_cancelled"
	default:
		return "invalid_input"
	}
}

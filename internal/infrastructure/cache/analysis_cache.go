package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
)

// AnalysisCache is a read-through copy of stored analyses. The database stays
// the source of truth; entries are dropped whenever an analysis is written.
type AnalysisCache struct {
	store Store
	ttl   time.Duration
}

// NewAnalysisCache creates an analysis cache over store
func NewAnalysisCache(store Store, ttl time.Duration) *AnalysisCache {
	return &AnalysisCache{store: store, ttl: ttl}
}

func analysisKey(meetingID uuid.UUID) string {
	return "analysis:" + meetingID.String()
}

// Get returns the cached analysis and whether it was present
func (c *AnalysisCache) Get(ctx context.Context, meetingID uuid.UUID) (*entities.AnalysisResult, bool, error) {
	b, err := c.store.Get(ctx, analysisKey(meetingID))
	if errors.Is(err, ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var result entities.AnalysisResult
	if err := json.Unmarshal(b, &result); err != nil {
		// corrupt entry, treat as a miss and let the caller repopulate
		_ = c.store.Delete(ctx, analysisKey(meetingID))
		return nil, false, nil
	}
	return &result, true, nil
}

// Set caches the analysis
func (c *AnalysisCache) Set(ctx context.Context, result *entities.AnalysisResult) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, analysisKey(result.MeetingID), b, c.ttl)
}

// Invalidate drops the cached analysis of a meeting
func (c *AnalysisCache) Invalidate(ctx context.Context, meetingID uuid.UUID) error {
	return c.store.Delete(ctx, analysisKey(meetingID))
}

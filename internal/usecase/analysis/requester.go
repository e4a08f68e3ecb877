package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/observability"
	ucErrors "github.com/johnquangdev/meeting-analyzer/internal/usecase/errors"
	"github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"github.com/johnquangdev/meeting-analyzer/pkg/retry"
)

// Completer is a language-model backend
type Completer interface {
	Complete(ctx context.Context, p ai.Prompt) (string, error)
	Model() string
}

// Requester sends prompts to the model backend with the retry policy applied
type Requester struct {
	backend        Completer
	policy         retry.Policy
	attemptTimeout time.Duration
	logger         *zap.Logger
	metrics        *observability.Metrics
	tracer         *observability.Tracer
}

// NewRequester creates a new requester
func NewRequester(backend Completer, policy retry.Policy, logger *zap.Logger, metrics *observability.Metrics) *Requester {
	return &Requester{
		backend: backend,
		policy:  policy,
		logger:  logger,
		metrics: metrics,
		tracer:  observability.NewTracer(),
	}
}

// WithAttemptTimeout bounds each model call separately so a timed-out
// attempt can still be retried within the overall deadline
func (r *Requester) WithAttemptTimeout(d time.Duration) *Requester {
	r.attemptTimeout = d
	return r
}

// Model returns the backend model name
func (r *Requester) Model() string {
	return r.backend.Model()
}

// Request returns the raw model output. Transient failures (network errors,
// 5xx) are retried; 429, 402 and other 4xx answers are returned at once.
func (r *Requester) Request(ctx context.Context, p ai.Prompt) (string, error) {
	ctx, span := r.tracer.StartLLM(ctx, r.backend.Model())

	var raw string
	op := func(ctx context.Context) error {
		if r.attemptTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.attemptTimeout)
			defer cancel()
		}
		out, err := r.backend.Complete(ctx, p)
		if err != nil {
			r.metrics.IncLLMRequest(r.backend.Model(), resultClass(err))
			return err
		}
		r.metrics.IncLLMRequest(r.backend.Model(), "ok")
		raw = out
		return nil
	}
	notify := func(attempt int, err error, wait time.Duration) {
		r.metrics.IncLLMRetry()
		if r.logger != nil {
			r.logger.Warn("⚠️ Model request failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", wait),
				zap.Error(err))
		}
	}

	err := r.policy.Do(ctx, op, isTransient, notify)
	if err != nil {
		err = classifyRequestError(err)
	}
	observability.End(span, err)
	return raw, err
}

// isTransient reports whether a failed model call may succeed when repeated
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ai.ErrEmptyResponse) {
		return false
	}
	if status := ai.StatusCode(err); status != 0 {
		return status >= http.StatusInternalServerError
	}
	// network errors and per-attempt timeouts
	return true
}

func classifyRequestError(err error) error {
	switch status := ai.StatusCode(err); {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ucErrors.ErrRateLimited, err)
	case status == http.StatusPaymentRequired:
		return fmt.Errorf("%w: %w", ucErrors.ErrCreditsExhausted, err)
	case errors.Is(err, ai.ErrEmptyResponse):
		return &MalformedAnalysisError{Reason: err}
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ucErrors.ErrAnalysisCancelled, err)
	default:
		return fmt.Errorf("%w: %w", ucErrors.ErrRequestFailed, err)
	}
}

func resultClass(err error) string {
	switch status := ai.StatusCode(err); {
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status == http.StatusPaymentRequired:
		return "credits_exhausted"
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status >= http.StatusBadRequest:
		return "client_error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "network_error"
	}
}

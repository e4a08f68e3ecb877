package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	ucErrors "github.com/johnquangdev/meeting-analyzer/internal/usecase/errors"
)

// MalformedAnalysisError carries the raw model output for diagnostics.
// Error() never includes the raw text.
type MalformedAnalysisError struct {
	Raw    string
	Reason error
}

func (e *MalformedAnalysisError) Error() string {
	return fmt.Sprintf("%s: %v", ucErrors.ErrMalformedAnalysis, e.Reason)
}

func (e *MalformedAnalysisError) Unwrap() []error {
	return []error{ucErrors.ErrMalformedAnalysis, e.Reason}
}

func malformed(raw string, format string, args ...interface{}) error {
	return &MalformedAnalysisError{Raw: raw, Reason: fmt.Errorf(format, args...)}
}

// flexNumber accepts a JSON number or a numeric string
type flexNumber struct {
	Value float64
	Set   bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("score %q is not a number", s)
		}
		n.Value, n.Set = v, true
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value, n.Set = v, true
	return nil
}

// flexText accepts a string, or renders any other JSON value as text
type flexText string

func (t *flexText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = flexText(s)
		return nil
	}
	*t = flexText(b)
	return nil
}

func (t flexText) String() string {
	return strings.TrimSpace(string(t))
}

type rawDecision struct {
	Decision    flexText `json:"decision"`
	Responsible flexText `json:"responsible"`
}

type rawActionItem struct {
	Task        flexText `json:"task"`
	Responsible flexText `json:"responsible"`
	Priority    flexText `json:"priority"`
}

type rawParticipant struct {
	Name               flexText `json:"name"`
	ParticipationLevel flexText `json:"participation_level"`
	KeyContributions   flexText `json:"key_contributions"`
}

// rawAnalysis is the untrusted model output before validation
type rawAnalysis struct {
	Score               flexNumber       `json:"score"`
	ProductivityScore   flexNumber       `json:"productivity_score"`
	Summary             *flexText        `json:"summary"`
	Decisions           []rawDecision    `json:"decisions"`
	ActionItems         []rawActionItem  `json:"action_items"`
	AgendaAdherence     flexText         `json:"agenda_adherence"`
	Recommendations     flexText         `json:"recommendations"`
	ParticipantAnalysis []rawParticipant `json:"participant_analysis"`
}

// Validator turns raw model output into a schema-conformant AnalysisResult
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// Validate parses and normalizes the model output. Missing lists become
// empty, unknown enum values become medium and the score is clamped to
// [0,10] with ScoreClamped set. A missing score or summary is fatal.
func (v *Validator) Validate(raw string) (*entities.AnalysisResult, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, malformed(raw, "empty response")
	}

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, malformed(raw, "failed to parse JSON response: %w", err)
	}

	score := parsed.ProductivityScore
	if !score.Set {
		score = parsed.Score
	}
	if !score.Set {
		return nil, malformed(raw, "missing score")
	}
	if math.IsNaN(score.Value) || math.IsInf(score.Value, 0) {
		return nil, malformed(raw, "score is not finite")
	}
	if parsed.Summary == nil || parsed.Summary.String() == "" {
		return nil, malformed(raw, "missing summary")
	}

	result := &entities.AnalysisResult{
		Summary:             parsed.Summary.String(),
		AgendaAdherence:     parsed.AgendaAdherence.String(),
		Recommendations:     parsed.Recommendations.String(),
		Decisions:           make([]entities.Decision, 0, len(parsed.Decisions)),
		ActionItems:         make([]entities.ActionItem, 0, len(parsed.ActionItems)),
		ParticipantAnalysis: make([]entities.ParticipantAnalysis, 0, len(parsed.ParticipantAnalysis)),
	}
	result.ProductivityScore, result.ScoreClamped = clampScore(score.Value)

	for _, d := range parsed.Decisions {
		if d.Decision.String() == "" {
			continue
		}
		result.Decisions = append(result.Decisions, entities.Decision{
			Decision:    d.Decision.String(),
			Responsible: d.Responsible.String(),
		})
	}
	for _, item := range parsed.ActionItems {
		if item.Task.String() == "" {
			continue
		}
		result.ActionItems = append(result.ActionItems, entities.ActionItem{
			Task:        item.Task.String(),
			Responsible: item.Responsible.String(),
			Priority:    entities.NormalizeLevel(item.Priority.String()),
		})
	}
	for _, p := range parsed.ParticipantAnalysis {
		if p.Name.String() == "" {
			continue
		}
		result.ParticipantAnalysis = append(result.ParticipantAnalysis, entities.ParticipantAnalysis{
			Name:               p.Name.String(),
			ParticipationLevel: entities.NormalizeLevel(p.ParticipationLevel.String()),
			KeyContributions:   p.KeyContributions.String(),
		})
	}

	return result, nil
}

func clampScore(v float64) (float64, bool) {
	clamped := false
	switch {
	case v < entities.MinProductivityScore:
		v, clamped = entities.MinProductivityScore, true
	case v > entities.MaxProductivityScore:
		v, clamped = entities.MaxProductivityScore, true
	}
	return math.Round(v*10) / 10, clamped
}

// extractJSON strips markdown code fences and any prose around the object
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// drop the language tag of the opening fence
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	if !strings.HasPrefix(s, "{") {
		start := strings.IndexByte(s, '{')
		end := strings.LastIndexByte(s, '}')
		if start >= 0 && end > start {
			s = s[start : end+1]
		}
	}
	return s
}

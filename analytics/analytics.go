// Package analytics computes per-survey response statistics with a short
// in-process cache, the only cross-call cache in the system.
package analytics

import (
	"context"
	"math"
	"time"

	"github.com/Taycode/survey-app-api/store"
)

const cacheTTL = 60 * time.Second

type Stats struct {
	SurveyID             string     `json:"survey_id"`
	SurveyTitle          string     `json:"survey_title"`
	TotalResponses       int        `json:"total_responses"`
	CompletedResponses   int        `json:"completed_responses"`
	InProgressResponses  int        `json:"in_progress_responses"`
	CompletionRate       float64    `json:"completion_rate"`
	AvgCompletionSeconds *int       `json:"average_completion_time_seconds"`
	LastResponseAt       *time.Time `json:"last_response_at"`
}

type cacheEntry struct {
	stats   Stats
	expires time.Time
}

type cacheOp struct {
	invalidate bool
	key        string
	entry      cacheEntry
	result     chan<- *cacheEntry
}

type Service struct {
	store *store.Store
	ops   chan cacheOp
}

// New starts the cache owner goroutine; it lives for the process lifetime.
func New(st *store.Store) *Service {
	s := &Service{store: st, ops: make(chan cacheOp)}
	go func() {
		entries := make(map[string]cacheEntry)

		for op := range s.ops {
			switch {
			case op.invalidate:
				delete(entries, op.key)
			case op.result != nil:
				if entry, ok := entries[op.key]; ok && time.Now().Before(entry.expires) {
					e := entry
					op.result <- &e
				} else {
					op.result <- nil
				}
			default:
				entries[op.key] = op.entry
			}
		}
	}()
	return s
}

// SurveyStats returns aggregate response metrics for a survey, served from
// cache when fresh.
func (s *Service) SurveyStats(ctx context.Context, surveyID string) (Stats, error) {
	result := make(chan *cacheEntry)
	s.ops <- cacheOp{key: surveyID, result: result}
	if cached := <-result; cached != nil {
		return cached.stats, nil
	}

	survey, err := s.store.SurveyByID(ctx, surveyID)
	if err != nil {
		return Stats{}, err
	}
	raw, err := s.store.ResponseStatsBySurvey(ctx, surveyID)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		SurveyID:            survey.ID,
		SurveyTitle:         survey.Title,
		TotalResponses:      raw.Total,
		CompletedResponses:  raw.Completed,
		InProgressResponses: raw.InProgress,
	}
	if raw.Total > 0 {
		rate := float64(raw.Completed) / float64(raw.Total) * 100
		stats.CompletionRate = math.Round(rate*100) / 100
	}
	if raw.AvgCompletion.Valid {
		seconds := int(raw.AvgCompletion.Float64)
		stats.AvgCompletionSeconds = &seconds
	}
	if raw.LastResponseAt.Valid {
		t := raw.LastResponseAt.Time
		stats.LastResponseAt = &t
	}

	s.ops <- cacheOp{key: surveyID, entry: cacheEntry{stats: stats, expires: time.Now().Add(cacheTTL)}}
	return stats, nil
}

// Invalidate drops the cached stats for a survey. Called when a response
// completes so owners see fresh numbers promptly.
func (s *Service) Invalidate(surveyID string) {
	s.ops <- cacheOp{invalidate: true, key: surveyID}
}

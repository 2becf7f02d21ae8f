package domain

import "time"

// State enumerates harvest session milestones.
type State string

const (
	StateIdle        State = "idle"
	StateDiscovering State = "discovering"
	StateProcessing  State = "processing"
	StateCompleted   State = "completed"
	StateCancelled   State = "cancelled"
	StateFailed      State = "failed"
)

// Terminal reports whether no further transitions can happen from s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// SkipReason names why a candidate URL was processed but not accepted.
type SkipReason string

const (
	SkipFetchFailed    SkipReason = "fetch_failed"
	SkipNotExtractable SkipReason = "not_extractable"
	SkipInvalidTitle   SkipReason = "invalid_title"
	SkipTooShort       SkipReason = "too_short"
	SkipLowQuality     SkipReason = "low_quality"
	SkipDuplicate      SkipReason = "duplicate"
)

// HarvestStatus is a point-in-time snapshot of a harvest session.
type HarvestStatus struct {
	SessionID        string             `json:"session_id,omitempty"`
	State            State              `json:"state"`
	Active           bool               `json:"active"`
	Progress         float64            `json:"progress"`
	URLsFound        int                `json:"articles_found"`
	URLsProcessed    int                `json:"articles_processed"`
	Accepted         int                `json:"articles_accepted"`
	Status           string             `json:"current_status"`
	Articles         []AcceptedArticle  `json:"collected_data,omitempty"`
	Metrics          *Metrics           `json:"quality_metrics,omitempty"`
	Skipped          map[SkipReason]int `json:"skipped,omitempty"`
	HomepageURL      string             `json:"homepage_url,omitempty"`
	MaxArticles      int                `json:"max_articles,omitempty"`
	QualityThreshold float64            `json:"quality_threshold,omitempty"`
	StartedAt        time.Time          `json:"started_at,omitempty"`
	FinishedAt       time.Time          `json:"finished_at,omitempty"`
}

// Clone returns a deep copy that shares no mutable state with s.
func (s HarvestStatus) Clone() HarvestStatus {
	out := s
	if s.Articles != nil {
		out.Articles = make([]AcceptedArticle, len(s.Articles))
		for i, a := range s.Articles {
			a.Bias = a.Bias.Clone()
			out.Articles[i] = a
		}
	}
	if s.Metrics != nil {
		m := *s.Metrics
		out.Metrics = &m
	}
	if s.Skipped != nil {
		out.Skipped = make(map[SkipReason]int, len(s.Skipped))
		for k, v := range s.Skipped {
			out.Skipped[k] = v
		}
	}
	return out
}

// Package insights derives advisory dashboard insights from aggregated
// window statistics. Every rule is deterministic: the same stats always
// produce the same insights, so results are reproducible and testable.
package insights

import (
	"math"

	"github.com/upliftapps/pulse/internal/schema"
)

// TopicStat aggregates one content topic inside the query window.
type TopicStat struct {
	Topic      string
	Posts      int
	Engagement float64
}

// PlatformStat aggregates revenue for one platform inside the query window.
type PlatformStat struct {
	Platform string
	Revenue  float64
}

// Stats is the aggregated input every rule evaluates. "Prev" fields cover
// the trailing window of equal length immediately before the query window.
type Stats struct {
	TotalEvents    int
	Revenue        float64
	PrevRevenue    float64
	Engagement     float64
	PrevEngagement float64
	ContentPosts   int
	// Topics and Platforms keep first-seen order so rule output order is
	// stable for a given event log.
	Topics    []TopicStat
	Platforms []PlatformStat
}

// Mood colors an insight for the dashboard.
type Mood string

const (
	MoodPositive Mood = "positive"
	MoodConcern  Mood = "concern"
	MoodNeutral  Mood = "neutral"
)

// Insight is one advisory finding. IDs are deterministic (rule plus
// subject), so the implemented flag can be persisted across queries.
// Implemented is the only mutable field and is toggled outside the
// query path.
type Insight struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Reasoning   string          `json:"reasoning"`
	Confidence  float64         `json:"confidence"`
	Category    schema.Category `json:"category"`
	Mood        Mood            `json:"mood"`
	Implemented bool            `json:"implemented"`
}

// Rule evaluates window statistics and returns zero or more insights.
type Rule interface {
	Evaluate(s Stats) []Insight
}

// confidence scores an insight in [0,1], increasing in both sample size and
// deviation magnitude. deviation is measured against devScale: at
// deviation == devScale the deviation factor saturates.
func confidence(sampleSize int, deviation, devScale float64) float64 {
	if sampleSize <= 0 || deviation <= 0 || devScale <= 0 {
		return 0
	}
	sampleFactor := float64(sampleSize) / (float64(sampleSize) + 5)
	devFactor := deviation / devScale
	if devFactor > 1 {
		devFactor = 1
	}
	c := sampleFactor * devFactor
	// Rounded so stored and recomputed results compare equal.
	return math.Round(c*100) / 100
}

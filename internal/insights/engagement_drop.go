package insights

import (
	"fmt"

	"github.com/upliftapps/pulse/internal/config"
	"github.com/upliftapps/pulse/internal/schema"
)

// EngagementDropRule reports engagement falling sharply against the trailing
// window.
type EngagementDropRule struct {
	minDropPct float64
}

// NewEngagementDropRule creates the rule from config thresholds.
func NewEngagementDropRule(cfg config.EngagementDropConfig) *EngagementDropRule {
	return &EngagementDropRule{minDropPct: cfg.MinDropPct}
}

func (r *EngagementDropRule) Evaluate(s Stats) []Insight {
	if s.PrevEngagement == 0 {
		return nil
	}
	dropPct := (s.PrevEngagement - s.Engagement) / s.PrevEngagement * 100
	if dropPct < r.minDropPct {
		return nil
	}

	return []Insight{{
		ID:    "engagement_drop",
		Type:  "engagement_drop",
		Title: "Engagement is slowing down",
		Description: fmt.Sprintf(
			"Engagement dropped %.0f%% from the previous period. A consistent posting rhythm usually brings it back.",
			dropPct),
		Reasoning: fmt.Sprintf(
			"Engagement fell from %.0f to %.0f against the immediately preceding period of equal length.",
			s.PrevEngagement, s.Engagement),
		Confidence: confidence(s.TotalEvents, dropPct, 2*r.minDropPct),
		Category:   schema.CategoryEngagement,
		Mood:       MoodConcern,
	}}
}

package insights

import (
	"fmt"
	"math"

	"github.com/upliftapps/pulse/internal/config"
	"github.com/upliftapps/pulse/internal/schema"
)

// RevenueTrendRule reports sustained revenue growth or decline against the
// trailing window.
type RevenueTrendRule struct {
	minChangePct float64
}

// NewRevenueTrendRule creates the rule from config thresholds.
func NewRevenueTrendRule(cfg config.RevenueTrendConfig) *RevenueTrendRule {
	return &RevenueTrendRule{minChangePct: cfg.MinChangePct}
}

func (r *RevenueTrendRule) Evaluate(s Stats) []Insight {
	if s.PrevRevenue == 0 {
		// No baseline, no trend claim.
		return nil
	}
	changePct := (s.Revenue - s.PrevRevenue) / s.PrevRevenue * 100
	if math.Abs(changePct) < r.minChangePct {
		return nil
	}

	ins := Insight{
		ID:       "revenue_trend",
		Type:     "revenue_trend",
		Category: schema.CategoryBusiness,
		Confidence: confidence(s.TotalEvents, math.Abs(changePct),
			2*r.minChangePct),
		Reasoning: fmt.Sprintf(
			"Revenue moved from %.2f to %.2f against the immediately preceding period of equal length.",
			s.PrevRevenue, s.Revenue),
	}
	if changePct > 0 {
		ins.Title = "Revenue is trending up"
		ins.Description = fmt.Sprintf("Revenue grew %.0f%% over the previous period. Whatever you changed, keep doing it.", changePct)
		ins.Mood = MoodPositive
	} else {
		ins.Title = "Revenue is trending down"
		ins.Description = fmt.Sprintf("Revenue fell %.0f%% compared to the previous period. Review your top-selling products and recent posting cadence.", -changePct)
		ins.Mood = MoodConcern
	}
	return []Insight{ins}
}

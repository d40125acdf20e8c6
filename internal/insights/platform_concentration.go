package insights

import (
	"fmt"

	"github.com/upliftapps/pulse/internal/config"
	"github.com/upliftapps/pulse/internal/schema"
)

// PlatformConcentrationRule warns when a single platform carries most of the
// window's revenue.
type PlatformConcentrationRule struct {
	minShare   float64
	minRevenue float64
}

// NewPlatformConcentrationRule creates the rule from config thresholds.
func NewPlatformConcentrationRule(cfg config.PlatformConcentrationConfig) *PlatformConcentrationRule {
	return &PlatformConcentrationRule{
		minShare:   cfg.MinShare,
		minRevenue: cfg.MinRevenue,
	}
}

func (r *PlatformConcentrationRule) Evaluate(s Stats) []Insight {
	if len(s.Platforms) < 2 {
		// Concentration is only meaningful with alternatives.
		return nil
	}
	total := 0.0
	top := s.Platforms[0]
	for _, p := range s.Platforms {
		total += p.Revenue
		if p.Revenue > top.Revenue {
			top = p
		}
	}
	if total < r.minRevenue {
		return nil
	}
	share := top.Revenue / total
	if share < r.minShare {
		return nil
	}

	return []Insight{{
		ID:    "platform_concentration:" + top.Platform,
		Type:  "platform_concentration",
		Title: fmt.Sprintf("Most revenue depends on %s", top.Platform),
		Description: fmt.Sprintf(
			"%.0f%% of revenue this period came through %s. Diversifying reduces the risk of a single platform change hurting income.",
			share*100, top.Platform),
		Reasoning: fmt.Sprintf(
			"%s contributed %.2f of %.2f total revenue across %d platforms.",
			top.Platform, top.Revenue, total, len(s.Platforms)),
		Confidence: confidence(s.TotalEvents, share-r.minShare+0.1, 0.4),
		Category:   schema.CategoryBusiness,
		Mood:       MoodConcern,
	}}
}

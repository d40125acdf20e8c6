package insights

import (
	"github.com/upliftapps/pulse/internal/config"
)

// Engine runs the configured insight rules in a fixed order so a given event
// log always yields the same insight sequence.
type Engine struct {
	rules []Rule
}

// NewEngine builds the engine from config. Disabled rules are skipped.
func NewEngine(cfg config.InsightsConfig) *Engine {
	e := &Engine{}
	if !cfg.CategoryOutlier.Disabled {
		e.rules = append(e.rules, NewCategoryOutlierRule(cfg.CategoryOutlier))
	}
	if !cfg.RevenueTrend.Disabled {
		e.rules = append(e.rules, NewRevenueTrendRule(cfg.RevenueTrend))
	}
	if !cfg.PlatformConcentration.Disabled {
		e.rules = append(e.rules, NewPlatformConcentrationRule(cfg.PlatformConcentration))
	}
	if !cfg.EngagementDrop.Disabled {
		e.rules = append(e.rules, NewEngagementDropRule(cfg.EngagementDrop))
	}
	return e
}

// Evaluate runs every rule over s and concatenates their findings in rule
// registration order.
func (e *Engine) Evaluate(s Stats) []Insight {
	var out []Insight
	for _, r := range e.rules {
		out = append(out, r.Evaluate(s)...)
	}
	return out
}

package insights

import (
	"fmt"

	"github.com/upliftapps/pulse/internal/config"
	"github.com/upliftapps/pulse/internal/schema"
)

// CategoryOutlierRule flags content topics whose engagement-per-post beats
// the overall average by a configured margin.
type CategoryOutlierRule struct {
	minPosts   int
	minLiftPct float64
}

// NewCategoryOutlierRule creates the rule from config thresholds.
func NewCategoryOutlierRule(cfg config.CategoryOutlierConfig) *CategoryOutlierRule {
	return &CategoryOutlierRule{
		minPosts:   cfg.MinPosts,
		minLiftPct: cfg.MinLiftPct,
	}
}

func (r *CategoryOutlierRule) Evaluate(s Stats) []Insight {
	totalPosts := 0
	totalEngagement := 0.0
	for _, t := range s.Topics {
		totalPosts += t.Posts
		totalEngagement += t.Engagement
	}
	if totalPosts == 0 {
		return nil
	}
	overallPerPost := totalEngagement / float64(totalPosts)
	if overallPerPost == 0 {
		return nil
	}

	var out []Insight
	for _, t := range s.Topics {
		if t.Posts < r.minPosts {
			continue
		}
		perPost := t.Engagement / float64(t.Posts)
		liftPct := (perPost - overallPerPost) / overallPerPost * 100
		if liftPct < r.minLiftPct {
			continue
		}
		out = append(out, Insight{
			ID:    "category_outlier:" + t.Topic,
			Type:  "category_outlier",
			Title: fmt.Sprintf("%s content is resonating", t.Topic),
			Description: fmt.Sprintf(
				"Posts about %s average %.1f engagements, %.0f%% above your overall average. Consider posting more of it.",
				t.Topic, perPost, liftPct),
			Reasoning: fmt.Sprintf(
				"%d posts in this topic averaged %.1f engagements per post against an overall average of %.1f.",
				t.Posts, perPost, overallPerPost),
			Confidence: confidence(t.Posts, liftPct, 2*r.minLiftPct),
			Category:   schema.CategoryContent,
			Mood:       MoodPositive,
		})
	}
	return out
}

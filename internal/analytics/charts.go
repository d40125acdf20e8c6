package analytics

import (
	"context"
	"time"

	"github.com/upliftapps/pulse/internal/schema"
)

// ComputeChartData derives the dashboard chart series for f, in fixed order.
// Time-series charts cover the full window with zero-filled buckets; an
// empty window never shrinks the bucket count.
func (s *Service) ComputeChartData(ctx context.Context, f Filter) ([]ChartData, error) {
	events, err := s.snapshot(ctx, f)
	if err != nil {
		return nil, err
	}

	n := f.BucketCount()
	span := f.Range.Span()
	bucketDur := span / time.Duration(n)

	revenue := make([]float64, n)
	engagement := make([]float64, n)
	for _, e := range events {
		if !f.Range.Contains(e.Timestamp) || !e.InMode(f.Mode) {
			continue
		}
		idx := 0
		if bucketDur > 0 {
			idx = int(e.Timestamp.Sub(f.Range.Start) / bucketDur)
		}
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			// End of the window is inclusive; it lands in the last bucket.
			idx = n - 1
		}
		if revenueKind(e.Kind) {
			revenue[idx] += e.Value
		}
		if e.Category == schema.CategoryEngagement {
			engagement[idx] += e.Value
		}
	}

	points := func(values []float64) []ChartPoint {
		out := make([]ChartPoint, n)
		for i := range values {
			start := f.Range.Start.Add(time.Duration(i) * bucketDur)
			out[i] = ChartPoint{Label: bucketLabel(start, bucketDur), Value: values[i]}
		}
		return out
	}

	cur := collect(events, f.Range, f.Mode)

	charts := []ChartData{
		{
			ID:    "revenue_over_time",
			Title: "Revenue Over Time",
			Type:  ChartLine,
			Unit:  "USD",
			Data:  points(revenue),
		},
		{
			ID:    "engagement_over_time",
			Title: "Engagement Over Time",
			Type:  ChartBar,
			Unit:  "interactions",
			Data:  points(engagement),
		},
		{
			ID:    "events_by_category",
			Title: "Activity by Category",
			Type:  ChartBar,
			Unit:  "events",
			Data:  categoryPoints(cur),
		},
	}

	if len(cur.platformOrder) > 0 {
		platform := ChartData{
			ID:    "top_platforms",
			Title: "Revenue by Platform",
			Type:  ChartBar,
			Unit:  "USD",
		}
		for _, name := range cur.platformOrder {
			platform.Data = append(platform.Data, ChartPoint{
				Label: name,
				Value: cur.platforms[name],
			})
		}
		charts = append(charts, platform)
	}

	return charts, nil
}

// categoryPoints reports every taxonomy category in rollup order so the
// chart shape is stable across queries.
func categoryPoints(w windowStats) []ChartPoint {
	cats := schema.Categories()
	out := make([]ChartPoint, 0, len(cats))
	for _, c := range cats {
		out = append(out, ChartPoint{Label: string(c), Value: w.categoryTotals[c]})
	}
	return out
}

func bucketLabel(start time.Time, bucketDur time.Duration) string {
	if bucketDur >= 28*24*time.Hour {
		return start.Format("Jan")
	}
	return start.Format("Jan 2")
}

// Package analytics owns the event store and computes every derived
// dashboard view: metric cards, chart series, heuristic insights, and
// rule-triggered alerts. All queries are scoped by a Filter and return
// value copies; nothing handed to a caller aliases the store.
package analytics

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/upliftapps/pulse/internal/config"
	"github.com/upliftapps/pulse/internal/insights"
	"github.com/upliftapps/pulse/internal/mode"
	"github.com/upliftapps/pulse/internal/schema"
	"github.com/upliftapps/pulse/internal/store"
)

// Flags persists the two externally mutable bits of derived views: alert
// dismissal and insight implementation.
type Flags interface {
	AlertDismissed(id string) bool
	DismissAlert(id string) error
	InsightImplemented(id string) bool
	MarkInsightImplemented(id string) error
}

// Forwarder receives a copy of every ingested event (Kafka forwarding,
// ClickHouse archival). Forward failures never fail ingestion.
type Forwarder interface {
	Forward(ctx context.Context, e schema.Event) error
}

// AlertPublisher pushes triggered alerts to an external channel.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, a Alert) error
}

// Service is the aggregation service. It is the only writer of the event
// store; everything else reads derived views through the Compute methods.
type Service struct {
	store    store.Store
	engine   *insights.Engine
	alertCfg config.AlertsConfig

	flags      Flags
	forwarders []Forwarder
	alertPub   AlertPublisher
}

// NewService creates the service around an event store.
func NewService(st store.Store, engine *insights.Engine, alertCfg config.AlertsConfig) *Service {
	return &Service{store: st, engine: engine, alertCfg: alertCfg}
}

// UseFlags attaches the persisted dismissal/implementation flags.
func (s *Service) UseFlags(f Flags) { s.flags = f }

// AddForwarder registers an ingest-side sink.
func (s *Service) AddForwarder(f Forwarder) { s.forwarders = append(s.forwarders, f) }

// UseAlertPublisher attaches the external alert channel.
func (s *Service) UseAlertPublisher(p AlertPublisher) { s.alertPub = p }

// Record appends one validated event to the store and hands copies to the
// registered forwarders. Forwarder failures are logged, never surfaced.
func (s *Service) Record(ctx context.Context, e schema.Event) error {
	if err := s.store.Append(ctx, e); err != nil {
		return fmt.Errorf("recording %s: %w", e.Kind, err)
	}
	for _, fwd := range s.forwarders {
		go func(f Forwarder) {
			if err := f.Forward(context.Background(), e); err != nil {
				log.Error().Err(err).Str("kind", string(e.Kind)).Msg("Event forward failed")
			}
		}(fwd)
	}
	return nil
}

// DismissAlert marks an alert dismissed for all future queries.
func (s *Service) DismissAlert(id string) error {
	if s.flags == nil {
		return nil
	}
	return s.flags.DismissAlert(id)
}

// MarkInsightImplemented marks an insight implemented for all future queries.
func (s *Service) MarkInsightImplemented(id string) error {
	if s.flags == nil {
		return nil
	}
	return s.flags.MarkInsightImplemented(id)
}

// windowStats is one pass of aggregation over the events inside a single
// (range, mode) slice.
type windowStats struct {
	events          int
	revenue         float64
	reach           int
	engagement      float64
	linkClicks      float64
	linkConversions float64
	creations       int
	screenViews     int
	screenSeconds   float64
	errors          int

	categoryTotals map[schema.Category]float64

	topicOrder    []string
	topics        map[string]*insights.TopicStat
	platformOrder []string
	platforms     map[string]float64
}

func revenueKind(k schema.Kind) bool {
	switch k {
	case schema.KindProductSale, schema.KindDonationReceived,
		schema.KindSubscriptionStarted, schema.KindSubscriptionRenewed,
		schema.KindTipReceived:
		return true
	}
	return false
}

func collect(events []schema.Event, r DateRange, m mode.Mode) windowStats {
	w := windowStats{
		categoryTotals: make(map[schema.Category]float64),
		topics:         make(map[string]*insights.TopicStat),
		platforms:      make(map[string]float64),
	}
	for _, e := range events {
		if !r.Contains(e.Timestamp) || !e.InMode(m) {
			continue
		}
		w.events++
		w.categoryTotals[e.Category] += e.Value

		if revenueKind(e.Kind) {
			w.revenue += e.Value
			if e.Props.Platform != "" {
				if _, seen := w.platforms[e.Props.Platform]; !seen {
					w.platformOrder = append(w.platformOrder, e.Props.Platform)
				}
				w.platforms[e.Props.Platform] += e.Value
			}
		}

		switch e.Category {
		case schema.CategoryContent:
			w.reach++
			if e.Props.Topic != "" {
				w.topicStat(e.Props.Topic).Posts++
			}
		case schema.CategoryEngagement:
			w.engagement += e.Value
			if e.Props.Topic != "" {
				w.topicStat(e.Props.Topic).Engagement += e.Value
			}
		case schema.CategoryCreation:
			w.creations++
		case schema.CategoryError:
			w.errors++
		}

		switch e.Kind {
		case schema.KindLinkClick, schema.KindAffiliateClick:
			w.linkClicks += e.Value
		case schema.KindLinkConversion, schema.KindAffiliateConversion:
			w.linkConversions += e.Value
		case schema.KindScreenView:
			w.screenViews++
			w.screenSeconds += e.Value
		}
	}
	return w
}

func (w *windowStats) topicStat(topic string) *insights.TopicStat {
	st, ok := w.topics[topic]
	if !ok {
		st = &insights.TopicStat{Topic: topic}
		w.topics[topic] = st
		w.topicOrder = append(w.topicOrder, topic)
	}
	return st
}

func (w *windowStats) conversionRate() float64 {
	if w.linkClicks == 0 {
		return 0
	}
	return w.linkConversions / w.linkClicks * 100
}

func (w *windowStats) avgSessionSeconds() float64 {
	if w.screenViews == 0 {
		return 0
	}
	return w.screenSeconds / float64(w.screenViews)
}

// pctChange is the trailing-window percent delta. A zero baseline reports
// 0 for no activity and 100 for activity appearing from nothing.
func pctChange(cur, prev float64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	return (cur - prev) / prev * 100
}

func trendOf(change float64) Trend {
	switch {
	case change > 0:
		return TrendUp
	case change < 0:
		return TrendDown
	}
	return TrendFlat
}

func (f Filter) periodLabel() string {
	switch f.Range.Preset {
	case Preset7d:
		return "Last 7 days"
	case Preset30d:
		return "Last 30 days"
	case Preset90d:
		return "Last 90 days"
	case Preset1y:
		return "Last year"
	}
	return f.Range.Start.Format("Jan 2, 2006") + " – " + f.Range.End.Format("Jan 2, 2006")
}

// snapshot validates f and reads a consistent copy of the event log.
func (s *Service) snapshot(ctx context.Context, f Filter) ([]schema.Event, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	events, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ComputeMetricCards derives the dashboard KPI cards for f, in fixed order.
// An empty window yields zero-valued cards, never an error.
func (s *Service) ComputeMetricCards(ctx context.Context, f Filter) ([]MetricCard, error) {
	events, err := s.snapshot(ctx, f)
	if err != nil {
		return nil, err
	}
	cur := collect(events, f.Range, f.Mode)
	prev := collect(events, f.Range.Trailing(), f.Mode)
	period := f.periodLabel()

	card := func(id string, title mode.Copy, value float64, prevValue float64, format Format, icon, color string) MetricCard {
		change := pctChange(value, prevValue)
		return MetricCard{
			ID:                     id,
			Title:                  title.Default,
			FaithModeTitle:         title.Faith,
			EncouragementModeTitle: title.Encouragement,
			Value:                  value,
			Format:                 format,
			Trend:                  trendOf(change),
			Change:                 change,
			Period:                 period,
			Icon:                   icon,
			Color:                  color,
		}
	}

	return []MetricCard{
		card("total_revenue",
			mode.Copy{Default: "Total Revenue", Faith: "Kingdom Revenue", Encouragement: "Impact Revenue"},
			cur.revenue, prev.revenue, FormatCurrency, "dollar-sign", "#10B981"),
		card("audience_reach",
			mode.Copy{Default: "Audience Reach", Faith: "Souls Reached", Encouragement: "People Reached"},
			float64(cur.reach), float64(prev.reach), FormatNumber, "users", "#3B82F6"),
		card("engagement",
			mode.Copy{Default: "Engagement", Faith: "Hearts Touched", Encouragement: "Encouragement Given"},
			cur.engagement, prev.engagement, FormatNumber, "heart", "#EF4444"),
		card("conversion_rate",
			mode.Copy{Default: "Conversion Rate"},
			cur.conversionRate(), prev.conversionRate(), FormatPercentage, "trending-up", "#8B5CF6"),
		card("content_created",
			mode.Copy{Default: "Content Created", Faith: "Messages Shared", Encouragement: "Stories Shared"},
			float64(cur.creations), float64(prev.creations), FormatNumber, "file-text", "#F59E0B"),
		card("avg_session_time",
			mode.Copy{Default: "Avg Session Time"},
			cur.avgSessionSeconds(), prev.avgSessionSeconds(), FormatNumber, "clock", "#06B6D4"),
	}, nil
}

// ComputeInsights runs the heuristic rules over f's window. Deterministic:
// the same event log and filter always produce the same sequence.
func (s *Service) ComputeInsights(ctx context.Context, f Filter) ([]insights.Insight, error) {
	events, err := s.snapshot(ctx, f)
	if err != nil {
		return nil, err
	}
	cur := collect(events, f.Range, f.Mode)
	prev := collect(events, f.Range.Trailing(), f.Mode)

	stats := insights.Stats{
		TotalEvents:    cur.events,
		Revenue:        cur.revenue,
		PrevRevenue:    prev.revenue,
		Engagement:     cur.engagement,
		PrevEngagement: prev.engagement,
		ContentPosts:   cur.creations,
	}
	for _, topic := range cur.topicOrder {
		stats.Topics = append(stats.Topics, *cur.topics[topic])
	}
	for _, platform := range cur.platformOrder {
		stats.Platforms = append(stats.Platforms, insights.PlatformStat{
			Platform: platform,
			Revenue:  cur.platforms[platform],
		})
	}

	out := s.engine.Evaluate(stats)
	if s.flags != nil {
		for i := range out {
			out[i].Implemented = s.flags.InsightImplemented(out[i].ID)
		}
	}
	return out, nil
}

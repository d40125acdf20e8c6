package analytics_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/upliftapps/pulse/internal/analytics"
	"github.com/upliftapps/pulse/internal/config"
	"github.com/upliftapps/pulse/internal/insights"
	"github.com/upliftapps/pulse/internal/mode"
	"github.com/upliftapps/pulse/internal/schema"
	"github.com/upliftapps/pulse/internal/store"
)

// ─── Helpers ────────────────────────────────────────────────────────────────

func newService() (*analytics.Service, *store.Memory) {
	cfg := config.Default()
	st := store.NewMemory()
	svc := analytics.NewService(st, insights.NewEngine(cfg.Insights), cfg.Alerts)
	return svc, st
}

func mustRecord(t *testing.T, svc *analytics.Service, k schema.Kind, value float64, props schema.Props, at time.Time) {
	t.Helper()
	e, err := schema.ValidateAt(k, value, props, at)
	if err != nil {
		t.Fatalf("ValidateAt(%s): %v", k, err)
	}
	if err := svc.Record(context.Background(), e); err != nil {
		t.Fatalf("Record(%s): %v", k, err)
	}
}

func last30d(m mode.Mode) analytics.Filter {
	f, _ := analytics.FromPresetAt(analytics.Preset30d, m, now)
	return f
}

func cardByID(t *testing.T, cards []analytics.MetricCard, id string) analytics.MetricCard {
	t.Helper()
	for _, c := range cards {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("no card %q in %d cards", id, len(cards))
	return analytics.MetricCard{}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// memFlags is an in-memory stand-in for the settings store.
type memFlags struct {
	dismissed   map[string]bool
	implemented map[string]bool
}

func newMemFlags() *memFlags {
	return &memFlags{dismissed: map[string]bool{}, implemented: map[string]bool{}}
}

func (f *memFlags) AlertDismissed(id string) bool     { return f.dismissed[id] }
func (f *memFlags) DismissAlert(id string) error      { f.dismissed[id] = true; return nil }
func (f *memFlags) InsightImplemented(id string) bool { return f.implemented[id] }
func (f *memFlags) MarkInsightImplemented(id string) error {
	f.implemented[id] = true
	return nil
}

// ─── Metric cards ───────────────────────────────────────────────────────────

func TestRevenueCardSumsSales(t *testing.T) {
	svc, _ := newService()
	in := now.Add(-time.Hour)

	mustRecord(t, svc, schema.KindProductSale, 24.99,
		schema.Props{ProductID: "p1", Platform: "Printify"}, in)
	mustRecord(t, svc, schema.KindProductSale, 16.99,
		schema.Props{ProductID: "p2", Platform: "Printify"}, in)

	cards, err := svc.ComputeMetricCards(context.Background(), last30d(mode.Both))
	if err != nil {
		t.Fatalf("ComputeMetricCards: %v", err)
	}
	revenue := cardByID(t, cards, "total_revenue")
	if !approx(revenue.Value, 41.98) {
		t.Errorf("revenue = %v, want 41.98", revenue.Value)
	}
	if revenue.Format != analytics.FormatCurrency {
		t.Errorf("format = %q, want currency", revenue.Format)
	}
}

func TestEmptyWindowYieldsZeroCards(t *testing.T) {
	svc, _ := newService()

	cards, err := svc.ComputeMetricCards(context.Background(), last30d(mode.Both))
	if err != nil {
		t.Fatalf("ComputeMetricCards over empty store: %v", err)
	}
	if len(cards) == 0 {
		t.Fatal("expected well-formed zero cards, got none")
	}
	for _, c := range cards {
		if c.Value != 0 {
			t.Errorf("card %s value = %v, want 0", c.ID, c.Value)
		}
		if c.Trend != analytics.TrendFlat {
			t.Errorf("card %s trend = %q, want flat", c.ID, c.Trend)
		}
	}
}

func TestQueryIdempotence(t *testing.T) {
	svc, _ := newService()
	mustRecord(t, svc, schema.KindLikeReceived, 1, schema.Props{Mode: mode.Faith}, now.Add(-2*time.Hour))
	mustRecord(t, svc, schema.KindProductSale, 9.99, schema.Props{ProductID: "p1"}, now.Add(-time.Hour))

	f := last30d(mode.Both)
	first, err := svc.ComputeMetricCards(context.Background(), f)
	if err != nil {
		t.Fatalf("first query: %v", err)
	}
	second, err := svc.ComputeMetricCards(context.Background(), f)
	if err != nil {
		t.Fatalf("second query: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated query with no ingestion changed results")
	}
}

func TestMonotonicity(t *testing.T) {
	svc, _ := newService()
	f := last30d(mode.Both)

	mustRecord(t, svc, schema.KindCommentReceived, 1, schema.Props{}, now.Add(-time.Hour))
	before, _ := svc.ComputeMetricCards(context.Background(), f)

	mustRecord(t, svc, schema.KindCommentReceived, 1, schema.Props{}, now.Add(-time.Hour))
	after, _ := svc.ComputeMetricCards(context.Background(), f)

	b := cardByID(t, before, "engagement").Value
	a := cardByID(t, after, "engagement").Value
	if a < b {
		t.Errorf("engagement decreased after positive ingestion: %v -> %v", b, a)
	}
}

func TestModeIsolation(t *testing.T) {
	svc, _ := newService()
	at := now.Add(-time.Hour)

	mustRecord(t, svc, schema.KindLikeReceived, 1, schema.Props{Mode: mode.Faith}, at)
	mustRecord(t, svc, schema.KindLikeReceived, 1, schema.Props{Mode: mode.Encouragement}, at)
	mustRecord(t, svc, schema.KindLikeReceived, 1, schema.Props{}, at) // mode-agnostic

	faith, _ := svc.ComputeMetricCards(context.Background(), last30d(mode.Faith))
	if got := cardByID(t, faith, "engagement").Value; got != 2 {
		t.Errorf("faith engagement = %v, want 2 (faith + agnostic)", got)
	}

	enc, _ := svc.ComputeMetricCards(context.Background(), last30d(mode.Encouragement))
	if got := cardByID(t, enc, "engagement").Value; got != 2 {
		t.Errorf("encouragement engagement = %v, want 2", got)
	}

	both, _ := svc.ComputeMetricCards(context.Background(), last30d(mode.Both))
	if got := cardByID(t, both, "engagement").Value; got != 3 {
		t.Errorf("dual-mode engagement = %v, want 3", got)
	}
}

func TestTrailingWindowChange(t *testing.T) {
	svc, _ := newService()
	f := last30d(mode.Both)

	// 100 in the trailing window, 150 in the current one.
	prevAt := f.Range.Start.Add(-24 * time.Hour)
	mustRecord(t, svc, schema.KindDonationReceived, 100, schema.Props{}, prevAt)
	mustRecord(t, svc, schema.KindDonationReceived, 150, schema.Props{}, now.Add(-time.Hour))

	cards, err := svc.ComputeMetricCards(context.Background(), f)
	if err != nil {
		t.Fatalf("ComputeMetricCards: %v", err)
	}
	revenue := cardByID(t, cards, "total_revenue")
	if !approx(revenue.Change, 50) {
		t.Errorf("change = %v, want 50", revenue.Change)
	}
	if revenue.Trend != analytics.TrendUp {
		t.Errorf("trend = %q, want up", revenue.Trend)
	}
}

func TestChangeFromZeroBaseline(t *testing.T) {
	svc, _ := newService()
	mustRecord(t, svc, schema.KindTipReceived, 5, schema.Props{}, now.Add(-time.Hour))

	cards, _ := svc.ComputeMetricCards(context.Background(), last30d(mode.Both))
	revenue := cardByID(t, cards, "total_revenue")
	if !approx(revenue.Change, 100) {
		t.Errorf("change from zero baseline = %v, want 100", revenue.Change)
	}
	if revenue.Trend != analytics.TrendUp {
		t.Errorf("trend = %q, want up", revenue.Trend)
	}
}

func TestConversionRateCard(t *testing.T) {
	svc, _ := newService()
	at := now.Add(-time.Hour)

	for i := 0; i < 4; i++ {
		mustRecord(t, svc, schema.KindLinkClick, 1, schema.Props{LinkID: "bio"}, at)
	}
	mustRecord(t, svc, schema.KindLinkConversion, 1, schema.Props{LinkID: "bio"}, at)

	cards, _ := svc.ComputeMetricCards(context.Background(), last30d(mode.Both))
	conv := cardByID(t, cards, "conversion_rate")
	if !approx(conv.Value, 25) {
		t.Errorf("conversion rate = %v, want 25", conv.Value)
	}
	if conv.Format != analytics.FormatPercentage {
		t.Errorf("format = %q, want percentage", conv.Format)
	}
}

func TestInvalidFilterComputesNothing(t *testing.T) {
	svc, _ := newService()
	bad := analytics.NewFilter(now, now.Add(-time.Hour), mode.Both)

	if _, err := svc.ComputeMetricCards(context.Background(), bad); !errors.Is(err, analytics.ErrInvalidFilter) {
		t.Errorf("metric cards: err = %v, want ErrInvalidFilter", err)
	}
	if _, err := svc.ComputeChartData(context.Background(), bad); !errors.Is(err, analytics.ErrInvalidFilter) {
		t.Errorf("charts: err = %v, want ErrInvalidFilter", err)
	}
	if _, err := svc.ComputeInsights(context.Background(), bad); !errors.Is(err, analytics.ErrInvalidFilter) {
		t.Errorf("insights: err = %v, want ErrInvalidFilter", err)
	}
	if _, err := svc.ComputeAlerts(context.Background(), bad); !errors.Is(err, analytics.ErrInvalidFilter) {
		t.Errorf("alerts: err = %v, want ErrInvalidFilter", err)
	}
}

func TestRejectedEventLeavesStoreUnchanged(t *testing.T) {
	svc, st := newService()
	mustRecord(t, svc, schema.KindLikeReceived, 1, schema.Props{}, now)

	if _, err := schema.Validate(schema.Kind("bogus"), 1, schema.Props{}); err == nil {
		t.Fatal("expected validation failure")
	}

	n, err := st.Len(context.Background())
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 1 {
		t.Errorf("store len = %d, want 1 (rejected event must not be ingested)", n)
	}
}

func TestReturnedCardsAreValueCopies(t *testing.T) {
	svc, _ := newService()
	mustRecord(t, svc, schema.KindDonationReceived, 50, schema.Props{}, now.Add(-time.Hour))

	f := last30d(mode.Both)
	first, _ := svc.ComputeMetricCards(context.Background(), f)
	first[0].Value = -999
	first[0].Title = "clobbered"

	second, _ := svc.ComputeMetricCards(context.Background(), f)
	if second[0].Value == -999 || second[0].Title == "clobbered" {
		t.Error("mutating a returned card leaked into the store")
	}
}

// ─── Alerts ─────────────────────────────────────────────────────────────────

func TestRevenueDropAlert(t *testing.T) {
	svc, _ := newService()
	f := last30d(mode.Both)

	mustRecord(t, svc, schema.KindDonationReceived, 200, schema.Props{}, f.Range.Start.Add(-24*time.Hour))
	mustRecord(t, svc, schema.KindDonationReceived, 40, schema.Props{}, now.Add(-time.Hour))

	alerts, err := svc.ComputeAlerts(context.Background(), f)
	if err != nil {
		t.Fatalf("ComputeAlerts: %v", err)
	}
	var drop *analytics.Alert
	for i := range alerts {
		if alerts[i].ID == "revenue_drop" {
			drop = &alerts[i]
		}
	}
	if drop == nil {
		t.Fatal("expected a revenue_drop alert for an 80% decline")
	}
	if drop.Severity != analytics.SeverityWarning || !drop.ActionRequired {
		t.Errorf("alert = %+v, want actionable warning", drop)
	}
	if !drop.CreatedAt.Equal(f.Range.End) {
		t.Errorf("createdAt = %v, want window end for reproducible queries", drop.CreatedAt)
	}
}

func TestAlertDismissalPersists(t *testing.T) {
	svc, _ := newService()
	flags := newMemFlags()
	svc.UseFlags(flags)
	f := last30d(mode.Both)

	mustRecord(t, svc, schema.KindDonationReceived, 200, schema.Props{}, f.Range.Start.Add(-24*time.Hour))

	alerts, _ := svc.ComputeAlerts(context.Background(), f)
	if len(alerts) == 0 {
		t.Fatal("expected at least one alert")
	}
	id := alerts[0].ID
	if alerts[0].Dismissed {
		t.Fatal("fresh alert should not be dismissed")
	}

	if err := svc.DismissAlert(id); err != nil {
		t.Fatalf("DismissAlert: %v", err)
	}
	again, _ := svc.ComputeAlerts(context.Background(), f)
	for _, a := range again {
		if a.ID == id && !a.Dismissed {
			t.Error("dismissal did not survive recomputation")
		}
	}
}

// ─── Insights ───────────────────────────────────────────────────────────────

func TestInsightImplementedFlagSurvivesRecomputation(t *testing.T) {
	svc, _ := newService()
	svc.UseFlags(newMemFlags())
	f := last30d(mode.Both)

	// Strong revenue growth against the trailing window.
	mustRecord(t, svc, schema.KindDonationReceived, 100, schema.Props{}, f.Range.Start.Add(-24*time.Hour))
	mustRecord(t, svc, schema.KindDonationReceived, 300, schema.Props{}, now.Add(-time.Hour))

	found, err := svc.ComputeInsights(context.Background(), f)
	if err != nil {
		t.Fatalf("ComputeInsights: %v", err)
	}
	var trend *insights.Insight
	for i := range found {
		if found[i].ID == "revenue_trend" {
			trend = &found[i]
		}
	}
	if trend == nil {
		t.Fatal("expected a revenue_trend insight for 200% growth")
	}
	if trend.Implemented {
		t.Fatal("fresh insight should not be marked implemented")
	}

	if err := svc.MarkInsightImplemented("revenue_trend"); err != nil {
		t.Fatalf("MarkInsightImplemented: %v", err)
	}
	again, _ := svc.ComputeInsights(context.Background(), f)
	for _, ins := range again {
		if ins.ID == "revenue_trend" && !ins.Implemented {
			t.Error("implemented flag did not survive recomputation")
		}
	}
}

func TestRevenueMilestoneAlert(t *testing.T) {
	svc, _ := newService()
	mustRecord(t, svc, schema.KindProductSale, 1200, schema.Props{ProductID: "course"}, now.Add(-time.Hour))

	alerts, _ := svc.ComputeAlerts(context.Background(), last30d(mode.Both))
	found := false
	for _, a := range alerts {
		if a.ID == "revenue_milestone" && a.Severity == analytics.SeveritySuccess {
			found = true
		}
	}
	if !found {
		t.Error("expected a revenue_milestone success alert")
	}
}

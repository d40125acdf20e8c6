package analytics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/upliftapps/pulse/internal/analytics"
	"github.com/upliftapps/pulse/internal/mode"
)

var now = time.Date(2025, 7, 15, 9, 30, 0, 0, time.UTC)

func TestFromPresetSpans(t *testing.T) {
	cases := []struct {
		preset analytics.Preset
		span   time.Duration
	}{
		{analytics.Preset7d, 7 * 24 * time.Hour},
		{analytics.Preset30d, 30 * 24 * time.Hour},
		{analytics.Preset90d, 90 * 24 * time.Hour},
		{analytics.Preset1y, 365 * 24 * time.Hour},
	}
	for _, tc := range cases {
		f, err := analytics.FromPresetAt(tc.preset, mode.Both, now)
		if err != nil {
			t.Fatalf("FromPresetAt(%s): %v", tc.preset, err)
		}
		drift := f.Range.Span() - tc.span
		if drift < -time.Second || drift > time.Second {
			t.Errorf("%s span = %v, want %v (±1s)", tc.preset, f.Range.Span(), tc.span)
		}
		if f.Range.Start.After(f.Range.End) {
			t.Errorf("%s: start after end", tc.preset)
		}
		if !f.Range.End.Equal(now) {
			t.Errorf("%s: end = %v, want construction time", tc.preset, f.Range.End)
		}
		if err := f.Validate(); err != nil {
			t.Errorf("%s: Validate: %v", tc.preset, err)
		}
	}
}

func TestFromPresetUnknown(t *testing.T) {
	_, err := analytics.FromPresetAt(analytics.Preset("14d"), mode.Both, now)
	if !errors.Is(err, analytics.ErrInvalidFilter) {
		t.Fatalf("err = %v, want ErrInvalidFilter", err)
	}
}

func TestValidateRejectsReversedRange(t *testing.T) {
	f := analytics.NewFilter(now, now.Add(-time.Hour), mode.Both)
	if err := f.Validate(); !errors.Is(err, analytics.ErrInvalidFilter) {
		t.Fatalf("err = %v, want ErrInvalidFilter", err)
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	f := analytics.NewFilter(now.Add(-time.Hour), now, mode.Mode("zeal"))
	if err := f.Validate(); !errors.Is(err, analytics.ErrInvalidFilter) {
		t.Fatalf("err = %v, want ErrInvalidFilter", err)
	}
}

func TestValidateRejectsInconsistentPreset(t *testing.T) {
	f := analytics.NewFilter(now.Add(-48*time.Hour), now, mode.Both)
	f.Range.Preset = analytics.Preset7d
	if err := f.Validate(); !errors.Is(err, analytics.ErrInvalidFilter) {
		t.Fatalf("err = %v, want ErrInvalidFilter", err)
	}
}

func TestTrailingWindow(t *testing.T) {
	f, err := analytics.FromPresetAt(analytics.Preset7d, mode.Both, now)
	if err != nil {
		t.Fatalf("FromPresetAt: %v", err)
	}
	prev := f.Range.Trailing()
	if !prev.End.Equal(f.Range.Start) {
		t.Errorf("trailing end = %v, want current start %v", prev.End, f.Range.Start)
	}
	if prev.Span() != f.Range.Span() {
		t.Errorf("trailing span = %v, want %v", prev.Span(), f.Range.Span())
	}
}

func TestBucketCount(t *testing.T) {
	cases := []struct {
		preset analytics.Preset
		want   int
	}{
		{analytics.Preset7d, 7},
		{analytics.Preset30d, 30},
		{analytics.Preset90d, 12},
		{analytics.Preset1y, 12},
	}
	for _, tc := range cases {
		f, _ := analytics.FromPresetAt(tc.preset, mode.Both, now)
		if got := f.BucketCount(); got != tc.want {
			t.Errorf("%s: buckets = %d, want %d", tc.preset, got, tc.want)
		}
	}

	// Custom ranges bucket per day, capped at 30.
	f := analytics.NewFilter(now.Add(-3*24*time.Hour), now, mode.Both)
	if got := f.BucketCount(); got != 3 {
		t.Errorf("3-day custom range: buckets = %d, want 3", got)
	}
	f = analytics.NewFilter(now.Add(-200*24*time.Hour), now, mode.Both)
	if got := f.BucketCount(); got != 30 {
		t.Errorf("200-day custom range: buckets = %d, want 30", got)
	}
	f = analytics.NewFilter(now.Add(-time.Hour), now, mode.Both)
	if got := f.BucketCount(); got != 1 {
		t.Errorf("sub-day custom range: buckets = %d, want 1", got)
	}
}

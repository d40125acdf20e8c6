package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/upliftapps/pulse/internal/mode"
)

// ErrInvalidFilter is returned by queries whose filter fails validation.
// Nothing is computed for an invalid filter.
var ErrInvalidFilter = errors.New("invalid filter")

// Preset is a named relative date range.
type Preset string

const (
	Preset7d  Preset = "7d"
	Preset30d Preset = "30d"
	Preset90d Preset = "90d"
	Preset1y  Preset = "1y"
)

var presetSpans = map[Preset]time.Duration{
	Preset7d:  7 * 24 * time.Hour,
	Preset30d: 30 * 24 * time.Hour,
	Preset90d: 90 * 24 * time.Hour,
	Preset1y:  365 * 24 * time.Hour,
}

// presetBuckets fixes the chart bucket count per preset: daily for a week or
// a month, weekly for a quarter, monthly for a year.
var presetBuckets = map[Preset]int{
	Preset7d:  7,
	Preset30d: 30,
	Preset90d: 12,
	Preset1y:  12,
}

// DateRange is a closed [Start, End] window. Preset, when set, is a
// convenience label and must agree with the literal range.
type DateRange struct {
	Start  time.Time
	End    time.Time
	Preset Preset
}

// Span returns the window length.
func (r DateRange) Span() time.Duration {
	return r.End.Sub(r.Start)
}

// Contains reports whether t falls inside the window.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Trailing returns the equally sized window immediately preceding r. It is
// the single baseline for every "vs last period" comparison.
func (r DateRange) Trailing() DateRange {
	span := r.Span()
	return DateRange{Start: r.Start.Add(-span), End: r.Start}
}

// Filter scopes one aggregation query: every derived view of a single query
// is computed over the same (date range, mode) slice.
type Filter struct {
	Range DateRange
	Mode  mode.Mode
}

// NewFilter builds a filter over an explicit range.
func NewFilter(start, end time.Time, m mode.Mode) Filter {
	return Filter{Range: DateRange{Start: start, End: end}, Mode: m}
}

// FromPreset builds a filter ending now. Now is captured once here, so one
// filter instance stays stable across repeated queries in a UI session.
func FromPreset(p Preset, m mode.Mode) (Filter, error) {
	return FromPresetAt(p, m, time.Now())
}

// FromPresetAt is FromPreset with an explicit clock.
func FromPresetAt(p Preset, m mode.Mode, now time.Time) (Filter, error) {
	span, ok := presetSpans[p]
	if !ok {
		return Filter{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidFilter, p)
	}
	return Filter{
		Range: DateRange{Start: now.Add(-span), End: now, Preset: p},
		Mode:  m,
	}, nil
}

// presetTolerance allows for clock skew between a preset label and the
// literal range it was computed from.
const presetTolerance = time.Minute

// Validate checks the filter invariants: ordered range, known mode, and a
// preset (if any) consistent with the literal range.
func (f Filter) Validate() error {
	if f.Range.Start.After(f.Range.End) {
		return fmt.Errorf("%w: start %s after end %s", ErrInvalidFilter,
			f.Range.Start.Format(time.RFC3339), f.Range.End.Format(time.RFC3339))
	}
	if !f.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidFilter, f.Mode)
	}
	if f.Range.Preset != "" {
		span, ok := presetSpans[f.Range.Preset]
		if !ok {
			return fmt.Errorf("%w: unknown preset %q", ErrInvalidFilter, f.Range.Preset)
		}
		drift := f.Range.Span() - span
		if drift < -presetTolerance || drift > presetTolerance {
			return fmt.Errorf("%w: preset %s disagrees with range span %s",
				ErrInvalidFilter, f.Range.Preset, f.Range.Span())
		}
	}
	return nil
}

// BucketCount returns the fixed chart bucket count for the filter. Custom
// ranges bucket per day, capped at 30.
func (f Filter) BucketCount() int {
	if n, ok := presetBuckets[f.Range.Preset]; ok {
		return n
	}
	days := int(f.Range.Span() / (24 * time.Hour))
	if days < 1 {
		return 1
	}
	if days > 30 {
		return 30
	}
	return days
}

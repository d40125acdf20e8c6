package analytics

import (
	"time"

	"github.com/upliftapps/pulse/internal/mode"
)

// Format hints how a MetricCard value should be rendered. Formatting itself
// is the dashboard's job.
type Format string

const (
	FormatNumber     Format = "number"
	FormatCurrency   Format = "currency"
	FormatPercentage Format = "percentage"
)

// Trend is the direction of a card's trailing-window change.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// MetricCard is one dashboard KPI, recomputed wholesale on every query.
// Callers own the returned value; mutating it never touches the store.
type MetricCard struct {
	ID                     string  `json:"id"`
	Title                  string  `json:"title"`
	FaithModeTitle         string  `json:"faith_mode_title,omitempty"`
	EncouragementModeTitle string  `json:"encouragement_mode_title,omitempty"`
	Value                  float64 `json:"value"`
	Format                 Format  `json:"format"`
	Trend                  Trend   `json:"trend"`
	// Change is the percent delta against the trailing window of equal
	// length immediately before the filter range.
	Change float64 `json:"change"`
	Period string  `json:"period"`
	Icon   string  `json:"icon"`
	Color  string  `json:"color"`
}

// TitleCopy exposes the card title to the mode resolver.
func (c MetricCard) TitleCopy() mode.Copy {
	return mode.Copy{
		Default:       c.Title,
		Faith:         c.FaithModeTitle,
		Encouragement: c.EncouragementModeTitle,
	}
}

// ChartType selects the dashboard renderer for a chart.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
)

// ChartPoint is one labeled value in a chart series.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// ChartData is a derived chart series. Time-series data is chronological
// (oldest first); categorical data keeps insertion order.
type ChartData struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Type  ChartType    `json:"type"`
	Unit  string       `json:"unit"`
	Data  []ChartPoint `json:"data"`
}

// Severity grades an alert.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Alert is a rule-triggered notice derived on query. Dismissed is the only
// externally mutable field; dismissal is persisted outside the query path.
type Alert struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Severity       Severity  `json:"severity"`
	ActionRequired bool      `json:"action_required"`
	Dismissed      bool      `json:"dismissed"`
	CreatedAt      time.Time `json:"created_at"`
}

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ComputeAlerts evaluates the alert rules over f's window. Alert IDs are
// deterministic so dismissal persists across recomputation; CreatedAt is the
// window end, keeping repeated queries identical. Triggered, undismissed
// alerts are also pushed to the attached publisher, best effort.
func (s *Service) ComputeAlerts(ctx context.Context, f Filter) ([]Alert, error) {
	events, err := s.snapshot(ctx, f)
	if err != nil {
		return nil, err
	}
	cur := collect(events, f.Range, f.Mode)
	prev := collect(events, f.Range.Trailing(), f.Mode)

	var out []Alert
	add := func(a Alert) {
		a.CreatedAt = f.Range.End
		if s.flags != nil {
			a.Dismissed = s.flags.AlertDismissed(a.ID)
		}
		out = append(out, a)
	}

	if prev.revenue > 0 {
		dropPct := (prev.revenue - cur.revenue) / prev.revenue * 100
		if dropPct >= s.alertCfg.RevenueDropPct {
			add(Alert{
				ID:             "revenue_drop",
				Type:           "revenue_drop",
				Title:          "Revenue is down",
				Message:        fmt.Sprintf("Revenue fell %.0f%% against the previous period.", dropPct),
				Severity:       SeverityWarning,
				ActionRequired: true,
			})
		}
	}

	if cur.errors >= s.alertCfg.ErrorSpikeCount {
		add(Alert{
			ID:             "error_spike",
			Type:           "error_spike",
			Title:          "Errors are spiking",
			Message:        fmt.Sprintf("%d error events in this period.", cur.errors),
			Severity:       SeverityError,
			ActionRequired: true,
		})
	}

	inactivitySpan := time.Duration(s.alertCfg.InactivityDays) * 24 * time.Hour
	if cur.creations == 0 && f.Range.Span() >= inactivitySpan {
		add(Alert{
			ID:       "inactivity",
			Type:     "inactivity",
			Title:    "No new content",
			Message:  "Nothing was created or published in this period. Your audience notices consistency.",
			Severity: SeverityInfo,
		})
	}

	if cur.revenue >= s.alertCfg.RevenueMilestone && prev.revenue < s.alertCfg.RevenueMilestone {
		add(Alert{
			ID:       "revenue_milestone",
			Type:     "revenue_milestone",
			Title:    "Revenue milestone reached",
			Message:  fmt.Sprintf("Revenue passed %.0f this period. Well done.", s.alertCfg.RevenueMilestone),
			Severity: SeveritySuccess,
		})
	}

	if s.alertPub != nil {
		for _, a := range out {
			if a.Dismissed {
				continue
			}
			if err := s.alertPub.PublishAlert(ctx, a); err != nil {
				log.Error().Err(err).Str("alert", a.ID).Msg("Alert publish failed")
			}
		}
	}

	return out, nil
}

package tracker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/upliftapps/pulse/internal/mode"
	"github.com/upliftapps/pulse/internal/schema"
	"github.com/upliftapps/pulse/internal/tracker"
)

// capture records every event it receives and can be told to fail.
type capture struct {
	events []schema.Event
	err    error
}

func (c *capture) Record(_ context.Context, e schema.Event) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, e)
	return nil
}

func (c *capture) last(t *testing.T) schema.Event {
	t.Helper()
	if len(c.events) == 0 {
		t.Fatal("no events recorded")
	}
	return c.events[len(c.events)-1]
}

func TestTypedMethodsBuildTheirEvents(t *testing.T) {
	rec := &capture{}
	tr := tracker.New(rec)
	ctx := context.Background()

	tr.TrackProductSale(ctx, "tee-psalm91", 24.99, "Printify")
	e := rec.last(t)
	if e.Kind != schema.KindProductSale || e.Category != schema.CategoryBusiness {
		t.Errorf("kind/category = %s/%s", e.Kind, e.Category)
	}
	if e.Value != 24.99 || e.Props.ProductID != "tee-psalm91" || e.Props.Platform != "Printify" {
		t.Errorf("event = %+v", e)
	}
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Error("event missing id or timestamp")
	}

	tr.TrackLikeReceived(ctx, mode.Faith, "grace")
	e = rec.last(t)
	if e.Kind != schema.KindLikeReceived || e.Props.Mode != mode.Faith || e.Props.Topic != "grace" {
		t.Errorf("event = %+v", e)
	}

	tr.TrackScreenView(ctx, "dashboard", 42.5)
	e = rec.last(t)
	if e.Kind != schema.KindScreenView || e.Props.ScreenName != "dashboard" || e.Value != 42.5 {
		t.Errorf("event = %+v", e)
	}

	tr.TrackError(ctx, "E_TIMEOUT", "checkout")
	e = rec.last(t)
	if e.Kind != schema.KindErrorOccurred || e.Props.ErrorCode != "E_TIMEOUT" {
		t.Errorf("event = %+v", e)
	}

	if len(rec.events) != 4 {
		t.Errorf("recorded %d events, want 4", len(rec.events))
	}
}

func TestInvalidCallIsDroppedSilently(t *testing.T) {
	rec := &capture{}
	tr := tracker.New(rec)
	ctx := context.Background()

	// Missing required product id.
	tr.TrackProductSale(ctx, "", 24.99, "Printify")
	// Unknown kind through the untyped path.
	tr.Track(ctx, schema.Kind("made_up"), 1, schema.Props{})

	if len(rec.events) != 0 {
		t.Errorf("recorded %d events from invalid calls, want 0", len(rec.events))
	}

	// The store must be unaffected by the rejects.
	tr.TrackPrayerOffered(ctx, mode.Faith)
	if len(rec.events) != 1 {
		t.Errorf("recorded %d events, want exactly the valid one", len(rec.events))
	}
}

func TestRecorderFailureDoesNotPropagate(t *testing.T) {
	rec := &capture{err: errors.New("store down")}
	tr := tracker.New(rec)

	// Must neither panic nor surface the error.
	tr.TrackSessionStart(context.Background())
	tr.TrackDonationReceived(context.Background(), 10, "PayPal")
}

func TestNilTrackerIsNoOp(t *testing.T) {
	var tr *tracker.Tracker

	tr.TrackSessionStart(context.Background())
	tr.TrackProductSale(context.Background(), "p1", 9.99, "Gumroad")
	tr.TrackCustom(context.Background(), "beta_toggle", 1, schema.Props{})
}

func TestCustomEventsCarryLabel(t *testing.T) {
	rec := &capture{}
	tr := tracker.New(rec)

	tr.TrackCustom(context.Background(), "beta_toggle", 1, schema.Props{})
	e := rec.last(t)
	if e.Kind != schema.KindCustom || e.Props.Label != "beta_toggle" {
		t.Errorf("event = %+v", e)
	}

	// Label is required for custom events.
	tr.TrackCustom(context.Background(), "", 1, schema.Props{})
	if len(rec.events) != 1 {
		t.Errorf("unlabeled custom event was recorded")
	}
}

// Package seed loads a small sample event history through the tracker for
// local dashboard development.
package seed

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/upliftapps/pulse/internal/mode"
	"github.com/upliftapps/pulse/internal/tracker"
)

// Demo tracks a sample of plausible creator activity. Events land with
// current timestamps, so a 30d dashboard shows data immediately.
func Demo(ctx context.Context, t *tracker.Tracker) {
	t.TrackSessionStart(ctx)
	t.TrackScreenView(ctx, "dashboard", 42)
	t.TrackScreenView(ctx, "prayer_board", 95)

	t.TrackTestimonyShared(ctx, mode.Faith, "Instagram")
	t.TrackStoryPosted(ctx, mode.Encouragement, "gratitude")
	t.TrackContentPublished(ctx, mode.Faith, "worship", "YouTube")
	t.TrackContentCreated(ctx, mode.Faith, "worship", 640)
	t.TrackAudioRecorded(ctx, 58)
	t.TrackAIContentGenerated(ctx, "devotional", 420)

	for range [6]int{} {
		t.TrackLikeReceived(ctx, mode.Faith, "worship")
	}
	t.TrackCommentReceived(ctx, mode.Faith, "worship")
	t.TrackShareReceived(ctx, mode.Encouragement, "Instagram", "gratitude")
	t.TrackPrayerOffered(ctx, mode.Faith)
	t.TrackEncouragementSent(ctx, mode.Encouragement)

	t.TrackProductSale(ctx, "tee-psalm91", 24.99, "Printify")
	t.TrackProductSale(ctx, "mug-sunrise", 16.99, "Printify")
	t.TrackDonationReceived(ctx, 10, "BuyMeACoffee")
	t.TrackTipReceived(ctx, 5, "Venmo")

	t.TrackLinkClick(ctx, "bio-shop", "Instagram")
	t.TrackLinkClick(ctx, "bio-shop", "TikTok")
	t.TrackLinkConversion(ctx, "bio-shop", "Instagram")

	t.TrackGroupJoined(ctx, "morning-prayer")
	t.TrackPrayerBoardPost(ctx, mode.Faith)

	log.Info().Msg("Seeded demo events")
}

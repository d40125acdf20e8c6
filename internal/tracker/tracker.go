// Package tracker is the instrumentation facade feature code calls. One
// strongly-typed method per event kind; every method builds the properties
// for its kind, validates against the schema, and forwards to the
// aggregation service. Tracking is fail-safe: a bad call logs and drops,
// it never returns an error or panics into caller control flow.
package tracker

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/upliftapps/pulse/internal/mode"
	"github.com/upliftapps/pulse/internal/schema"
)

// Recorder ingests validated events. Implemented by analytics.Service.
type Recorder interface {
	Record(ctx context.Context, e schema.Event) error
}

// Tracker is constructed once at process start and injected into feature
// code. A nil Tracker is a valid no-op, which keeps instrumentation safe in
// partially wired tests.
type Tracker struct {
	rec Recorder
}

// New creates a Tracker forwarding to rec.
func New(rec Recorder) *Tracker {
	return &Tracker{rec: rec}
}

func (t *Tracker) track(ctx context.Context, k schema.Kind, value float64, props schema.Props) {
	if t == nil || t.rec == nil {
		return
	}
	e, err := schema.Validate(k, value, props)
	if err != nil {
		log.Warn().Err(err).Str("kind", string(k)).Msg("Dropping invalid tracking call")
		return
	}
	if err := t.rec.Record(ctx, e); err != nil {
		log.Error().Err(err).Str("kind", string(k)).Msg("Failed to record event")
	}
}

// ─── Content ────────────────────────────────────────────────────────────────

func (t *Tracker) TrackTestimonyShared(ctx context.Context, m mode.Mode, platform string) {
	t.track(ctx, schema.KindTestimonyShared, 1, schema.Props{Mode: m, Platform: platform})
}

func (t *Tracker) TrackDevotionalRead(ctx context.Context, m mode.Mode, contentID string) {
	t.track(ctx, schema.KindDevotionalRead, 1, schema.Props{Mode: m, ContentID: contentID})
}

func (t *Tracker) TrackScriptureShared(ctx context.Context, m mode.Mode, platform string) {
	t.track(ctx, schema.KindScriptureShared, 1, schema.Props{Mode: m, Platform: platform})
}

func (t *Tracker) TrackStoryPosted(ctx context.Context, m mode.Mode, topic string) {
	t.track(ctx, schema.KindStoryPosted, 1, schema.Props{Mode: m, Topic: topic})
}

func (t *Tracker) TrackContentView(ctx context.Context, contentID, topic string) {
	t.track(ctx, schema.KindContentView, 1, schema.Props{ContentID: contentID, Topic: topic})
}

func (t *Tracker) TrackPodcastPlay(ctx context.Context, contentID string) {
	t.track(ctx, schema.KindPodcastPlay, 1, schema.Props{ContentID: contentID})
}

func (t *Tracker) TrackPodcastComplete(ctx context.Context, contentID string) {
	t.track(ctx, schema.KindPodcastComplete, 1, schema.Props{ContentID: contentID})
}

// TrackVideoWatch records seconds watched as the event value.
func (t *Tracker) TrackVideoWatch(ctx context.Context, contentID string, secondsWatched float64) {
	t.track(ctx, schema.KindVideoWatch, secondsWatched, schema.Props{ContentID: contentID})
}

// ─── Engagement ─────────────────────────────────────────────────────────────

func (t *Tracker) TrackLikeReceived(ctx context.Context, m mode.Mode, topic string) {
	t.track(ctx, schema.KindLikeReceived, 1, schema.Props{Mode: m, Topic: topic})
}

func (t *Tracker) TrackCommentReceived(ctx context.Context, m mode.Mode, topic string) {
	t.track(ctx, schema.KindCommentReceived, 1, schema.Props{Mode: m, Topic: topic})
}

func (t *Tracker) TrackShareReceived(ctx context.Context, m mode.Mode, platform, topic string) {
	t.track(ctx, schema.KindShareReceived, 1, schema.Props{Mode: m, Platform: platform, Topic: topic})
}

func (t *Tracker) TrackPrayerOffered(ctx context.Context, m mode.Mode) {
	t.track(ctx, schema.KindPrayerOffered, 1, schema.Props{Mode: m})
}

func (t *Tracker) TrackPrayerAnswered(ctx context.Context, m mode.Mode) {
	t.track(ctx, schema.KindPrayerAnswered, 1, schema.Props{Mode: m})
}

func (t *Tracker) TrackEncouragementSent(ctx context.Context, m mode.Mode) {
	t.track(ctx, schema.KindEncouragementSent, 1, schema.Props{Mode: m})
}

func (t *Tracker) TrackReactionAdded(ctx context.Context, m mode.Mode, topic string) {
	t.track(ctx, schema.KindReactionAdded, 1, schema.Props{Mode: m, Topic: topic})
}

// ─── Business ───────────────────────────────────────────────────────────────

// TrackProductSale records a sale; amount is the currency value.
func (t *Tracker) TrackProductSale(ctx context.Context, productID string, amount float64, platform string) {
	t.track(ctx, schema.KindProductSale, amount, schema.Props{ProductID: productID, Platform: platform})
}

func (t *Tracker) TrackDonationReceived(ctx context.Context, amount float64, platform string) {
	t.track(ctx, schema.KindDonationReceived, amount, schema.Props{Platform: platform})
}

func (t *Tracker) TrackSubscriptionStarted(ctx context.Context, amount float64, platform string) {
	t.track(ctx, schema.KindSubscriptionStarted, amount, schema.Props{Platform: platform})
}

func (t *Tracker) TrackSubscriptionRenewed(ctx context.Context, amount float64, platform string) {
	t.track(ctx, schema.KindSubscriptionRenewed, amount, schema.Props{Platform: platform})
}

func (t *Tracker) TrackTipReceived(ctx context.Context, amount float64, platform string) {
	t.track(ctx, schema.KindTipReceived, amount, schema.Props{Platform: platform})
}

func (t *Tracker) TrackPayoutRequested(ctx context.Context, amount float64) {
	t.track(ctx, schema.KindPayoutRequested, amount, schema.Props{})
}

// ─── Links & conversions ────────────────────────────────────────────────────

func (t *Tracker) TrackLinkClick(ctx context.Context, linkID, platform string) {
	t.track(ctx, schema.KindLinkClick, 1, schema.Props{LinkID: linkID, Platform: platform})
}

func (t *Tracker) TrackLinkConversion(ctx context.Context, linkID, platform string) {
	t.track(ctx, schema.KindLinkConversion, 1, schema.Props{LinkID: linkID, Platform: platform})
}

func (t *Tracker) TrackAffiliateClick(ctx context.Context, linkID, platform string) {
	t.track(ctx, schema.KindAffiliateClick, 1, schema.Props{LinkID: linkID, Platform: platform})
}

func (t *Tracker) TrackAffiliateConversion(ctx context.Context, linkID, platform string) {
	t.track(ctx, schema.KindAffiliateConversion, 1, schema.Props{LinkID: linkID, Platform: platform})
}

func (t *Tracker) TrackQRScan(ctx context.Context, linkID string) {
	t.track(ctx, schema.KindQRScan, 1, schema.Props{LinkID: linkID})
}

// ─── Creation ───────────────────────────────────────────────────────────────

// TrackContentCreated records the word count as the event value; zero is
// fine for non-text content.
func (t *Tracker) TrackContentCreated(ctx context.Context, m mode.Mode, topic string, wordCount int) {
	t.track(ctx, schema.KindContentCreated, float64(wordCount), schema.Props{Mode: m, Topic: topic})
}

func (t *Tracker) TrackDraftSaved(ctx context.Context, topic string) {
	t.track(ctx, schema.KindDraftSaved, 1, schema.Props{Topic: topic})
}

func (t *Tracker) TrackContentPublished(ctx context.Context, m mode.Mode, topic, platform string) {
	t.track(ctx, schema.KindContentPublished, 1, schema.Props{Mode: m, Topic: topic, Platform: platform})
}

func (t *Tracker) TrackContentScheduled(ctx context.Context, topic string) {
	t.track(ctx, schema.KindContentScheduled, 1, schema.Props{Topic: topic})
}

// TrackAudioRecorded records the recording length in seconds.
func (t *Tracker) TrackAudioRecorded(ctx context.Context, durationSec float64) {
	t.track(ctx, schema.KindAudioRecorded, durationSec, schema.Props{})
}

// ─── AI & automation ────────────────────────────────────────────────────────

func (t *Tracker) TrackAIContentGenerated(ctx context.Context, topic string, wordCount int) {
	t.track(ctx, schema.KindAIContentGenerated, float64(wordCount), schema.Props{Topic: topic})
}

func (t *Tracker) TrackAISuggestionAccepted(ctx context.Context) {
	t.track(ctx, schema.KindAISuggestionAccepted, 1, schema.Props{})
}

func (t *Tracker) TrackAIInsightViewed(ctx context.Context) {
	t.track(ctx, schema.KindAIInsightViewed, 1, schema.Props{})
}

// ─── Journey ────────────────────────────────────────────────────────────────

// TrackScreenView records time spent on the screen in seconds.
func (t *Tracker) TrackScreenView(ctx context.Context, screenName string, timeSpentSec float64) {
	t.track(ctx, schema.KindScreenView, timeSpentSec, schema.Props{ScreenName: screenName})
}

func (t *Tracker) TrackOnboardingStep(ctx context.Context, stepName string) {
	t.track(ctx, schema.KindOnboardingStep, 1, schema.Props{ScreenName: stepName})
}

func (t *Tracker) TrackFeatureDiscovered(ctx context.Context, featureName string) {
	t.track(ctx, schema.KindFeatureDiscovered, 1, schema.Props{Label: featureName})
}

func (t *Tracker) TrackSessionStart(ctx context.Context) {
	t.track(ctx, schema.KindSessionStart, 1, schema.Props{})
}

// TrackSessionEnd records the session length in seconds.
func (t *Tracker) TrackSessionEnd(ctx context.Context, durationSec float64) {
	t.track(ctx, schema.KindSessionEnd, durationSec, schema.Props{})
}

// ─── Community ──────────────────────────────────────────────────────────────

func (t *Tracker) TrackGroupJoined(ctx context.Context, groupID string) {
	t.track(ctx, schema.KindGroupJoined, 1, schema.Props{GroupID: groupID})
}

// TrackMentorshipSession records the session length in seconds.
func (t *Tracker) TrackMentorshipSession(ctx context.Context, durationSec float64) {
	t.track(ctx, schema.KindMentorshipSession, durationSec, schema.Props{})
}

func (t *Tracker) TrackPrayerBoardPost(ctx context.Context, m mode.Mode) {
	t.track(ctx, schema.KindPrayerBoardPost, 1, schema.Props{Mode: m})
}

func (t *Tracker) TrackCircleMessage(ctx context.Context, groupID string) {
	t.track(ctx, schema.KindCircleMessage, 1, schema.Props{GroupID: groupID})
}

// ─── Errors & performance ───────────────────────────────────────────────────

func (t *Tracker) TrackError(ctx context.Context, errorCode, screenName string) {
	t.track(ctx, schema.KindErrorOccurred, 1, schema.Props{ErrorCode: errorCode, ScreenName: screenName})
}

// TrackSlowScreen records the render time in seconds.
func (t *Tracker) TrackSlowScreen(ctx context.Context, screenName string, renderSec float64) {
	t.track(ctx, schema.KindSlowScreen, renderSec, schema.Props{ScreenName: screenName})
}

func (t *Tracker) TrackAPIFailure(ctx context.Context, errorCode string) {
	t.track(ctx, schema.KindAPIFailure, 1, schema.Props{ErrorCode: errorCode})
}

// ─── Custom ─────────────────────────────────────────────────────────────────

// TrackCustom records a one-off event named by label.
func (t *Tracker) TrackCustom(ctx context.Context, label string, value float64, props schema.Props) {
	props.Label = label
	t.track(ctx, schema.KindCustom, value, props)
}

// Track is the untyped entry point used by the HTTP ingest surface, which
// receives kind and properties over the wire.
func (t *Tracker) Track(ctx context.Context, k schema.Kind, value float64, props schema.Props) {
	t.track(ctx, k, value, props)
}

// Package schema defines the closed event taxonomy and validation for
// everything the tracker records. Validation is pure; no side effects.
package schema

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/upliftapps/pulse/internal/mode"
)

// Validation errors.
var (
	ErrUnknownEventKind        = errors.New("unknown event kind")
	ErrInvalidValue            = errors.New("invalid event value")
	ErrMissingRequiredProperty = errors.New("missing required property")
)

// Category groups event kinds for dashboard rollups.
type Category string

const (
	CategoryContent    Category = "content"
	CategoryEngagement Category = "engagement"
	CategoryBusiness   Category = "business"
	CategoryLink       Category = "link"
	CategoryCreation   Category = "creation"
	CategoryAI         Category = "ai"
	CategoryJourney    Category = "journey"
	CategoryCommunity  Category = "community"
	CategoryError      Category = "error"
	CategoryCustom     Category = "custom"
)

// Kind identifies a single tracked occurrence type.
type Kind string

// Content events. Value is a count, play count, or watch duration in seconds
// depending on the kind.
const (
	KindTestimonyShared Kind = "testimony_shared"
	KindDevotionalRead  Kind = "devotional_read"
	KindScriptureShared Kind = "scripture_shared"
	KindStoryPosted     Kind = "story_posted"
	KindContentView     Kind = "content_view"
	KindPodcastPlay     Kind = "podcast_play"
	KindPodcastComplete Kind = "podcast_complete"
	KindVideoWatch      Kind = "video_watch"
)

// Engagement events. Value is always a count.
const (
	KindLikeReceived      Kind = "like_received"
	KindCommentReceived   Kind = "comment_received"
	KindShareReceived     Kind = "share_received"
	KindPrayerOffered     Kind = "prayer_offered"
	KindPrayerAnswered    Kind = "prayer_answered"
	KindEncouragementSent Kind = "encouragement_sent"
	KindReactionAdded     Kind = "reaction_added"
)

// Business events. Value is a currency amount.
const (
	KindProductSale         Kind = "product_sale"
	KindDonationReceived    Kind = "donation_received"
	KindSubscriptionStarted Kind = "subscription_started"
	KindSubscriptionRenewed Kind = "subscription_renewed"
	KindTipReceived         Kind = "tip_received"
	KindPayoutRequested     Kind = "payout_requested"
)

// Link and conversion events.
const (
	KindLinkClick           Kind = "link_click"
	KindLinkConversion      Kind = "link_conversion"
	KindAffiliateClick      Kind = "affiliate_click"
	KindAffiliateConversion Kind = "affiliate_conversion"
	KindQRScan              Kind = "qr_scan"
)

// Creation events. Value is a count or a word count for written content.
const (
	KindContentCreated   Kind = "content_created"
	KindDraftSaved       Kind = "draft_saved"
	KindContentPublished Kind = "content_published"
	KindContentScheduled Kind = "content_scheduled"
	KindAudioRecorded    Kind = "audio_recorded"
)

// AI and automation events.
const (
	KindAIContentGenerated   Kind = "ai_content_generated"
	KindAISuggestionAccepted Kind = "ai_suggestion_accepted"
	KindAIInsightViewed      Kind = "ai_insight_viewed"
)

// Journey events. Value for screen_view and session kinds is time spent in
// seconds; others count 1.
const (
	KindScreenView        Kind = "screen_view"
	KindOnboardingStep    Kind = "onboarding_step"
	KindFeatureDiscovered Kind = "feature_discovered"
	KindSessionStart      Kind = "session_start"
	KindSessionEnd        Kind = "session_end"
)

// Community events.
const (
	KindGroupJoined       Kind = "group_joined"
	KindMentorshipSession Kind = "mentorship_session"
	KindPrayerBoardPost   Kind = "prayer_board_post"
	KindCircleMessage     Kind = "circle_message"
)

// Error and performance events.
const (
	KindErrorOccurred Kind = "error_occurred"
	KindSlowScreen    Kind = "slow_screen"
	KindAPIFailure    Kind = "api_failure"
)

// KindCustom is the escape hatch for one-off events; Props.Label names them.
const KindCustom Kind = "custom"

// Props carries the kind-specific attributes of an event. Only the fields a
// kind requires (see registry) plus Mode are ever read by aggregation;
// unused fields stay zero.
type Props struct {
	// Mode tags the event with a content personality. Empty means
	// mode-agnostic: the event counts toward both personalities.
	Mode mode.Mode `json:"mode,omitempty"`

	Platform   string   `json:"platform,omitempty"`
	Topic      string   `json:"topic,omitempty"` // content category label (worship, testimony, ...)
	ContentID  string   `json:"content_id,omitempty"`
	ProductID  string   `json:"product_id,omitempty"`
	ScreenName string   `json:"screen_name,omitempty"`
	LinkID     string   `json:"link_id,omitempty"`
	GroupID    string   `json:"group_id,omitempty"`
	ErrorCode  string   `json:"error_code,omitempty"`
	Label      string   `json:"label,omitempty"` // custom event name
	Tags       []string `json:"tags,omitempty"`
}

type kindSpec struct {
	category Category
	required []string
}

// propPresent maps a required-property name to its presence check.
var propPresent = map[string]func(Props) bool{
	"platform":    func(p Props) bool { return p.Platform != "" },
	"product_id":  func(p Props) bool { return p.ProductID != "" },
	"content_id":  func(p Props) bool { return p.ContentID != "" },
	"screen_name": func(p Props) bool { return p.ScreenName != "" },
	"link_id":     func(p Props) bool { return p.LinkID != "" },
	"group_id":    func(p Props) bool { return p.GroupID != "" },
	"error_code":  func(p Props) bool { return p.ErrorCode != "" },
	"label":       func(p Props) bool { return p.Label != "" },
}

var registry = map[Kind]kindSpec{
	KindTestimonyShared: {category: CategoryContent},
	KindDevotionalRead:  {category: CategoryContent},
	KindScriptureShared: {category: CategoryContent},
	KindStoryPosted:     {category: CategoryContent},
	KindContentView:     {category: CategoryContent, required: []string{"content_id"}},
	KindPodcastPlay:     {category: CategoryContent, required: []string{"content_id"}},
	KindPodcastComplete: {category: CategoryContent, required: []string{"content_id"}},
	KindVideoWatch:      {category: CategoryContent, required: []string{"content_id"}},

	KindLikeReceived:      {category: CategoryEngagement},
	KindCommentReceived:   {category: CategoryEngagement},
	KindShareReceived:     {category: CategoryEngagement},
	KindPrayerOffered:     {category: CategoryEngagement},
	KindPrayerAnswered:    {category: CategoryEngagement},
	KindEncouragementSent: {category: CategoryEngagement},
	KindReactionAdded:     {category: CategoryEngagement},

	KindProductSale:         {category: CategoryBusiness, required: []string{"product_id"}},
	KindDonationReceived:    {category: CategoryBusiness},
	KindSubscriptionStarted: {category: CategoryBusiness},
	KindSubscriptionRenewed: {category: CategoryBusiness},
	KindTipReceived:         {category: CategoryBusiness},
	KindPayoutRequested:     {category: CategoryBusiness},

	KindLinkClick:           {category: CategoryLink, required: []string{"link_id"}},
	KindLinkConversion:      {category: CategoryLink, required: []string{"link_id"}},
	KindAffiliateClick:      {category: CategoryLink, required: []string{"link_id"}},
	KindAffiliateConversion: {category: CategoryLink, required: []string{"link_id"}},
	KindQRScan:              {category: CategoryLink},

	KindContentCreated:   {category: CategoryCreation},
	KindDraftSaved:       {category: CategoryCreation},
	KindContentPublished: {category: CategoryCreation},
	KindContentScheduled: {category: CategoryCreation},
	KindAudioRecorded:    {category: CategoryCreation},

	KindAIContentGenerated:   {category: CategoryAI},
	KindAISuggestionAccepted: {category: CategoryAI},
	KindAIInsightViewed:      {category: CategoryAI},

	KindScreenView:        {category: CategoryJourney, required: []string{"screen_name"}},
	KindOnboardingStep:    {category: CategoryJourney},
	KindFeatureDiscovered: {category: CategoryJourney},
	KindSessionStart:      {category: CategoryJourney},
	KindSessionEnd:        {category: CategoryJourney},

	KindGroupJoined:       {category: CategoryCommunity, required: []string{"group_id"}},
	KindMentorshipSession: {category: CategoryCommunity},
	KindPrayerBoardPost:   {category: CategoryCommunity},
	KindCircleMessage:     {category: CategoryCommunity, required: []string{"group_id"}},

	KindErrorOccurred: {category: CategoryError, required: []string{"error_code"}},
	KindSlowScreen:    {category: CategoryError, required: []string{"screen_name"}},
	KindAPIFailure:    {category: CategoryError, required: []string{"error_code"}},

	KindCustom: {category: CategoryCustom, required: []string{"label"}},
}

// Known reports whether k is part of the taxonomy.
func Known(k Kind) bool {
	_, ok := registry[k]
	return ok
}

// CategoryOf returns the category of a known kind, or CategoryCustom for an
// unknown one.
func CategoryOf(k Kind) Category {
	if spec, ok := registry[k]; ok {
		return spec.category
	}
	return CategoryCustom
}

// Categories lists all categories in dashboard rollup order.
func Categories() []Category {
	return []Category{
		CategoryContent, CategoryEngagement, CategoryBusiness, CategoryLink,
		CategoryCreation, CategoryAI, CategoryJourney, CategoryCommunity,
		CategoryError, CategoryCustom,
	}
}

// Event is an immutable record of one tracked occurrence. Timestamp is set
// at creation and never mutated.
type Event struct {
	ID        string    `json:"event_id"`
	Kind      Kind      `json:"kind"`
	Category  Category  `json:"category"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
	Props     Props     `json:"properties"`
}

// InMode reports whether the event counts toward aggregates filtered to m.
// Mode-agnostic events count toward every personality.
func (e Event) InMode(m mode.Mode) bool {
	if m == mode.Both || e.Props.Mode == "" || e.Props.Mode == mode.Both {
		return true
	}
	return e.Props.Mode == m
}

// Validate builds an Event timestamped now.
func Validate(k Kind, value float64, props Props) (Event, error) {
	return ValidateAt(k, value, props, time.Now())
}

// ValidateAt builds an Event timestamped at. It fails if k is outside the
// taxonomy, value is not finite, or a kind-required property is absent.
func ValidateAt(k Kind, value float64, props Props, at time.Time) (Event, error) {
	spec, ok := registry[k]
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEventKind, k)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Event{}, fmt.Errorf("%w: %s value %v", ErrInvalidValue, k, value)
	}
	for _, name := range spec.required {
		if present := propPresent[name]; present != nil && !present(props) {
			return Event{}, fmt.Errorf("%w: %s requires %s", ErrMissingRequiredProperty, k, name)
		}
	}
	return Event{
		ID:        uuid.New().String(),
		Kind:      k,
		Category:  spec.category,
		Value:     value,
		Timestamp: at,
		Props:     props,
	}, nil
}

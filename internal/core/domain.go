package core

import (
	"strings"
	"time"
)

// Personality is the concierge voice a guest prefers.
type Personality string

const (
	PersonalityProfessional   Personality = "professional"
	PersonalityFriendly       Personality = "friendly"
	PersonalityEnthusiastic   Personality = "enthusiastic"
	PersonalityCalm           Personality = "calm"
	PersonalityHumorous       Personality = "humorous"
	PersonalityFormal         Personality = "formal"
	PersonalityCasual         Personality = "casual"
	PersonalityEmpathetic     Personality = "empathetic"
	PersonalityEfficient      Personality = "efficient"
	PersonalityConversational Personality = "conversational"
)

// Personalities lists every declared personality in declaration order.
var Personalities = []Personality{
	PersonalityProfessional,
	PersonalityFriendly,
	PersonalityEnthusiastic,
	PersonalityCalm,
	PersonalityHumorous,
	PersonalityFormal,
	PersonalityCasual,
	PersonalityEmpathetic,
	PersonalityEfficient,
	PersonalityConversational,
}

// ParsePersonality maps raw input onto a declared personality.
// Unknown values fall back to PersonalityProfessional; ok reports whether the
// input named a declared variant.
func ParsePersonality(raw string) (p Personality, ok bool) {
	normalized := Personality(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range Personalities {
		if candidate == normalized {
			return candidate, true
		}
	}
	return PersonalityProfessional, false
}

// ServiceCategory is the kind of hospitality request a message represents.
type ServiceCategory string

const (
	ServiceRoomService    ServiceCategory = "room_service"
	ServiceHousekeeping   ServiceCategory = "housekeeping"
	ServiceConcierge      ServiceCategory = "concierge"
	ServiceDining         ServiceCategory = "dining"
	ServiceWellness       ServiceCategory = "wellness"
	ServiceTransportation ServiceCategory = "transportation"
	ServiceEntertainment  ServiceCategory = "entertainment"
	ServiceBusiness       ServiceCategory = "business"
	ServiceEmergency      ServiceCategory = "emergency"
	ServiceGeneral        ServiceCategory = "general"
)

// ServiceCategories lists every declared category in declaration order.
var ServiceCategories = []ServiceCategory{
	ServiceRoomService,
	ServiceHousekeeping,
	ServiceConcierge,
	ServiceDining,
	ServiceWellness,
	ServiceTransportation,
	ServiceEntertainment,
	ServiceBusiness,
	ServiceEmergency,
	ServiceGeneral,
}

// EmotionType is a detected guest emotion.
type EmotionType string

const (
	EmotionJoy         EmotionType = "joy"
	EmotionSadness     EmotionType = "sadness"
	EmotionAnger       EmotionType = "anger"
	EmotionFear        EmotionType = "fear"
	EmotionSurprise    EmotionType = "surprise"
	EmotionDisgust     EmotionType = "disgust"
	EmotionNeutral     EmotionType = "neutral"
	EmotionStress      EmotionType = "stress"
	EmotionExcitement  EmotionType = "excitement"
	EmotionContentment EmotionType = "contentment"
	EmotionAnxiety     EmotionType = "anxiety"
	EmotionFrustration EmotionType = "frustration"
)

// Emotions lists every declared emotion in declaration order.
var Emotions = []EmotionType{
	EmotionJoy,
	EmotionSadness,
	EmotionAnger,
	EmotionFear,
	EmotionSurprise,
	EmotionDisgust,
	EmotionNeutral,
	EmotionStress,
	EmotionExcitement,
	EmotionContentment,
	EmotionAnxiety,
	EmotionFrustration,
}

// Intensity is an ordered strength level, VeryLow being the weakest.
type Intensity string

const (
	IntensityVeryLow  Intensity = "very_low"
	IntensityLow      Intensity = "low"
	IntensityMedium   Intensity = "medium"
	IntensityHigh     Intensity = "high"
	IntensityVeryHigh Intensity = "very_high"
)

// Intensities lists every level from weakest to strongest.
var Intensities = []Intensity{
	IntensityVeryLow,
	IntensityLow,
	IntensityMedium,
	IntensityHigh,
	IntensityVeryHigh,
}

// GuestProfile is supplied, already validated, by the identity collaborator.
type GuestProfile struct {
	ID                    string   `json:"id"`
	FirstName             string   `json:"firstName,omitempty"`
	PersonalityPreference string   `json:"personalityPreference"`
	PreferredLanguage     string   `json:"preferredLanguage"`
	AccessibilityFeatures []string `json:"accessibilityFeatures"`
	DietaryRestrictions   []string `json:"dietaryRestrictions"`
	WellnessGoals         []string `json:"wellnessGoals"`
}

// EmotionResult is the classifier output for one message.
type EmotionResult struct {
	Emotion     EmotionType `json:"emotion"`
	Intensity   Intensity   `json:"intensity"`
	Confidence  float64     `json:"confidence"`
	Context     string      `json:"context,omitempty"`
	Suggestions []string    `json:"suggestions"`
	Timestamp   time.Time   `json:"timestamp"`
}

// ProactiveAction is a suggested side effect, e.g. dimming the room lights.
type ProactiveAction struct {
	Action string `json:"action"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// EmotionSummary is the emotion view exposed on a response.
type EmotionSummary struct {
	Emotion    EmotionType `json:"emotion"`
	Intensity  Intensity   `json:"intensity"`
	Confidence float64     `json:"confidence"`
}

// Summary drops the suggestions and timestamp from an emotion result.
func (r EmotionResult) Summary() *EmotionSummary {
	return &EmotionSummary{
		Emotion:    r.Emotion,
		Intensity:  r.Intensity,
		Confidence: r.Confidence,
	}
}

// ConversationTurn is one guest message and the assistant reply to it.
type ConversationTurn struct {
	ID               string          `json:"id"`
	Timestamp        time.Time       `json:"timestamp"`
	GuestMessage     string          `json:"guestMessage"`
	AssistantMessage string          `json:"assistantMessage"`
	Emotion          EmotionType     `json:"emotion,omitempty"`
	Service          ServiceCategory `json:"service"`
}

// ConciergeResponse is the assembled pipeline output.
type ConciergeResponse struct {
	Message           string            `json:"message"`
	Personality       Personality       `json:"personality"`
	ServiceCategory   ServiceCategory   `json:"serviceCategory"`
	Suggestions       []string          `json:"suggestions"`
	ProactiveActions  []ProactiveAction `json:"proactiveActions"`
	EmotionDetected   *EmotionSummary   `json:"emotionDetected,omitempty"`
	FollowUpQuestions []string          `json:"followUpQuestions"`
	RequiresHuman     bool              `json:"requiresHuman"`
}

// ProcessMessageInput is the inbound request shape shared by every transport.
type ProcessMessageInput struct {
	Message      string         `json:"message"`
	GuestProfile *GuestProfile  `json:"guestProfile"`
	ContextHints map[string]any `json:"contextHints,omitempty"`
}

// MediaKind names a non-text input channel.
type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// containsAny reports whether lowered contains any of keywords.
func containsAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

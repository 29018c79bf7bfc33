package core

import (
	"strings"
	"time"
)

// EscalationReason names the rule that routed a message to a human.
type EscalationReason string

const (
	ReasonNone            EscalationReason = ""
	ReasonEmergency       EscalationReason = "emergency_service"
	ReasonIntenseNegative EscalationReason = "intense_negative_emotion"
	ReasonComplexRequest  EscalationReason = "complex_request"
)

var complexKeywords = []string{"complaint", "refund", "manager", "supervisor", "legal", "medical"}

// RequiresHuman reports whether staff must take over the conversation.
func RequiresHuman(message string, emotion EmotionResult, category ServiceCategory) bool {
	return EscalationFor(message, emotion, category) != ReasonNone
}

// EscalationFor returns the first escalation rule that fires, or ReasonNone.
// The rules are independent predicates, so order only affects the reason.
func EscalationFor(message string, emotion EmotionResult, category ServiceCategory) EscalationReason {
	if category == ServiceEmergency {
		return ReasonEmergency
	}
	if isIntense(emotion.Intensity) && (emotion.Emotion == EmotionAnger || emotion.Emotion == EmotionFrustration) {
		return ReasonIntenseNegative
	}
	if containsAny(strings.ToLower(message), complexKeywords) {
		return ReasonComplexRequest
	}
	return ReasonNone
}

func isIntense(level Intensity) bool {
	return level == IntensityHigh || level == IntensityVeryHigh
}

// HandoffTicket asks staff to take over a guest conversation.
type HandoffTicket struct {
	ID        string           `json:"id"`
	GuestID   string           `json:"guestId"`
	Message   string           `json:"message"`
	Emotion   EmotionType      `json:"emotion"`
	Intensity Intensity        `json:"intensity"`
	Service   ServiceCategory  `json:"service"`
	Reason    EscalationReason `json:"reason"`
	CreatedAt time.Time        `json:"createdAt"`
}

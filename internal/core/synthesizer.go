package core

import (
	"fmt"
	"strings"
)

const defaultGuestName = "Guest"

// ResponseSynthesizer composes the concierge reply text.
type ResponseSynthesizer interface {
	Synthesize(guestName string, personality Personality, category ServiceCategory, emotion EmotionResult) string
}

// TemplateSynthesizer joins a greeting, a service blurb and an optional
// emotion suffix with single spaces.
type TemplateSynthesizer struct{}

func NewTemplateSynthesizer() *TemplateSynthesizer {
	return &TemplateSynthesizer{}
}

func (s *TemplateSynthesizer) Synthesize(guestName string, personality Personality, category ServiceCategory, emotion EmotionResult) string {
	name := strings.TrimSpace(guestName)
	if name == "" {
		name = defaultGuestName
	}

	parts := []string{Greeting(name, personality), ServiceBlurb(category)}
	if suffix := EmotionSuffix(emotion.Emotion); suffix != "" {
		parts = append(parts, suffix)
	}
	return strings.Join(parts, " ")
}

// Greeting renders the personality greeting. Formal, casual, efficient and
// conversational share the professional template.
func Greeting(name string, personality Personality) string {
	switch personality {
	case PersonalityFriendly:
		return fmt.Sprintf("Hi %s! I'm so happy to help you today! 😊", name)
	case PersonalityEnthusiastic:
		return fmt.Sprintf("Hello %s! I'm excited to help make your stay amazing! ✨", name)
	case PersonalityCalm:
		return fmt.Sprintf("Hello %s. I'm here to help you feel comfortable and relaxed.", name)
	case PersonalityHumorous:
		return fmt.Sprintf("Hey there, %s! Ready to have some fun? Let me know what you need! 😄", name)
	case PersonalityEmpathetic:
		return fmt.Sprintf("Hello %s. I'm here to listen and help however I can.", name)
	case PersonalityProfessional:
		return fmt.Sprintf("Good day, %s. How may I assist you today?", name)
	default:
		return Greeting(name, PersonalityProfessional)
	}
}

// ServiceBlurb describes what the concierge can do for a category.
func ServiceBlurb(category ServiceCategory) string {
	switch category {
	case ServiceRoomService:
		return "I'd be delighted to help with your room needs! I can assist with housekeeping, room service, temperature control, or any amenities you might need."
	case ServiceHousekeeping:
		return "I'd be glad to arrange housekeeping for you! I can schedule cleaning, fresh linens, or extra amenities at a time that suits you."
	case ServiceConcierge:
		return "I'm excited to help make your stay memorable! I can recommend local attractions, arrange transportation, or coordinate special experiences."
	case ServiceDining:
		return "I'd love to help you discover amazing dining experiences! I can recommend restaurants, make reservations, or help with special dietary needs."
	case ServiceWellness:
		return "I'm here to support your wellness journey! I can help with spa bookings, fitness activities, or any relaxation needs you have."
	case ServiceTransportation:
		return "I'd be happy to help with your transportation needs! I can arrange airport transfers, local rides, or provide transportation information."
	case ServiceEntertainment:
		return "Let me help you find some great entertainment! I can suggest shows, events, or activities that match your interests."
	case ServiceBusiness:
		return "I'm here to support your business needs! I can help with meeting arrangements, business services, or work-related requests."
	case ServiceEmergency:
		return "I understand this is urgent. Let me help you immediately. What specific assistance do you need right now?"
	default:
		return "I'm here to help with whatever you need! Feel free to ask me anything about your stay or our services."
	}
}

// EmotionSuffix softens the tone for stress, sadness and joy. Anger and
// frustration are left to escalation.
func EmotionSuffix(emotion EmotionType) string {
	switch emotion {
	case EmotionStress, EmotionAnxiety:
		return "I can sense you might be feeling a bit stressed. Let me help make things easier for you."
	case EmotionSadness:
		return "I want to make sure you're comfortable and happy during your stay. How can I help brighten your day?"
	case EmotionJoy, EmotionExcitement:
		return "I love your positive energy! Let's make your stay even more amazing!"
	default:
		return ""
	}
}

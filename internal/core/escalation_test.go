package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscalationFor(t *testing.T) {
	a := NewAnalyzerWithClock(fixedClock)
	r := NewRouter()

	cases := []struct {
		name    string
		message string
		want    EscalationReason
	}{
		{"emergency service", "This is an emergency", ReasonEmergency},
		{"intense anger", "I am angry and furious", ReasonIntenseNegative},
		{"complex keyword", "I want to cancel and get a refund, please connect me to a manager", ReasonComplexRequest},
		{"mild anger", "I am a little annoyed", ReasonNone},
		{"plain request", "Can I get extra towels in my room?", ReasonNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			emotion := a.Classify(tc.message)
			category := r.Route(tc.message)

			assert.Equal(t, tc.want, EscalationFor(tc.message, emotion, category))
			assert.Equal(t, tc.want != ReasonNone, RequiresHuman(tc.message, emotion, category))
		})
	}
}

func TestComplexKeywordIgnoresEmotion(t *testing.T) {
	msg := "I want to cancel and get a refund, please connect me to a manager"

	for _, emotion := range Emotions {
		result := NewEmotionResult(emotion, 0.5, fixedClock())
		assert.True(t, RequiresHuman(msg, result, ServiceGeneral), emotion)
	}
}

func TestIntenseFrustrationEscalates(t *testing.T) {
	result := NewEmotionResult(EmotionFrustration, 0.9, fixedClock())

	assert.Equal(t, ReasonIntenseNegative, EscalationFor("", result, ServiceGeneral))
}

func TestProactiveActions(t *testing.T) {
	stress := ProactiveActions(NewEmotionResult(EmotionStress, 0.6, fixedClock()))
	assert.Contains(t, stress, ProactiveAction{Action: "adjust_lighting", Value: "dim", Reason: "Create calming atmosphere"})
	assert.Len(t, stress, 3)

	assert.Len(t, ProactiveActions(NewEmotionResult(EmotionSadness, 0.6, fixedClock())), 2)
	assert.Len(t, ProactiveActions(NewEmotionResult(EmotionExcitement, 0.6, fixedClock())), 2)

	neutral := ProactiveActions(NewEmotionResult(EmotionNeutral, 0.5, fixedClock()))
	assert.NotNil(t, neutral)
	assert.Empty(t, neutral)
}

func TestFollowUpQuestions(t *testing.T) {
	for _, category := range ServiceCategories {
		questions := FollowUpQuestions(category)
		assert.NotNil(t, questions, category)
		switch category {
		case ServiceRoomService, ServiceDining, ServiceWellness:
			assert.Len(t, questions, 2, category)
		default:
			assert.Empty(t, questions, category)
		}
	}
}

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
}

func TestClassifyStress(t *testing.T) {
	a := NewAnalyzerWithClock(fixedClock)

	result := a.Classify("I am so stressed about tomorrow's meeting")

	assert.Equal(t, EmotionStress, result.Emotion)
	assert.InDelta(t, 0.6, result.Confidence, 1e-9)
	assert.Equal(t, IntensityMedium, result.Intensity)
	assert.Len(t, result.Suggestions, 3)
	assert.Equal(t, fixedClock(), result.Timestamp)
}

func TestClassifyNeutralWhenNothingMatches(t *testing.T) {
	a := NewAnalyzer()

	for _, text := range []string{"", "   ", "What time is checkout?"} {
		result := a.Classify(text)
		assert.Equal(t, EmotionNeutral, result.Emotion, text)
		assert.Equal(t, 0.5, result.Confidence, text)
		assert.Equal(t, IntensityMedium, result.Intensity, text)
		require.NotNil(t, result.Suggestions, text)
		assert.Empty(t, result.Suggestions, text)
	}
}

func TestClassifyTieGoesToEarlierRow(t *testing.T) {
	a := NewAnalyzer()

	// "excited" is a keyword for both joy and excitement.
	result := a.Classify("I'm excited")

	assert.Equal(t, EmotionJoy, result.Emotion)
}

func TestClassifyHigherScoreWins(t *testing.T) {
	a := NewAnalyzer()

	result := a.Classify("I'm so angry and furious, but the view is great")

	assert.Equal(t, EmotionAnger, result.Emotion)
	assert.InDelta(t, 0.7, result.Confidence, 1e-9)
	assert.Equal(t, IntensityHigh, result.Intensity)
}

func TestClassifyConfidenceIsCapped(t *testing.T) {
	a := NewAnalyzer()

	result := a.Classify("Happy, great, amazing, wonderful and fantastic!")

	assert.Equal(t, EmotionJoy, result.Emotion)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, IntensityVeryHigh, result.Intensity)
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	a := NewAnalyzer()

	assert.Equal(t, EmotionFear, a.Classify("I am WORRIED").Emotion)
}

func TestClassifyIsPure(t *testing.T) {
	a := NewAnalyzerWithClock(fixedClock)

	first := a.Classify("I feel lonely and sad")
	second := a.Classify("I feel lonely and sad")

	assert.Equal(t, first, second)
}

func TestIntensityFor(t *testing.T) {
	cases := []struct {
		confidence float64
		want       Intensity
	}{
		{0.0, IntensityVeryLow},
		{0.29, IntensityVeryLow},
		{0.3, IntensityLow},
		{0.49, IntensityLow},
		{0.5, IntensityMedium},
		{0.69, IntensityMedium},
		{0.7, IntensityHigh},
		{0.89, IntensityHigh},
		{0.9, IntensityVeryHigh},
		{1.0, IntensityVeryHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IntensityFor(tc.confidence), "confidence %v", tc.confidence)
	}
}

func TestSuggestionsFor(t *testing.T) {
	for _, emotion := range Emotions {
		suggestions := SuggestionsFor(emotion)
		require.NotNil(t, suggestions, emotion)
		assert.LessOrEqual(t, len(suggestions), 3, emotion)
	}

	assert.Equal(t, calmingSuggestions[:3], SuggestionsFor(EmotionAnxiety))
	assert.Equal(t, deescalatingSuggestions[:3], SuggestionsFor(EmotionFrustration))
	assert.Empty(t, SuggestionsFor(EmotionSurprise))
}

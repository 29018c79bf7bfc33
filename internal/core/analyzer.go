package core

import (
	"strings"
	"time"
)

const (
	baseConfidence    = 0.5
	confidencePerHit  = 0.1
	maxConfidence     = 0.9
	maxSuggestions    = 3
	neutralConfidence = baseConfidence
)

type emotionKeywords struct {
	emotion  EmotionType
	keywords []string
}

// emotionTable is evaluated top to bottom; on equal scores the earlier row wins.
var emotionTable = []emotionKeywords{
	{EmotionJoy, []string{"happy", "excited", "great", "amazing", "wonderful", "fantastic", "love", "enjoy"}},
	{EmotionSadness, []string{"sad", "depressed", "down", "upset", "disappointed", "hurt", "lonely"}},
	{EmotionAnger, []string{"angry", "mad", "furious", "annoyed", "irritated", "frustrated", "rage"}},
	{EmotionFear, []string{"scared", "afraid", "worried", "anxious", "nervous", "terrified", "panic"}},
	{EmotionStress, []string{"stressed", "overwhelmed", "pressure", "tense", "burned out", "exhausted"}},
	{EmotionExcitement, []string{"excited", "thrilled", "pumped", "energized", "enthusiastic", "eager"}},
}

var (
	calmingSuggestions = []string{
		"Would you like me to dim the lights and play calming music?",
		"I can schedule a spa treatment or meditation session for you.",
		"Would you prefer a quiet room service meal in your room?",
		"I can adjust the room temperature to a more comfortable level.",
	}
	upliftingSuggestions = []string{
		"Would you like me to suggest some uplifting activities?",
		"I can arrange for your favorite comfort food to be delivered.",
		"Would you like to connect with our concierge for local entertainment?",
		"I can adjust the room lighting to be more cheerful.",
	}
	celebratorySuggestions = []string{
		"Would you like me to suggest some exciting local activities?",
		"I can help you plan a special celebration dinner.",
		"Would you like to explore our premium amenities?",
		"I can arrange for a surprise upgrade or special treat.",
	}
	deescalatingSuggestions = []string{
		"I understand you're frustrated. How can I help resolve this?",
		"Would you like me to connect you with our manager?",
		"I can arrange for a quiet space or different room if needed.",
		"Would you like me to suggest some stress-relief activities?",
	}
)

// Analyzer classifies the emotional state expressed in guest text.
type Analyzer struct {
	now func() time.Time
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{now: time.Now}
}

// NewAnalyzerWithClock lets callers pin the result timestamp.
func NewAnalyzerWithClock(now func() time.Time) *Analyzer {
	return &Analyzer{now: now}
}

// Classify scores every emotion row by the number of its keywords found in
// text and returns the best one, or neutral when nothing matches.
func (a *Analyzer) Classify(text string) EmotionResult {
	lowered := strings.ToLower(text)

	best := EmotionNeutral
	bestScore := 0
	for _, row := range emotionTable {
		score := 0
		for _, kw := range row.keywords {
			if strings.Contains(lowered, kw) {
				score++
			}
		}
		if score > bestScore {
			best = row.emotion
			bestScore = score
		}
	}

	confidence := neutralConfidence
	if bestScore > 0 {
		confidence = min(maxConfidence, baseConfidence+float64(bestScore)*confidencePerHit)
	}

	return NewEmotionResult(best, confidence, a.now())
}

// NewEmotionResult derives intensity and suggestions for an emotion.
func NewEmotionResult(emotion EmotionType, confidence float64, at time.Time) EmotionResult {
	return EmotionResult{
		Emotion:     emotion,
		Intensity:   IntensityFor(confidence),
		Confidence:  confidence,
		Suggestions: SuggestionsFor(emotion),
		Timestamp:   at,
	}
}

// IntensityFor maps a confidence onto an intensity level.
func IntensityFor(confidence float64) Intensity {
	switch {
	case confidence >= 0.9:
		return IntensityVeryHigh
	case confidence >= 0.7:
		return IntensityHigh
	case confidence >= 0.5:
		return IntensityMedium
	case confidence >= 0.3:
		return IntensityLow
	default:
		return IntensityVeryLow
	}
}

// SuggestionsFor returns at most three canned suggestions for an emotion.
func SuggestionsFor(emotion EmotionType) []string {
	var pool []string
	switch emotion {
	case EmotionStress, EmotionAnxiety:
		pool = calmingSuggestions
	case EmotionSadness:
		pool = upliftingSuggestions
	case EmotionJoy, EmotionExcitement:
		pool = celebratorySuggestions
	case EmotionAnger, EmotionFrustration:
		pool = deescalatingSuggestions
	default:
		return []string{}
	}

	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(pool) && i < maxSuggestions; i++ {
		out = append(out, pool[i])
	}
	return out
}

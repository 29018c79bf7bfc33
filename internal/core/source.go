package core

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// EmotionSource detects an emotion from a raw media payload.
type EmotionSource interface {
	Detect(ctx context.Context, payload []byte) (EmotionResult, error)
}

// Transcriber turns a media payload into guest text.
type Transcriber interface {
	Transcribe(ctx context.Context, kind MediaKind, payload []byte) (string, error)
}

// RandomSource stands in for audio or vision emotion models by picking a
// seeded pseudo-random emotion and a confidence in [lo, hi).
type RandomSource struct {
	mu      sync.Mutex
	rng     *rand.Rand
	choices []EmotionType
	lo, hi  float64
	label   string
	now     func() time.Time
}

// NewAudioSource mimics a speech emotion model.
func NewAudioSource(seed int64) *RandomSource {
	return &RandomSource{
		rng:     rand.New(rand.NewSource(seed)),
		choices: []EmotionType{EmotionJoy, EmotionNeutral, EmotionStress, EmotionExcitement},
		lo:      0.6,
		hi:      0.9,
		label:   "audio",
		now:     time.Now,
	}
}

// NewVisionSource mimics a facial expression model.
func NewVisionSource(seed int64) *RandomSource {
	return &RandomSource{
		rng:     rand.New(rand.NewSource(seed)),
		choices: []EmotionType{EmotionJoy, EmotionNeutral, EmotionSadness, EmotionSurprise},
		lo:      0.7,
		hi:      0.95,
		label:   "vision",
		now:     time.Now,
	}
}

func (s *RandomSource) Detect(ctx context.Context, payload []byte) (EmotionResult, error) {
	if err := ctx.Err(); err != nil {
		return EmotionResult{}, err
	}

	s.mu.Lock()
	emotion := s.choices[s.rng.Intn(len(s.choices))]
	confidence := s.lo + s.rng.Float64()*(s.hi-s.lo)
	s.mu.Unlock()

	result := NewEmotionResult(emotion, confidence, s.now())
	result.Context = s.label
	return result, nil
}

// FixedSource always reports the same result. Useful for fixtures.
type FixedSource struct {
	Result EmotionResult
}

func (s FixedSource) Detect(ctx context.Context, _ []byte) (EmotionResult, error) {
	if err := ctx.Err(); err != nil {
		return EmotionResult{}, err
	}
	return s.Result, nil
}

// CannedTranscriber returns a fixed utterance per media kind until a real
// speech-to-text service is wired in.
type CannedTranscriber struct {
	Utterances map[MediaKind]string
}

func NewCannedTranscriber() *CannedTranscriber {
	return &CannedTranscriber{
		Utterances: map[MediaKind]string{
			MediaAudio: "I'd like to order room service and get some recommendations for local dining.",
			MediaVideo: "I'm looking for some relaxation activities and wellness services.",
		},
	}
}

func (t *CannedTranscriber) Transcribe(ctx context.Context, kind MediaKind, _ []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, ok := t.Utterances[kind]
	if !ok {
		return "", fmt.Errorf("no transcript for media kind %q", kind)
	}
	return text, nil
}

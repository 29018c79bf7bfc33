package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	apperrors "github.com/kaphack/guest-concierge-pipeline/internal/errors"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
	"github.com/kaphack/guest-concierge-pipeline/internal/memory"
	"github.com/kaphack/guest-concierge-pipeline/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// FallbackMessage is returned when the reply cannot be composed.
const FallbackMessage = "I apologize, but I'm having trouble processing your request right now. Please try again or contact our front desk for assistance."

// DefaultHistoryLimit is the number of turns returned when no limit is given.
const DefaultHistoryLimit = 10

const conversationContextHint = "conversation_context"

// HandoffNotifier is told about every conversation that needs staff.
type HandoffNotifier interface {
	NotifyHandoff(ctx context.Context, ticket core.HandoffTicket) error
}

// Dispatcher runs side effects off the request path, ordered per key.
type Dispatcher interface {
	TryDispatch(key string, fn func()) bool
}

// Engine runs the concierge pipeline for one inbound message at a time per
// call; it is safe for concurrent use.
type Engine struct {
	analyzer    *core.Analyzer
	router      *core.Router
	synth       core.ResponseSynthesizer
	memory      *memory.Store
	sink        telemetry.Sink
	notifiers   []HandoffNotifier
	dispatcher  Dispatcher
	sources     map[core.MediaKind]core.EmotionSource
	transcriber core.Transcriber
	now         func() time.Time
	newID       func() string
}

type Option func(*Engine)

func WithSynthesizer(s core.ResponseSynthesizer) Option {
	return func(e *Engine) { e.synth = s }
}

func WithTelemetry(sink telemetry.Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

func WithHandoffNotifiers(n ...HandoffNotifier) Option {
	return func(e *Engine) { e.notifiers = append(e.notifiers, n...) }
}

func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) { e.dispatcher = d }
}

func WithEmotionSource(kind core.MediaKind, src core.EmotionSource) Option {
	return func(e *Engine) { e.sources[kind] = src }
}

func WithTranscriber(t core.Transcriber) Option {
	return func(e *Engine) { e.transcriber = t }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(store *memory.Store, opts ...Option) *Engine {
	e := &Engine{
		router:      core.NewRouter(),
		synth:       core.NewTemplateSynthesizer(),
		memory:      store,
		sink:        telemetry.Nop{},
		sources:     make(map[core.MediaKind]core.EmotionSource),
		transcriber: core.NewCannedTranscriber(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.analyzer = core.NewAnalyzerWithClock(e.now)
	return e
}

// ProcessMessage classifies, replies to and records one guest message.
func (e *Engine) ProcessMessage(ctx context.Context, in core.ProcessMessageInput) (*core.ConciergeResponse, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	return e.process(ctx, in, telemetry.EventMessageProcessed)
}

// ProcessMedia runs the pipeline on a voice or video payload. The reply is
// built from the transcript; emotionDetected reports the media emotion.
func (e *Engine) ProcessMedia(ctx context.Context, kind core.MediaKind, payload []byte, profile *core.GuestProfile, hints map[string]any) (*core.ConciergeResponse, error) {
	in := core.ProcessMessageInput{GuestProfile: profile, ContextHints: hints}
	if err := Validate(in); err != nil {
		return nil, err
	}

	detected, err := e.DetectMedia(ctx, kind, payload)
	if err != nil {
		return nil, err
	}

	text, err := e.transcriber.Transcribe(ctx, kind, payload)
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to transcribe media", err)
	}
	in.Message = text

	resp, err := e.process(ctx, in, telemetry.EventMediaProcessed)
	if err != nil {
		return nil, err
	}
	resp.EmotionDetected = detected.Summary()
	return resp, nil
}

// DetectText classifies text without touching history.
func (e *Engine) DetectText(text, conversationContext string) core.EmotionResult {
	result := e.analyzer.Classify(text)
	result.Context = conversationContext
	return result
}

// DetectMedia asks the emotion source registered for kind.
func (e *Engine) DetectMedia(ctx context.Context, kind core.MediaKind, payload []byte) (core.EmotionResult, error) {
	src, ok := e.sources[kind]
	if !ok {
		return core.EmotionResult{}, apperrors.NewValidationError("unsupported media kind: "+string(kind), nil)
	}
	result, err := src.Detect(ctx, payload)
	if err != nil {
		return core.EmotionResult{}, apperrors.NewProcessingError("failed to detect "+string(kind)+" emotion", err)
	}
	return result, nil
}

// SupportsMedia reports whether an emotion source is registered for kind.
func (e *Engine) SupportsMedia(kind core.MediaKind) bool {
	_, ok := e.sources[kind]
	return ok
}

// History returns up to limit recent turns, oldest first, and the total kept.
func (e *Engine) History(guestID string, limit int) ([]core.ConversationTurn, int) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return e.memory.Get(guestID, limit), e.memory.Len(guestID)
}

// ClearHistory forgets a guest's turns.
func (e *Engine) ClearHistory(guestID string) {
	e.memory.Clear(guestID)
}

// ActiveGuests returns the number of guests with history.
func (e *Engine) ActiveGuests() int {
	return e.memory.Guests()
}

// Validate rejects input shapes the pipeline cannot run on.
func Validate(in core.ProcessMessageInput) error {
	if in.GuestProfile == nil {
		return apperrors.NewValidationError("guestProfile is required", nil)
	}
	if strings.TrimSpace(in.GuestProfile.ID) == "" {
		return apperrors.NewValidationError("guestProfile.id is required", nil)
	}
	return nil
}

func (e *Engine) process(ctx context.Context, in core.ProcessMessageInput, eventType string) (*core.ConciergeResponse, error) {
	start := e.now()
	profile := in.GuestProfile

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		emotion  core.EmotionResult
		category core.ServiceCategory
	)
	var g errgroup.Group
	g.Go(func() error {
		emotion = e.analyzer.Classify(in.Message)
		return nil
	})
	g.Go(func() error {
		category = e.router.Route(in.Message)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if hint, ok := in.ContextHints[conversationContextHint].(string); ok {
		emotion.Context = hint
	}

	personality, known := core.ParsePersonality(profile.PersonalityPreference)
	if !known && profile.PersonalityPreference != "" {
		logger.Debug().
			Str("guest_id", profile.ID).
			Str("personality", profile.PersonalityPreference).
			Msg("unknown personality, using professional")
	}

	resp, reason := e.compose(in.Message, profile, personality, category, emotion)

	// Nothing is recorded for a request cancelled before this point.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	turn := core.ConversationTurn{
		ID:               e.newID(),
		Timestamp:        e.now(),
		GuestMessage:     in.Message,
		AssistantMessage: resp.Message,
		Emotion:          emotion.Emotion,
		Service:          category,
	}
	e.memory.Append(profile.ID, turn)

	latency := e.now().Sub(start)
	logger.Info().
		Str("guest_id", profile.ID).
		Str("service", string(category)).
		Str("emotion", string(emotion.Emotion)).
		Bool("requires_human", resp.RequiresHuman).
		Dur("latency", latency).
		Msg("message processed")

	e.afterResponse(ctx, profile.ID, in.Message, eventType, resp, emotion, reason, latency)
	return resp, nil
}

// compose builds the reply. A fault while composing yields the fallback
// apology instead of an error.
func (e *Engine) compose(message string, profile *core.GuestProfile, personality core.Personality, category core.ServiceCategory, emotion core.EmotionResult) (resp *core.ConciergeResponse, reason core.EscalationReason) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("guest_id", profile.ID).
				Interface("panic", r).
				Msg("failed to compose concierge response")
			resp = &core.ConciergeResponse{
				Message:           FallbackMessage,
				Personality:       personality,
				ServiceCategory:   category,
				Suggestions:       []string{},
				ProactiveActions:  []core.ProactiveAction{},
				EmotionDetected:   emotion.Summary(),
				FollowUpQuestions: []string{},
				RequiresHuman:     false,
			}
			reason = core.ReasonNone
		}
	}()

	text := e.synth.Synthesize(profile.FirstName, personality, category, emotion)
	reason = core.EscalationFor(message, emotion, category)

	suggestions := emotion.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	return &core.ConciergeResponse{
		Message:           text,
		Personality:       personality,
		ServiceCategory:   category,
		Suggestions:       suggestions,
		ProactiveActions:  core.ProactiveActions(emotion),
		EmotionDetected:   emotion.Summary(),
		FollowUpQuestions: core.FollowUpQuestions(category),
		RequiresHuman:     reason != core.ReasonNone,
	}, reason
}

func (e *Engine) afterResponse(ctx context.Context, guestID, message, eventType string, resp *core.ConciergeResponse, emotion core.EmotionResult, reason core.EscalationReason, latency time.Duration) {
	bg := context.WithoutCancel(ctx)

	event := telemetry.Event{
		Type:      eventType,
		GuestID:   guestID,
		LatencyMs: float64(latency.Microseconds()) / 1000,
		Metadata: map[string]any{
			"service":        string(resp.ServiceCategory),
			"emotion":        string(emotion.Emotion),
			"personality":    string(resp.Personality),
			"requires_human": resp.RequiresHuman,
		},
		Timestamp: e.now().UTC(),
	}
	e.async(guestID, func() { e.sink.Record(bg, event) })

	if !resp.RequiresHuman || len(e.notifiers) == 0 {
		return
	}

	ticket := core.HandoffTicket{
		ID:        e.newID(),
		GuestID:   guestID,
		Message:   message,
		Emotion:   emotion.Emotion,
		Intensity: emotion.Intensity,
		Service:   resp.ServiceCategory,
		Reason:    reason,
		CreatedAt: e.now().UTC(),
	}
	e.async(guestID, func() {
		for _, n := range e.notifiers {
			if err := n.NotifyHandoff(bg, ticket); err != nil {
				logger.Warn().
					Err(err).
					Str("guest_id", guestID).
					Str("ticket_id", ticket.ID).
					Msg("failed to notify handoff")
			}
		}
		e.sink.Record(bg, telemetry.Event{
			Type:      telemetry.EventHandoff,
			GuestID:   guestID,
			Metadata:  map[string]any{"reason": string(reason), "ticket_id": ticket.ID},
			Timestamp: e.now().UTC(),
		})
	})
}

func (e *Engine) async(key string, fn func()) {
	if e.dispatcher == nil {
		fn()
		return
	}
	if !e.dispatcher.TryDispatch(key, fn) {
		logger.Warn().Str("guest_id", key).Msg("side-effect queue full, dropping task")
	}
}

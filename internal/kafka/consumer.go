package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
	"github.com/segmentio/kafka-go"
)

// commitTimeout bounds the offset commit that follows each handled message.
const commitTimeout = 5 * time.Second

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Processor runs one inbound guest message.
type Processor interface {
	ProcessMessage(ctx context.Context, in core.ProcessMessageInput) (*core.ConciergeResponse, error)
}

// Dispatcher queues work so that one guest's messages stay in order.
type Dispatcher interface {
	Dispatch(key string, fn func()) error
}

// ReplyPublisher receives every successful reply.
type ReplyPublisher interface {
	PublishReply(ctx context.Context, guestID string, resp *core.ConciergeResponse) error
}

type Consumer struct {
	reader     MessageReader
	processor  Processor
	dispatcher Dispatcher
	replies    ReplyPublisher
}

func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
}

func NewConsumer(reader MessageReader, processor Processor, dispatcher Dispatcher, replies ReplyPublisher) *Consumer {
	return &Consumer{
		reader:     reader,
		processor:  processor,
		dispatcher: dispatcher,
		replies:    replies,
	}
}

// Start fetches until ctx is cancelled. A cancelled context is a clean stop.
// Offsets are committed only after a message has been handled, and messages
// already dispatched still run to completion, so call Close once the
// dispatcher has drained.
func (c *Consumer) Start(ctx context.Context) error {
	logger.Info().Msg("Kafka consumer started...")

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		in, err := decodeInput(m)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("key", string(m.Key)).
				Int64("offset", m.Offset).
				Msg("dropping undecodable guest message")
			c.commit(ctx, m)
			continue
		}

		guestID := in.GuestProfile.ID
		taskCtx := context.WithoutCancel(ctx)
		if err := c.dispatcher.Dispatch(guestID, func() {
			c.handle(taskCtx, guestID, in)
			c.commit(taskCtx, m)
		}); err != nil {
			return err
		}
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) handle(ctx context.Context, guestID string, in core.ProcessMessageInput) {
	resp, err := c.processor.ProcessMessage(ctx, in)
	if err != nil {
		logger.Warn().Err(err).Str("guest_id", guestID).Msg("failed to process guest message")
		return
	}
	if c.replies == nil {
		return
	}
	if err := c.replies.PublishReply(ctx, guestID, resp); err != nil {
		logger.Warn().Err(err).Str("guest_id", guestID).Msg("failed to publish reply")
	}
}

func (c *Consumer) commit(ctx context.Context, m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()
	if err := c.reader.CommitMessages(ctx, m); err != nil {
		logger.Warn().
			Err(err).
			Int("partition", m.Partition).
			Int64("offset", m.Offset).
			Msg("failed to commit offset")
	}
}

// decodeInput reads a ProcessMessageInput. The guest profile is required; the
// message key only fills in a missing id on a profile that is present.
func decodeInput(m kafka.Message) (core.ProcessMessageInput, error) {
	var in core.ProcessMessageInput
	if err := sonic.Unmarshal(m.Value, &in); err != nil {
		return in, err
	}
	if in.GuestProfile == nil {
		return in, errors.New("message has no guest profile")
	}
	if in.GuestProfile.ID == "" {
		in.GuestProfile.ID = string(m.Key)
	}
	if in.GuestProfile.ID == "" {
		return in, errors.New("message has no guest id")
	}
	return in, nil
}

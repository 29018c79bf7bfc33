package kafka

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
	"github.com/segmentio/kafka-go"
)

const maxWriteRetries = 3

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Reply is what the consumer publishes for each processed message.
type Reply struct {
	GuestID  string                  `json:"guestId"`
	Response *core.ConciergeResponse `json:"response"`
}

// Publisher writes replies and handoff tickets keyed by guest id.
type Publisher struct {
	replies  MessageWriter
	handoffs MessageWriter
	backoff  time.Duration
}

// NewWriter builds a writer that keeps one guest's records on one partition.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 100 * time.Millisecond,
	}
}

func NewPublisher(brokers []string, replyTopic, handoffTopic string) *Publisher {
	return NewPublisherFromWriters(NewWriter(brokers, replyTopic), NewWriter(brokers, handoffTopic))
}

func NewPublisherFromWriters(replies, handoffs MessageWriter) *Publisher {
	return &Publisher{replies: replies, handoffs: handoffs, backoff: 100 * time.Millisecond}
}

// PublishReply writes the reply for guestID to the reply topic.
func (p *Publisher) PublishReply(ctx context.Context, guestID string, resp *core.ConciergeResponse) error {
	value, err := sonic.Marshal(Reply{GuestID: guestID, Response: resp})
	if err != nil {
		return err
	}
	return p.write(ctx, p.replies, kafka.Message{Key: []byte(guestID), Value: value, Time: time.Now()})
}

// NotifyHandoff writes the ticket to the handoff topic.
func (p *Publisher) NotifyHandoff(ctx context.Context, ticket core.HandoffTicket) error {
	value, err := sonic.Marshal(ticket)
	if err != nil {
		return err
	}
	return p.write(ctx, p.handoffs, kafka.Message{Key: []byte(ticket.GuestID), Value: value, Time: time.Now()})
}

// write retries transient failures with a linear backoff.
func (p *Publisher) write(ctx context.Context, w MessageWriter, msg kafka.Message) error {
	var writeErr error
	for attempt := 0; attempt <= maxWriteRetries; attempt++ {
		writeErr = w.WriteMessages(ctx, msg)
		if writeErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		backoff := time.Duration(attempt+1) * p.backoff
		logger.Warn().
			Err(writeErr).
			Int("attempt", attempt+1).
			Str("key", string(msg.Key)).
			Dur("backoff", backoff).
			Msg("kafka write failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return writeErr
}

func (p *Publisher) Close() error {
	err := p.replies.Close()
	if herr := p.handoffs.Close(); err == nil {
		err = herr
	}
	return err
}

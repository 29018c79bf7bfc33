package main

import (
	"context"
	"flag"

	"github.com/bytedance/sonic"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
	"github.com/segmentio/kafka-go"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "kafka broker address")
	topic := flag.String("topic", "guest-messages", "inbound guest message topic")
	guestID := flag.String("guest_id", "guest-A", "guest id")
	message := flag.String("message", "This is terrible, I need help with my room immediately", "message text")
	flag.Parse()

	w := &kafka.Writer{
		Addr:     kafka.TCP(*brokers),
		Topic:    *topic,
		Balancer: &kafka.Hash{},
	}

	value, err := sonic.Marshal(core.ProcessMessageInput{
		Message: *message,
		GuestProfile: &core.GuestProfile{
			ID:                    *guestID,
			PersonalityPreference: "empathetic",
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to encode message")
	}

	err = w.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(*guestID),
			Value: value,
		},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to write messages")
	}

	if err := w.Close(); err != nil {
		logger.Fatal().Err(err).Msg("failed to close writer")
	}
	logger.Info().Str("guest_id", *guestID).Msg("Message sent")
}

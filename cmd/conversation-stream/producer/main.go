package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/grpcserver"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "gRPC server address")
	guestID := flag.String("guest_id", "", "guest id (optional)")
	name := flag.String("name", "", "guest first name")
	personality := flag.String("personality", "professional", "preferred concierge personality")
	flag.Parse()

	if *guestID == "" {
		*guestID = fmt.Sprintf("guest-%d", time.Now().UnixNano())
	}

	logger.Info().Str("addr", *addr).Msg("Connecting to gRPC server")

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect")
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stream, err := grpcserver.NewClient(conn).Converse(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open stream")
	}

	profile := &core.GuestProfile{
		ID:                    *guestID,
		FirstName:             *name,
		PersonalityPreference: *personality,
	}

	fmt.Printf("Chatting as %s. Type a message and press ENTER; Ctrl+D to finish.\n", *guestID)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if err := stream.Send(core.ProcessMessageInput{Message: text, GuestProfile: profile}); err != nil {
			logger.Fatal().Err(err).Msg("failed to send message")
		}
		resp, err := stream.Recv()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to receive reply")
		}

		fmt.Printf("concierge [%s]: %s\n", resp.ServiceCategory, resp.Message)
		for _, q := range resp.FollowUpQuestions {
			fmt.Printf("  - %s\n", q)
		}
		if resp.RequiresHuman {
			fmt.Println("  (a staff member has been notified)")
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Fatal().Err(err).Msg("stdin error")
	}

	if err := stream.CloseSend(); err != nil {
		logger.Fatal().Err(err).Msg("failed to close stream")
	}
	if _, err := stream.Recv(); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn().Err(err).Msg("stream ended with error")
	}
}

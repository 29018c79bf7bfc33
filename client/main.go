package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
)

// Interactive websocket client for /ws/concierge.
func main() {
	host := flag.String("host", "localhost:8080", "concierge HTTP host")
	guestID := flag.String("guest_id", "", "guest id (optional)")
	name := flag.String("name", "", "guest first name")
	personality := flag.String("personality", "friendly", "preferred concierge personality")
	flag.Parse()

	if *guestID == "" {
		*guestID = fmt.Sprintf("guest-%d", time.Now().UnixNano())
	}

	u := url.URL{Scheme: "ws", Host: *host, Path: "/ws/concierge"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Fatal().Err(err).Str("url", u.String()).Msg("Could not connect")
	}
	defer conn.Close()

	profile := &core.GuestProfile{
		ID:                    *guestID,
		FirstName:             *name,
		PersonalityPreference: *personality,
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		frame, err := sonic.Marshal(core.ProcessMessageInput{Message: text, GuestProfile: profile})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to encode message")
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			logger.Fatal().Err(err).Msg("failed to send message")
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to read reply")
		}

		var resp core.ConciergeResponse
		if err := sonic.Unmarshal(data, &resp); err != nil || resp.Message == "" {
			fmt.Printf("error: %s\n", data)
			continue
		}
		fmt.Printf("concierge: %s\n", resp.Message)
		if resp.EmotionDetected != nil {
			fmt.Printf("  emotion: %s (%s)\n", resp.EmotionDetected.Emotion, resp.EmotionDetected.Intensity)
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

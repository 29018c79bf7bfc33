package main

import (
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kaphack/guest-concierge-pipeline/internal/config"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/engine"
	"github.com/kaphack/guest-concierge-pipeline/internal/grpcserver"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
	"github.com/kaphack/guest-concierge-pipeline/internal/memory"
	"github.com/kaphack/guest-concierge-pipeline/internal/workers"
	"google.golang.org/grpc"
)

// A standalone gRPC concierge with in-memory history and no backends.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	addr := flag.String("addr", cfg.GRPC.Addr, "listen address")
	flag.Parse()

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", *addr).Msg("failed to listen")
	}

	pool := workers.NewWorkerPool(cfg.Workers.Count, cfg.Workers.QueueSize)
	defer pool.Stop()

	seed := time.Now().UnixNano()
	eng := engine.NewEngine(memory.NewStore(),
		engine.WithDispatcher(pool),
		engine.WithEmotionSource(core.MediaAudio, core.NewAudioSource(seed)),
		engine.WithEmotionSource(core.MediaVideo, core.NewVisionSource(seed+1)),
	)

	s := grpc.NewServer()
	grpcserver.RegisterConciergeStreamServer(s, grpcserver.NewConversationServer(eng, pool))

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		s.GracefulStop()
	}()

	logger.Info().Str("addr", *addr).Msg("gRPC concierge stream running")
	if err := s.Serve(lis); err != nil {
		logger.Fatal().Err(err).Msg("failed to serve")
	}
}

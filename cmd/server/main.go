package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kaphack/guest-concierge-pipeline/internal/api"
	"github.com/kaphack/guest-concierge-pipeline/internal/config"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/db"
	"github.com/kaphack/guest-concierge-pipeline/internal/engine"
	"github.com/kaphack/guest-concierge-pipeline/internal/grpcserver"
	"github.com/kaphack/guest-concierge-pipeline/internal/httpapi"
	"github.com/kaphack/guest-concierge-pipeline/internal/kafka"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
	"github.com/kaphack/guest-concierge-pipeline/internal/memory"
	"github.com/kaphack/guest-concierge-pipeline/internal/telemetry"
	"github.com/kaphack/guest-concierge-pipeline/internal/workers"
	"google.golang.org/grpc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := workers.NewWorkerPool(cfg.Workers.Count, cfg.Workers.QueueSize)

	sink := newTelemetrySink(ctx, cfg)

	var (
		notifiers []engine.HandoffNotifier
		tickets   http.HandlerFunc
		repo      *db.Repository
		publisher *kafka.Publisher
	)

	if cfg.DB.Enabled {
		repo, err = db.NewRepository(ctx, cfg.DB.DSN())
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize database")
		}
		notifiers = append(notifiers, repo)
		tickets = api.NewHandler(repo).ListTickets
	}

	if cfg.Kafka.Enabled {
		publisher = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.ReplyTopic, cfg.Kafka.HandoffTopic)
		notifiers = append(notifiers, publisher)
	}

	seed := cfg.Media.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	eng := engine.NewEngine(memory.NewStore(),
		engine.WithTelemetry(sink),
		engine.WithDispatcher(pool),
		engine.WithHandoffNotifiers(notifiers...),
		engine.WithEmotionSource(core.MediaAudio, core.NewAudioSource(seed)),
		engine.WithEmotionSource(core.MediaVideo, core.NewVisionSource(seed+1)),
	)

	router := httpapi.NewRouter(httpapi.Dependencies{
		Engine:         eng,
		Telemetry:      sink,
		Dispatcher:     pool,
		Handoffs:       tickets,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTP.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPC.Enabled {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.GRPC.Addr).Msg("failed to listen")
		}
		grpcServer = grpc.NewServer()
		grpcserver.RegisterConciergeStreamServer(grpcServer, grpcserver.NewConversationServer(eng, pool))

		go func() {
			logger.Info().Str("addr", cfg.GRPC.Addr).Msg("gRPC concierge stream running")
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error().Err(err).Msg("gRPC server error")
			}
		}()
	}

	var consumer *kafka.Consumer
	consumerDone := make(chan struct{})
	if cfg.Kafka.Enabled {
		reader := kafka.NewReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
		consumer = kafka.NewConsumer(reader, eng, pool, publisher)
		go func() {
			defer close(consumerDone)
			if err := consumer.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("Consumer error")
			}
		}()
	} else {
		close(consumerDone)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server shutdown error")
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	cancel()
	<-consumerDone
	pool.Stop()

	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close kafka consumer")
		}
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close kafka publisher")
		}
	}
	if repo != nil {
		if err := repo.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}
	if closer, ok := sink.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	logger.Info().Msg("Shutdown complete")
}

// newTelemetrySink prefers Redis and falls back to memory when Redis is
// unset or unreachable.
func newTelemetrySink(ctx context.Context, cfg *config.Config) telemetry.Sink {
	if !cfg.Telemetry.Enabled {
		return telemetry.Nop{}
	}
	if cfg.Redis.URL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		sink, err := telemetry.NewRedisSink(pingCtx, cfg.Redis.URL, cfg.Telemetry.KeyPrefix, cfg.Telemetry.MaxEvents)
		if err == nil {
			logger.Info().Msg("telemetry stored in redis")
			return sink
		}
		logger.Warn().Err(err).Msg("redis unavailable, keeping telemetry in memory")
	}
	return telemetry.NewMemorySink(cfg.Telemetry.MaxEvents)
}

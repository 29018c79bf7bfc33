package main

import (
	"time"

	"github.com/kaphack/guest-concierge-pipeline/internal/config"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/engine"
	"github.com/kaphack/guest-concierge-pipeline/internal/httpapi"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
	"github.com/kaphack/guest-concierge-pipeline/internal/memory"
	"github.com/kaphack/guest-concierge-pipeline/internal/telemetry"
)

// REST and websocket only, with in-memory history and telemetry.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := logger.Init(cfg.Log); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	sink := telemetry.NewMemorySink(cfg.Telemetry.MaxEvents)
	seed := cfg.Media.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	eng := engine.NewEngine(memory.NewStore(),
		engine.WithTelemetry(sink),
		engine.WithEmotionSource(core.MediaAudio, core.NewAudioSource(seed)),
		engine.WithEmotionSource(core.MediaVideo, core.NewVisionSource(seed+1)),
	)

	r := httpapi.NewRouter(httpapi.Dependencies{
		Engine:         eng,
		Telemetry:      sink,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	logger.Info().Str("port", cfg.HTTP.Port).Msg("REST API running")
	if err := r.Run(":" + cfg.HTTP.Port); err != nil {
		logger.Fatal().Err(err).Msg("failed to run http server")
	}
}

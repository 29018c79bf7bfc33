package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/engine"
	"github.com/kaphack/guest-concierge-pipeline/internal/telemetry"
)

// Dependencies are the collaborators the REST and websocket surface needs.
type Dependencies struct {
	Engine         *engine.Engine
	Telemetry      telemetry.Sink
	Dispatcher     engine.Dispatcher
	Handoffs       http.HandlerFunc
	AllowedOrigins []string
}

type API struct {
	engine     *engine.Engine
	telemetry  telemetry.Sink
	dispatcher engine.Dispatcher
	origins    []string
}

func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.Nop{}
	}
	api := &API{
		engine:     deps.Engine,
		telemetry:  deps.Telemetry,
		dispatcher: deps.Dispatcher,
		origins:    deps.AllowedOrigins,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(loggingMiddleware())
	r.Use(corsMiddleware(deps.AllowedOrigins))
	r.Use(api.telemetryMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		concierge := v1.Group("/concierge")
		concierge.POST("/chat", api.Chat)
		concierge.POST("/chat/voice", api.mediaChat(core.MediaAudio))
		concierge.POST("/chat/video", api.mediaChat(core.MediaVideo))
		concierge.GET("/conversation/history", api.History)
		concierge.DELETE("/conversation/clear", api.ClearHistory)
		concierge.GET("/personalities", api.Personalities)
		concierge.GET("/service-types", api.ServiceTypes)
		concierge.GET("/status", api.Status)

		emotion := v1.Group("/emotion")
		emotion.POST("/detect/text", api.DetectText)
		emotion.POST("/detect/audio", api.detectMedia(core.MediaAudio))
		emotion.POST("/detect/video", api.detectMedia(core.MediaVideo))
		emotion.GET("/emotions", api.Emotions)
		emotion.GET("/intensities", api.Intensities)
		emotion.GET("/status", api.EmotionStatus)

		v1.GET("/telemetry/metrics", api.Metrics)
	}

	handoffs := deps.Handoffs
	if handoffs == nil {
		handoffs = func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Handoff storage is disabled"}` + "\n"))
		}
	}
	r.GET("/api/handoffs", gin.WrapF(handoffs))

	r.GET("/ws/concierge", api.ConciergeWebSocket)

	return r
}

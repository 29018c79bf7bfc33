package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/engine"
	apperrors "github.com/kaphack/guest-concierge-pipeline/internal/errors"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
	"github.com/kaphack/guest-concierge-pipeline/internal/memory"
)

// maxUploadBytes bounds voice and video uploads.
const maxUploadBytes = 32 << 20

// statusClientClosedRequest is the nginx code for a client that went away.
const statusClientClosedRequest = 499

type DetectTextRequest struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

func (a *API) Chat(c *gin.Context) {
	var in core.ProcessMessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, apperrors.NewValidationError("invalid request body", err))
		return
	}

	resp, err := a.engine.ProcessMessage(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "response": resp})
}

func (a *API) mediaChat(kind core.MediaKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := readUpload(c)
		if err != nil {
			respondError(c, err)
			return
		}

		var profile *core.GuestProfile
		if raw := c.PostForm("guest_profile"); raw != "" {
			profile = &core.GuestProfile{}
			if err := sonic.UnmarshalString(raw, profile); err != nil {
				respondError(c, apperrors.NewValidationError("invalid guest_profile", err))
				return
			}
		}

		var hints map[string]any
		if raw := c.PostForm("context_hints"); raw != "" {
			if err := sonic.UnmarshalString(raw, &hints); err != nil {
				respondError(c, apperrors.NewValidationError("invalid context_hints", err))
				return
			}
		}

		resp, err := a.engine.ProcessMedia(c.Request.Context(), kind, payload, profile, hints)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "response": resp})
	}
}

func (a *API) History(c *gin.Context) {
	guestID := c.Query("guest_id")
	if guestID == "" {
		respondError(c, apperrors.NewValidationError("guest_id is required", nil))
		return
	}

	limit := engine.DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, apperrors.NewValidationError("limit must be a positive integer", err))
			return
		}
		limit = n
	}

	history, total := a.engine.History(guestID, limit)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"guest_id": guestID,
		"history":  history,
		"total":    total,
	})
}

func (a *API) ClearHistory(c *gin.Context) {
	guestID := c.Query("guest_id")
	if guestID == "" {
		respondError(c, apperrors.NewValidationError("guest_id is required", nil))
		return
	}
	a.engine.ClearHistory(guestID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Conversation history cleared for guest %s", guestID),
	})
}

func (a *API) Personalities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "personalities": core.Personalities})
}

func (a *API) ServiceTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "service_types": core.ServiceCategories})
}

func (a *API) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"status":           "operational",
		"active_guests":    a.engine.ActiveGuests(),
		"memory_capacity":  memory.Capacity,
		"personalities":    len(core.Personalities),
		"service_types":    len(core.ServiceCategories),
		"emotion_analysis": true,
	})
}

func (a *API) DetectText(c *gin.Context) {
	var req DetectTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidationError("invalid request body", err))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(c, apperrors.NewValidationError("text is required", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "emotion": a.engine.DetectText(req.Text, req.Context)})
}

func (a *API) detectMedia(kind core.MediaKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := readUpload(c)
		if err != nil {
			respondError(c, err)
			return
		}
		result, err := a.engine.DetectMedia(c.Request.Context(), kind, payload)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "emotion": result})
	}
}

func (a *API) Emotions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "emotions": core.Emotions})
}

func (a *API) Intensities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "intensities": core.Intensities})
}

func (a *API) EmotionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"status":         "operational",
		"text_analysis":  true,
		"audio_analysis": a.engine.SupportsMedia(core.MediaAudio),
		"video_analysis": a.engine.SupportsMedia(core.MediaVideo),
		"emotions":       len(core.Emotions),
	})
}

func (a *API) Metrics(c *gin.Context) {
	metrics, err := a.telemetry.Metrics(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.NewUnavailableError("telemetry backend unavailable", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "metrics": metrics})
}

func readUpload(c *gin.Context) ([]byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.NewValidationError("file is required", err)
	}
	if header.Size > maxUploadBytes {
		return nil, apperrors.NewValidationError("file is too large", nil)
	}
	f, err := header.Open()
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return nil, apperrors.NewProcessingError("failed to read upload", err)
	}
	return data, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	code := "PROCESSING_ERROR"
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
	case status == statusClientClosedRequest:
		code = "CLIENT_CLOSED"
	case status == http.StatusGatewayTimeout:
		code = "TIMEOUT"
	}
	switch {
	case status == statusClientClosedRequest || status == http.StatusGatewayTimeout:
		logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("request abandoned")
	case status >= http.StatusInternalServerError:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}

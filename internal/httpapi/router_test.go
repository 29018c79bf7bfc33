package httpapi

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/engine"
	"github.com/kaphack/guest-concierge-pipeline/internal/memory"
	"github.com/kaphack/guest-concierge-pipeline/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type chatEnvelope struct {
	Success  bool                    `json:"success"`
	Response *core.ConciergeResponse `json:"response"`
	Error    string                  `json:"error"`
	Code     string                  `json:"code"`
}

func newTestRouter(t *testing.T, handoffs http.HandlerFunc) (*gin.Engine, *telemetry.MemorySink) {
	t.Helper()
	sink := telemetry.NewMemorySink(100)
	fixed := core.NewEmotionResult(core.EmotionJoy, 0.75, time.Now())
	eng := engine.NewEngine(memory.NewStore(),
		engine.WithTelemetry(sink),
		engine.WithEmotionSource(core.MediaAudio, core.FixedSource{Result: fixed}),
		engine.WithEmotionSource(core.MediaVideo, core.FixedSource{Result: fixed}),
	)
	return NewRouter(Dependencies{Engine: eng, Telemetry: sink, Handoffs: handoffs}), sink
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func multipartRequest(t *testing.T, path string, fields map[string]string, withFile bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if withFile {
		fw, err := mw.CreateFormFile("file", "clip.wav")
		require.NoError(t, err)
		_, err = fw.Write([]byte("RIFF....WAVE"))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(t, r, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestChat(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/concierge/chat",
		`{"message":"I am so stressed about tomorrow's meeting","guestProfile":{"id":"G1","firstName":"Ana","personalityPreference":"calm"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env chatEnvelope
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.NotNil(t, env.Response)
	assert.Equal(t, core.ServiceGeneral, env.Response.ServiceCategory)
	assert.Equal(t, core.EmotionStress, env.Response.EmotionDetected.Emotion)
	assert.Contains(t, env.Response.Message, "Hello Ana.")
}

func TestChatValidation(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for _, body := range []string{`{"message":"hi"}`, `{"message":"hi","guestProfile":{"id":""}}`, `not json`} {
		w := doJSON(t, r, http.MethodPost, "/api/v1/concierge/chat", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)

		var env chatEnvelope
		require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &env))
		assert.False(t, env.Success)
		assert.Equal(t, "VALIDATION_ERROR", env.Code)
	}
}

func TestHistoryAndClear(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	for i := 0; i < 3; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/v1/concierge/chat", `{"message":"hello","guestProfile":{"id":"G7"}}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/concierge/conversation/history?guest_id=G7&limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var hist struct {
		History []core.ConversationTurn `json:"history"`
		Total   int                     `json:"total"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &hist))
	assert.Len(t, hist.History, 2)
	assert.Equal(t, 3, hist.Total)

	w = doJSON(t, r, http.MethodGet, "/api/v1/concierge/conversation/history", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/v1/concierge/conversation/history?guest_id=G7&limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/concierge/conversation/clear?guest_id=G7", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/concierge/conversation/history?guest_id=G7", "")
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &hist))
	assert.Empty(t, hist.History)
	assert.Zero(t, hist.Total)
}

func TestCatalogEndpoints(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(t, r, http.MethodGet, "/api/v1/concierge/personalities", "")
	assert.Contains(t, w.Body.String(), `"conversational"`)

	w = doJSON(t, r, http.MethodGet, "/api/v1/concierge/service-types", "")
	assert.Contains(t, w.Body.String(), `"room_service"`)

	w = doJSON(t, r, http.MethodGet, "/api/v1/emotion/emotions", "")
	assert.Contains(t, w.Body.String(), `"frustration"`)

	w = doJSON(t, r, http.MethodGet, "/api/v1/emotion/intensities", "")
	assert.Contains(t, w.Body.String(), `"very_high"`)

	w = doJSON(t, r, http.MethodGet, "/api/v1/emotion/status", "")
	assert.Contains(t, w.Body.String(), `"audio_analysis":true`)

	w = doJSON(t, r, http.MethodGet, "/api/v1/concierge/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"memory_capacity":20`)
}

func TestDetectText(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/emotion/detect/text", `{"text":"I am worried","context":"spa"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Emotion core.EmotionResult `json:"emotion"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, core.EmotionFear, body.Emotion.Emotion)
	assert.Equal(t, "spa", body.Emotion.Context)

	w = doJSON(t, r, http.MethodPost, "/api/v1/emotion/detect/text", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoiceChat(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := multipartRequest(t, "/api/v1/concierge/chat/voice", map[string]string{
		"guest_profile": `{"id":"G9","personalityPreference":"enthusiastic"}`,
	}, true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env chatEnvelope
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, core.ServiceRoomService, env.Response.ServiceCategory)
	assert.Equal(t, core.EmotionJoy, env.Response.EmotionDetected.Emotion)
	assert.Equal(t, core.IntensityHigh, env.Response.EmotionDetected.Intensity)
}

func TestVoiceChatRequiresFile(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := multipartRequest(t, "/api/v1/concierge/chat/voice", map[string]string{"guest_profile": `{"id":"G9"}`}, false)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetectVideo(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := multipartRequest(t, "/api/v1/emotion/detect/video", nil, true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"joy"`)
}

func TestMetricsCountRequests(t *testing.T) {
	r, sink := newTestRouter(t, nil)
	doJSON(t, r, http.MethodGet, "/health", "")
	doJSON(t, r, http.MethodGet, "/api/v1/concierge/conversation/history", "")

	w := doJSON(t, r, http.MethodGet, "/api/v1/telemetry/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	m, err := sink.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.Counters["event_api_request"])
	assert.Equal(t, int64(1), m.Counters["status_4xx"])
	assert.Contains(t, w.Body.String(), `"event_api_request":2`)
}

func TestHandoffsDisabled(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(t, r, http.MethodGet, "/api/handoffs", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandoffsMounted(t *testing.T) {
	called := false
	r, _ := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	w := doJSON(t, r, http.MethodGet, "/api/handoffs?guest_id=G1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := doJSON(t, r, http.MethodOptions, "/api/v1/concierge/chat", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestConciergeWebSocket(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/concierge"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"message":"I need a massage","guestProfile":{"id":"G5"}}`)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var resp core.ConciergeResponse
	require.NoError(t, sonic.Unmarshal(data, &resp))
	assert.Equal(t, core.ServiceWellness, resp.ServiceCategory)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"no guest"}`)))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"error"`)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`garbage`)))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "invalid message")
}

func TestChatClientGone(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := `{"message":"Where can I eat?","guestProfile":{"id":"G1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/concierge/chat", strings.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, statusClientClosedRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"CLIENT_CLOSED"`)

	history := doJSON(t, r, http.MethodGet, "/api/v1/concierge/conversation/history?guest_id=G1", "")
	assert.Contains(t, history.Body.String(), `"total":0`)
}

func TestStatusForContextErrors(t *testing.T) {
	assert.Equal(t, statusClientClosedRequest, statusFor(context.Canceled))
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
}

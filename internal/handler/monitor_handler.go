package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/katalis-id/psikotes-backend/internal/config"
	"github.com/katalis-id/psikotes-backend/internal/response"
	"github.com/katalis-id/psikotes-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	refreshInterval   = 15 * time.Second
	keepAliveInterval = 30 * time.Second
)

// MonitorHandler streams live session progress to admins over SSE. Progress
// events arrive through the session's Redis Pub/Sub channel; a periodic
// refresh re-sends the full aggregate as a consistency backstop.
type MonitorHandler struct {
	rdb            *redis.Client
	attemptService *service.AttemptService
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, attemptService *service.AttemptService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		rdb:            rdb,
		attemptService: attemptService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorSessionSSE godoc
// GET /api/v1/admin/sessions/:session_id/monitor
func (h *MonitorHandler) MonitorSessionSSE(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	if !h.sendSnapshot(c, sessionID) {
		return
	}

	channelName := config.CacheKey.AttemptProgressChannel(sessionID.String())
	pubsub := h.rdb.Subscribe(reqCtx, channelName)
	defer pubsub.Close()

	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	for {
		select {
		case <-reqCtx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.sendEvent(c, "progress", json.RawMessage(msg.Payload))
		case <-refreshTicker.C:
			if !h.sendSnapshot(c, sessionID) {
				return
			}
		case <-keepAliveTicker.C:
			c.Writer.Write([]byte(": keepalive\n\n"))
			c.Writer.Flush()
		}
	}
}

// sendSnapshot writes the full aggregate view as one SSE event. Returns
// false when the session is gone or the write failed.
func (h *MonitorHandler) sendSnapshot(c *gin.Context, sessionID uuid.UUID) bool {
	rows, err := h.attemptService.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("snapshot failed")
		return false
	}
	payload, err := json.Marshal(gin.H{"attempts": rows})
	if err != nil {
		return false
	}
	h.sendEvent(c, "snapshot", payload)
	return true
}

func (h *MonitorHandler) sendEvent(c *gin.Context, event string, payload []byte) {
	c.Writer.Write([]byte("event: " + event + "\n"))
	c.Writer.Write([]byte("data: "))
	c.Writer.Write(payload)
	c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/katalis-id/psikotes-backend/internal/middleware"
	"github.com/katalis-id/psikotes-backend/internal/model"
	"github.com/katalis-id/psikotes-backend/internal/service"
	ws "github.com/katalis-id/psikotes-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles the live attempt WebSocket stream: inbound auto-save
// drafts, outbound progress snapshots.
type WSHandler struct {
	attemptService *service.AttemptService
	answerService  *service.AnswerService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, answerService *service.AnswerService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		answerService:  answerService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/attempts/:attempt_id/stream
// Upgrades to WebSocket for draft auto-save and live progress.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attempt ID"})
		return
	}

	userID := claims.UserID

	// Ownership and liveness are checked before the upgrade so a stale
	// connection never opens.
	attempt, err := h.attemptService.Get(c.Request.Context(), attemptID, userID, false)
	if err != nil {
		failFromError(c, err)
		return
	}
	if attempt.Status.IsTerminal() {
		c.JSON(http.StatusConflict, gin.H{"error": "attempt is not active"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("user_id", userID).
		Str("attempt_id", attemptID.String()).
		Logger()

	wsLog.Info().Msg("Participant connected")

	for {
		var raw json.RawMessage
		if err := ws.ReadJSON(conn, &raw); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		var envelope struct {
			Action ws.Action `json:"action"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			ws.WriteError(conn, "malformed message")
			continue
		}

		switch envelope.Action {
		case ws.ActionAutosave:
			h.handleAutosave(conn, wsLog, userID, attemptID, raw)
		case ws.ActionProgress:
			h.handleProgress(conn, userID, attemptID)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(envelope.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(envelope.Action))
		}
	}
}

// handleAutosave queues one draft through the same path as the HTTP
// auto-save endpoint.
func (h *WSHandler) handleAutosave(conn *websocket.Conn, wsLog zerolog.Logger, userID int, attemptID uuid.UUID, raw json.RawMessage) {
	ctx := context.Background()

	var msg ws.AutosaveRequest
	if err := json.Unmarshal(raw, &msg); err != nil {
		ws.WriteError(conn, "malformed autosave payload")
		return
	}

	questionID, err := uuid.Parse(msg.QuestionID)
	if err != nil {
		ws.WriteError(conn, "invalid question_id format")
		return
	}

	req := model.SubmitAnswerRequest{
		QuestionID:       questionID,
		Answer:           msg.Answer,
		AnswerData:       msg.AnswerData,
		IsDraft:          true,
		ConfidenceLevel:  msg.ConfidenceLevel,
		TimeTakenSeconds: msg.TimeTakenSeconds,
	}
	if err := h.answerService.EnqueueDraft(ctx, userID, attemptID, req); err != nil {
		wsLog.Error().Err(err).Msg("Autosave enqueue error")
		ws.WriteError(conn, "save failed")
		return
	}

	ws.WriteTyped(conn, ws.AutosaveResponse{Event: ws.EventSuccess, Status: "queued"})
}

func (h *WSHandler) handleProgress(conn *websocket.Conn, userID int, attemptID uuid.UUID) {
	progress, err := h.attemptService.Progress(context.Background(), attemptID, userID, false)
	if err != nil {
		ws.WriteError(conn, "progress unavailable")
		return
	}
	ws.WriteTyped(conn, ws.ProgressResponse{Event: ws.EventProgress, Progress: progress})
}

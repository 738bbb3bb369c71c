package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/courseloom/courseloom-backend/internal/middleware"
	"github.com/courseloom/courseloom-backend/internal/model"
	"github.com/courseloom/courseloom-backend/internal/service"
	ws "github.com/courseloom/courseloom-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty slice permits all origins (development mode).
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

// WSHandler streams a live attempt over WebSocket: autosave without HTTP
// round-trips plus on-demand state refreshes for the countdown clock.
type WSHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/student/attempts/:attempt_id/stream
// Upgrades to WebSocket for real-time autosave and attempt state.
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

	// Ownership and liveness check before upgrading.
	state, err := h.attemptService.GetState(c.Request.Context(), attemptID, claims.UserID)
	if err != nil || state.Status != model.AttemptStatusInProgress {
		c.JSON(http.StatusForbidden, gin.H{"error": "no active attempt"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("student_id", claims.UserID.String()).
		Str("attempt_id", attemptID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	for {
		var msg ws.Request
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionAutosave:
			h.handleAutosave(conn, attemptID, claims.UserID, &msg)
		case ws.ActionState:
			h.handleState(conn, attemptID, claims.UserID)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

// handleAutosave stores a single draft answer through the same path as the
// HTTP endpoint.
func (h *WSHandler) handleAutosave(conn *websocket.Conn, attemptID, studentID uuid.UUID, msg *ws.Request) {
	if msg.QID == "" {
		ws.WriteError(conn, "q_id is required")
		return
	}

	questionID, err := uuid.Parse(msg.QID)
	if err != nil {
		ws.WriteError(conn, "invalid q_id format")
		return
	}

	req := &model.AutosaveAnswerRequest{QuestionID: questionID, Value: msg.Answer}
	if err := h.attemptService.Autosave(context.Background(), attemptID, studentID, req); err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotActive):
			ws.WriteError(conn, "attempt is no longer in progress")
		case errors.Is(err, service.ErrNotAttemptOwner):
			ws.WriteError(conn, "forbidden")
		default:
			h.log.Error().Err(err).Str("attempt_id", attemptID.String()).Msg("Autosave error")
			ws.WriteError(conn, "save failed")
		}
		return
	}

	ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSuccess, Status: "saved"})
}

// handleState sends the current draft answers and remaining clock.
func (h *WSHandler) handleState(conn *websocket.Conn, attemptID, studentID uuid.UUID) {
	state, err := h.attemptService.GetState(context.Background(), attemptID, studentID)
	if err != nil {
		ws.WriteError(conn, "state unavailable")
		return
	}
	ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, State: state})
}

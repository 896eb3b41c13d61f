package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/prepdeck/intervue-backend/internal/middleware"
	"github.com/prepdeck/intervue-backend/internal/service"
	"github.com/prepdeck/intervue-backend/internal/session"
	ws "github.com/prepdeck/intervue-backend/internal/websocket"
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

// WSHandler streams a live interview session over WebSocket.
type WSHandler struct {
	interviews *service.InterviewService
	evaluator  *service.Evaluator
	log        zerolog.Logger
	upgrader   websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(interviews *service.InterviewService, evaluator *service.Evaluator, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		interviews: interviews,
		evaluator:  evaluator,
		log:        log.With().Str("component", "ws_handler").Logger(),
		upgrader:   buildUpgrader(allowedOrigins),
	}
}

// InterviewStream godoc
// WS /ws/v1/interviews/:interview_id/stream
// Upgrades to WebSocket and bridges the client to its session controller.
// Disconnecting does not end the session; the controller keeps running
// and a reconnect rebinds to it.
func (h *WSHandler) InterviewStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	interviewID, err := uuid.Parse(c.Param("interview_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interview ID"})
		return
	}

	ls, err := h.interviews.Attach(c.Request.Context(), claims.UserID, interviewID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrInterviewNotFound):
			status = http.StatusNotFound
		case errors.Is(err, service.ErrNotOwner):
			status = http.StatusForbidden
		case errors.Is(err, service.ErrInterviewNotActive):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("interview_id", interviewID.String()).
		Logger()

	bridge := newSessionBridge(conn, wsLog)
	defer bridge.close()

	ls.Emitter.SetTarget(bridge)
	ls.Activator.SetTarget(bridge)
	defer ls.Emitter.SetTarget(nil)
	defer ls.Activator.SetTarget(nil)

	// Initial snapshot so a reconnecting client can restore its UI.
	bridge.send(wrapState(ls.Controller.State()))

	wsLog.Info().Msg("Candidate connected")
	h.readLoop(conn, wsLog, bridge, ls.Controller)
	wsLog.Info().Msg("Candidate disconnected")
}

func (h *WSHandler) readLoop(conn *websocket.Conn, wsLog zerolog.Logger, bridge *sessionBridge, ctrl *session.Controller) {
	ctx := context.Background()

	for {
		var msg ws.ClientMessage
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionMediaGranted:
			handleSessionErr(bridge, ctrl.AcquireMedia(ctx, session.ResolvedGateway{Handle: bridge}))
		case ws.ActionMediaDenied:
			reason := msg.Reason
			if reason == "" {
				reason = "permission denied"
			}
			handleSessionErr(bridge, ctrl.AcquireMedia(ctx, session.ResolvedGateway{Err: errors.New(reason)}))
		case ws.ActionStart:
			handleSessionErr(bridge, ctrl.Start())
		case ws.ActionDraft:
			ctrl.Touch(msg.Text)
		case ws.ActionSubmit:
			// Submission failures surface as notice events from the
			// controller; only phase misuse is reported here.
			index := ctrl.CurrentIndex()
			err := ctrl.SubmitManual(ctx)
			var pe *session.PhaseError
			if errors.As(err, &pe) {
				bridge.send(ws.ErrorMessage{Event: ws.EventError, Error: pe.Error()})
				continue
			}
			if err == nil {
				h.sendEvaluation(bridge, ctrl, index)
			}
		case ws.ActionEnd:
			handleSessionErr(bridge, ctrl.End(ctx))
		case ws.ActionBack:
			ctrl.BackIntent()
		case ws.ActionStay:
			ctrl.Stay()
		case ws.ActionLeave:
			handleSessionErr(bridge, ctrl.ConfirmLeave())
		case ws.ActionBlur:
			ctrl.RecordBlur()
		case ws.ActionHidden:
			ctrl.RecordHidden()
		case ws.ActionPaste:
			ctrl.RecordPasteBlocked()
		case ws.ActionPing:
			bridge.send(ws.PongMessage{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			bridge.send(ws.ErrorMessage{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)})
		}
	}
}

// sendEvaluation sends instant heuristic feedback for a just-submitted
// answer.
func (h *WSHandler) sendEvaluation(bridge *sessionBridge, ctrl *session.Controller, index int) {
	state := ctrl.State()
	if index < 0 || index >= len(state.Slots) {
		return
	}
	slot := state.Slots[index]
	if !slot.Submitted {
		return
	}
	score, feedback := h.evaluator.Score(slot.QuestionText, slot.FinalText)
	bridge.send(ws.EvaluationMessage{
		Event:    ws.EventEvaluated,
		Index:    index,
		Score:    score,
		Feedback: feedback,
	})
}

// handleSessionErr reports recoverable session errors back to the client.
func handleSessionErr(bridge *sessionBridge, err error) {
	if err == nil {
		return
	}
	var denied *session.MediaAccessDeniedError
	if errors.As(err, &denied) {
		bridge.send(ws.NoticeMessage{Event: ws.EventNotice, Code: "media-denied", Message: denied.Error()})
		return
	}
	bridge.send(ws.ErrorMessage{Event: ws.EventError, Error: err.Error()})
}

// ─── Bridge ─────────────────────────────────────────────────────────────

// sendBufferSize bounds the outbound queue; a stalled client drops
// events rather than blocking the session heartbeat.
const sendBufferSize = 64

// sessionBridge adapts one WebSocket connection to the session engine's
// collaborator interfaces: Emitter (events out), Activator (navigation
// guard commands) and MediaHandle (remote track teardown). Emit is called
// under the controller lock, so all writes go through a buffered channel
// drained by a single writer goroutine.
type sessionBridge struct {
	conn *websocket.Conn
	out  chan interface{}
	done chan struct{}
	log  zerolog.Logger
}

func newSessionBridge(conn *websocket.Conn, log zerolog.Logger) *sessionBridge {
	b := &sessionBridge{
		conn: conn,
		out:  make(chan interface{}, sendBufferSize),
		done: make(chan struct{}),
		log:  log,
	}
	go b.writeLoop()
	return b
}

func (b *sessionBridge) writeLoop() {
	for {
		select {
		case <-b.done:
			return
		case msg := <-b.out:
			if err := ws.WriteTyped(b.conn, msg); err != nil {
				b.log.Debug().Err(err).Msg("Write failed")
			}
		}
	}
}

func (b *sessionBridge) send(msg interface{}) {
	select {
	case b.out <- msg:
	default:
		b.log.Warn().Msg("Send buffer full, dropping event")
	}
}

func (b *sessionBridge) close() {
	close(b.done)
}

// Emit implements session.Emitter.
func (b *sessionBridge) Emit(ev session.Event) {
	switch ev.Type {
	case session.EventPhase:
		b.send(ws.PhaseMessage{Event: ws.EventPhase, Phase: string(ev.Phase)})
	case session.EventQuestion:
		b.send(ws.QuestionMessage{
			Event: ws.EventQuestion,
			Index: ev.Index,
			Question: ws.QuestionPayload{
				ID:           ev.Question.ID.String(),
				QuestionText: ev.Question.QuestionText,
				TimeLimitSec: ev.Question.EffectiveTimeLimit(),
			},
			Remaining: ev.Remaining,
		})
	case session.EventCountdown:
		b.send(ws.CountdownMessage{Event: ws.EventCountdown, Index: ev.Index, Remaining: ev.Remaining})
	case session.EventSaved:
		b.send(ws.SavedMessage{Event: ws.EventSaved, Index: ev.Index})
	case session.EventSubmitted:
		b.send(ws.SubmittedMessage{Event: ws.EventSubmitted, Index: ev.Index, Cause: string(ev.Cause)})
	case session.EventNotice:
		b.send(ws.NoticeMessage{Event: ws.EventNotice, Code: ev.Code, Message: ev.Message, Index: ev.Index})
	case session.EventModal:
		b.send(ws.ModalMessage{Event: ws.EventModal, Message: ev.Message})
	case session.EventEnded:
		b.send(ws.EndedMessage{Event: ws.EventEnded, Completed: ev.Bundle != nil})
	}
}

// Attach implements session.Activator.
func (b *sessionBridge) Attach() {
	b.send(ws.GuardMessage{Event: ws.EventGuard, Attached: true})
}

// Detach implements session.Activator.
func (b *sessionBridge) Detach() {
	b.send(ws.GuardMessage{Event: ws.EventGuard, Attached: false})
}

// StopTracks implements session.MediaHandle: the stream lives in the
// browser, so teardown is a command to the client.
func (b *sessionBridge) StopTracks() {
	b.send(ws.MediaMessage{Event: ws.EventMedia, Op: "stop"})
}

// stateMessage wraps a session snapshot for the wire.
type stateMessage struct {
	Event ws.Event          `json:"event"`
	State session.StateView `json:"state"`
}

func wrapState(state session.StateView) stateMessage {
	return stateMessage{Event: ws.EventState, State: state}
}

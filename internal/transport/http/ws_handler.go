package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-runner-service/internal/app"
	"quiz-runner-service/internal/domain"
)

// WSHandler drives one participant's quiz attempt over a websocket. Each
// connection owns exactly one engine session, so the engine never sees
// concurrent callers.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type answerPayload struct {
	OptionIndex int `json:"optionIndex"`
}

type joinedPayload struct {
	SessionID   string `json:"sessionId"`
	SessionName string `json:"sessionName"`
	Total       int    `json:"total"`
}

type questionPayload struct {
	Index    int              `json:"index"`
	Total    int              `json:"total"`
	Prompt   string           `json:"prompt"`
	Options  []string         `json:"options"`
	Media    *domain.MediaRef `json:"media,omitempty"`
	Selected *int             `json:"selected,omitempty"`
}

type selectedPayload struct {
	Index       int `json:"index"`
	OptionIndex int `json:"optionIndex"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs the participant flow: join, then an
// answer/advance loop until the session finishes and the result is written.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()

	// First message must be the join with participant identity.
	var inbound inboundMessage
	if err := conn.ReadJSON(&inbound); err != nil {
		return
	}
	if inbound.Type != "join" {
		writeError(conn, "expected join message")
		return
	}
	var join joinPayload
	if err := json.Unmarshal(inbound.Payload, &join); err != nil ||
		join.Email == "" || join.FirstName == "" || join.LastName == "" {
		writeError(conn, "join requires firstName, lastName, and email")
		return
	}
	participant := domain.Participant{
		Email:     join.Email,
		FirstName: join.FirstName,
		LastName:  join.LastName,
	}

	info, err := h.service.Join(ctx, sessionID, participant)
	if err != nil {
		writeError(conn, err.Error())
		return
	}

	session, err := h.service.StartQuiz(ctx, info.ContentID)
	if err != nil {
		// Abort entirely: a partially loaded catalog is never presented.
		slog.Warn("quiz start failed", "sessionId", sessionID, "contentId", info.ContentID, "error", err)
		writeError(conn, "quiz content unavailable")
		return
	}
	slog.Info("participant started quiz",
		"sessionId", sessionID, "contentId", info.ContentID, "email", participant.Email, "questions", session.Len())

	_ = conn.WriteJSON(outboundMessage[joinedPayload]{Type: "joined", Payload: joinedPayload{
		SessionID:   info.ID,
		SessionName: info.Name,
		Total:       session.Len(),
	}})
	writeQuestion(conn, session)

	for !session.Finished() {
		inbound = inboundMessage{}
		if err := conn.ReadJSON(&inbound); err != nil {
			// Participant navigated away mid-run: the session is discarded,
			// nothing was persisted.
			return
		}

		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				writeError(conn, "invalid answer payload")
				continue
			}
			index := session.Index()
			if err := session.SelectAnswer(index, payload.OptionIndex); err != nil {
				writeError(conn, err.Error())
				continue
			}
			_ = conn.WriteJSON(outboundMessage[selectedPayload]{Type: "selected", Payload: selectedPayload{
				Index:       index,
				OptionIndex: payload.OptionIndex,
			}})

		case "advance":
			// Answer-before-advance is enforced here, not in the engine, so
			// other callers can choose a different policy.
			if _, answered := session.Answer(session.Index()); !answered {
				writeError(conn, "answer required before advancing")
				continue
			}
			if err := session.Advance(); err != nil {
				writeError(conn, err.Error())
				continue
			}
			if session.Finished() {
				h.finish(ctx, conn, session, participant)
				return
			}
			writeQuestion(conn, session)

		default:
			writeError(conn, "unsupported message type")
		}
	}
}

func (h *WSHandler) finish(ctx context.Context, conn *websocket.Conn, session *app.Session, participant domain.Participant) {
	result, err := h.service.Finish(ctx, session, participant)
	if err != nil {
		if errors.Is(err, domain.ErrPersistenceFailed) {
			slog.Error("result write failed", "contentId", session.ContentID(), "email", participant.Email, "error", err)
		}
		writeError(conn, "could not save your result")
		return
	}
	slog.Info("quiz finished",
		"contentId", session.ContentID(), "email", participant.Email,
		"correct", result.Correct, "wrong", result.Wrong, "score", result.Score)
	_ = conn.WriteJSON(outboundMessage[domain.Result]{Type: "result", Payload: result})
}

func writeQuestion(conn *websocket.Conn, session *app.Session) {
	question := session.Current()
	payload := questionPayload{
		Index:   session.Index(),
		Total:   session.Len(),
		Prompt:  question.Prompt,
		Options: question.Options,
		Media:   question.Media,
	}
	if selected, ok := session.Answer(session.Index()); ok {
		payload.Selected = &selected
	}
	_ = conn.WriteJSON(outboundMessage[questionPayload]{Type: "question", Payload: payload})
}

func writeError(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: message}})
}

package http

import (
	"encoding/json"
	"log"
	"net/http"

	"acadtutor/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  QuizAPI
	upgrader websocket.Upgrader
}

func NewWSHandler(service QuizAPI) *WSHandler {
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

type answerPayload struct {
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer"`
}

type answerRecorded struct {
	QuestionID int `json:"questionId"`
	Answered   int `json:"answered"`
	Total      int `json:"total"`
}

type historyPayload struct {
	Limit int `json:"limit"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and drives one user's quiz over the connection.
// The connection tracks the session it started; a new "start" replaces it.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(64 << 10)

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})

	// single writer: gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				conn.Close()
				for range send {
				}
				return
			}
		}
	}()

	var sessionID string
	ctx := r.Context()
	fail := func(err error) {
		_, msg := classify(err)
		send <- outboundMessage{Type: "error", Payload: errorPayload{Message: msg}}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var cfg domain.QuizConfig
			if err := json.Unmarshal(inbound.Payload, &cfg); err != nil {
				send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid start payload"}}
				continue
			}
			session, err := h.service.StartQuiz(ctx, userID, cfg)
			if err != nil {
				fail(err)
				continue
			}
			sessionID = session.ID
			send <- outboundMessage{Type: "quiz", Payload: session}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			session, err := h.service.SelectAnswer(ctx, sessionID, payload.QuestionID, payload.Answer)
			if err != nil {
				fail(err)
				continue
			}
			send <- outboundMessage{Type: "answerRecorded", Payload: answerRecorded{
				QuestionID: payload.QuestionID,
				Answered:   len(session.Answers),
				Total:      len(session.Quiz.Questions),
			}}
		case "submit":
			var payload submitRequest
			if len(inbound.Payload) > 0 {
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}}
					continue
				}
			}
			assessment, err := h.service.Submit(ctx, sessionID, payload.Answers)
			if err != nil {
				fail(err)
				continue
			}
			sessionID = ""
			send <- outboundMessage{Type: "assessment", Payload: assessment}
		case "history":
			var payload historyPayload
			if len(inbound.Payload) > 0 {
				_ = json.Unmarshal(inbound.Payload, &payload)
			}
			send <- outboundMessage{Type: "history", Payload: h.service.GetHistory(ctx, userID, payload.Limit)}
		case "stats":
			send <- outboundMessage{Type: "stats", Payload: h.service.GetStats(ctx, userID)}
		default:
			send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(send)
	<-writerDone
}

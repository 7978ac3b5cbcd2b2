package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/shinjunhee/portfolio-chatbot/web/internal/logger"
	chatService "github.com/shinjunhee/portfolio-chatbot/web/internal/service/chat"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
	maxFrameSize = 16 << 10
)

// Handler WebSocket 채팅 처리기
type Handler struct {
	pages    *chatService.Service
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// New WebSocket 처리기를 만든다. origins lists the allowed browser origins; "*" allows any.
func New(pages *chatService.Service, origins []string) *Handler {
	return &Handler{
		pages: pages,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(origins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: logger.Component("websocket"),
	}
}

// RegisterRoutes WebSocket 라우트를 등록한다
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/pages/{pageID}/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SubmitMessage 사용자 입력
type SubmitMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 연결 하나를 처리한다
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	page, err := h.pages.Get(r.Context(), pageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatService.ErrPageNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("page", pageID).Msg("upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.With().Str("page", pageID).Logger()
	log.Debug().Msg("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	replies := make(chan outgoingMessage, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(ctx, conn, page, replies, log)
		// unblock the reader
		conn.Close()
	}()

	h.readLoop(ctx, conn, page, replies, log)
	cancel()
	<-writerDone
	log.Debug().Msg("websocket disconnected")
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, page *chatService.Page, replies chan<- outgoingMessage, log zerolog.Logger) {
	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("read error")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		var reply *outgoingMessage
		switch msg.Type {
		case "submit":
			var submit SubmitMessage
			if err := json.Unmarshal(msg.Data, &submit); err != nil {
				reply = errorMessage("invalid submit payload")
				break
			}
			page.Submit(submit.Text)
		default:
			reply = errorMessage("unsupported message type: " + msg.Type)
		}

		if reply != nil {
			select {
			case replies <- *reply:
			case <-ctx.Done():
				return
			}
		}
	}
}

// writeLoop owns every write on conn.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, page *chatService.Page, replies <-chan outgoingMessage, log zerolog.Logger) {
	changes, unsubscribe := page.Subscribe()
	defer unsubscribe()

	state, cursor := page.Follow()
	if err := writeJSON(conn, outgoingMessage{Type: "snapshot", Data: state, Timestamp: time.Now().Unix()}); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-page.Done():
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "page closed"),
				time.Now().Add(writeTimeout))
			return
		case msg := <-replies:
			if err := writeJSON(conn, msg); err != nil {
				log.Warn().Err(err).Msg("write failed")
				return
			}
		case <-changes:
			u := cursor.Next()
			now := time.Now().Unix()
			for _, m := range u.Messages {
				if err := writeJSON(conn, outgoingMessage{Type: "message", Data: m, Timestamp: now}); err != nil {
					return
				}
			}
			if u.BusyChanged {
				if err := writeJSON(conn, outgoingMessage{Type: "busy", Data: map[string]bool{"busy": u.Busy}, Timestamp: now}); err != nil {
					return
				}
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, msg outgoingMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}

func errorMessage(message string) *outgoingMessage {
	return &outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
}

// originChecker accepts requests without an Origin header, same-host requests and the listed origins.
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	allowAll := false
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

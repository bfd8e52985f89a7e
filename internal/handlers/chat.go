package handlers

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"delta/internal/history"
	"delta/internal/models"
	"delta/internal/router"
	"delta/internal/speech"
)

const (
	readDeadline  = 120 * time.Second
	pingInterval  = 30 * time.Second
	writeDeadline = 10 * time.Second
	replayLines   = 20
)

// ChatHandler drives the WebSocket chat transcript. Every connection
// subscribes to the shared broadcast sink, so spoken output appears in the
// chat no matter what triggered it (a routed command, a firing alarm, or a
// wake-word reply), and a busy flag keeps two routings from running at once
// on one connection.
type ChatHandler struct {
	assistant *router.Assistant
	broadcast *speech.BroadcastSink
	listener  *speech.Listener
	history   *history.Store
}

// NewChatHandler creates a chat handler. listener and store may be nil when
// microphone capture or transcript persistence is not configured.
func NewChatHandler(assistant *router.Assistant, broadcast *speech.BroadcastSink, listener *speech.Listener, store *history.Store) *ChatHandler {
	return &ChatHandler{
		assistant: assistant,
		broadcast: broadcast,
		listener:  listener,
		history:   store,
	}
}

type chatConn struct {
	id        string
	conn      *websocket.Conn
	writeChan chan models.ServerMessage
	busy      atomic.Bool
}

// Handle runs the read loop for one WebSocket connection
func (h *ChatHandler) Handle(c *websocket.Conn) {
	cc := &chatConn{
		id:        uuid.New().String(),
		conn:      c,
		writeChan: make(chan models.ServerMessage, 100),
	}

	// Mirror every emission, including alarms and wake-word replies, into
	// this connection's transcript for as long as it is open.
	if h.broadcast != nil {
		h.broadcast.Subscribe(cc.id, func(text string) {
			h.push(cc, "delta", text, time.Now())
		})
		defer h.broadcast.Unsubscribe(cc.id)
	}

	done := make(chan struct{})
	defer close(done)

	go h.writeLoop(cc, done)
	go h.pingLoop(cc, done)

	c.SetReadDeadline(time.Now().Add(readDeadline))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	log.Printf("💬 [CHAT] Connection %s opened", cc.id)
	cc.writeChan <- models.ServerMessage{
		Type:    "connected",
		Content: "Connected. Type a command or press listen.",
	}
	h.replay(cc)

	h.readLoop(cc)
	log.Printf("💬 [CHAT] Connection %s closed", cc.id)
}

func (h *ChatHandler) readLoop(cc *chatConn) {
	for {
		_, msg, err := cc.conn.ReadMessage()
		if err != nil {
			return
		}
		cc.conn.SetReadDeadline(time.Now().Add(readDeadline))

		var clientMsg models.ClientMessage
		if err := json.Unmarshal(msg, &clientMsg); err != nil {
			log.Printf("⚠️  [CHAT] Invalid message from %s: %v", cc.id, err)
			cc.writeChan <- models.ServerMessage{Type: "error", Content: "Invalid message format"}
			continue
		}

		switch clientMsg.Type {
		case "ping":
			cc.writeChan <- models.ServerMessage{Type: "pong"}
		case "utterance":
			h.dispatch(cc, models.NewUtterance(clientMsg.Content, models.OriginTyped))
		case "listen":
			h.listenOnce(cc)
		default:
			log.Printf("⚠️  [CHAT] Unknown message type %q from %s", clientMsg.Type, cc.id)
		}
	}
}

// dispatch routes one utterance on its own goroutine. The busy flag rejects
// a second routing while the first is still running.
func (h *ChatHandler) dispatch(cc *chatConn, utt models.Utterance) {
	if !cc.busy.CompareAndSwap(false, true) {
		cc.writeChan <- models.ServerMessage{Type: "busy", Content: "Still working on the last command."}
		return
	}

	go func() {
		defer cc.busy.Store(false)

		if utt.Text != "" {
			h.record(cc, "you", utt.Text)
		}
		resp := h.assistant.Route(context.Background(), utt)
		if resp.Intent == models.IntentExit {
			cc.writeChan <- models.ServerMessage{Type: "exit", Content: resp.Text}
		}
	}()
}

// listenOnce captures one spoken phrase and routes it
func (h *ChatHandler) listenOnce(cc *chatConn) {
	if h.listener == nil || !h.listener.Configured() {
		cc.writeChan <- models.ServerMessage{Type: "error", Content: "Speech recognition is not configured."}
		return
	}
	if !cc.busy.CompareAndSwap(false, true) {
		cc.writeChan <- models.ServerMessage{Type: "busy", Content: "Still working on the last command."}
		return
	}

	go func() {
		defer cc.busy.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		text := h.listener.Listen(ctx, 6*time.Second, 8*time.Second)
		if text != "" {
			h.record(cc, "you", text)
		}
		h.assistant.Route(context.Background(), models.NewUtterance(text, models.OriginSpeech))
	}()
}

// record mirrors a user line to the client and the history store. Assistant
// lines arrive through the broadcast subscription instead.
func (h *ChatHandler) record(cc *chatConn, speaker, text string) {
	h.push(cc, speaker, text, time.Now())

	if h.history != nil {
		if err := h.history.Append(speaker, text); err != nil {
			log.Printf("⚠️  [CHAT] Failed to persist transcript line: %v", err)
		}
	}
}

// push queues one transcript line for the client without blocking
func (h *ChatHandler) push(cc *chatConn, speaker, text string, at time.Time) {
	select {
	case cc.writeChan <- models.ServerMessage{
		Type:      "transcript",
		Speaker:   speaker,
		Content:   text,
		Timestamp: at.Format(time.RFC3339),
	}:
	default:
		log.Printf("⚠️  [CHAT] Write queue full for %s, dropping transcript line", cc.id)
	}
}

// replay sends the tail of the persisted transcript to a fresh connection
func (h *ChatHandler) replay(cc *chatConn) {
	if h.history == nil {
		return
	}
	entries, err := h.history.Recent(replayLines)
	if err != nil {
		log.Printf("⚠️  [CHAT] Failed to load transcript history: %v", err)
		return
	}
	for _, e := range entries {
		cc.writeChan <- models.ServerMessage{
			Type:      "transcript",
			Speaker:   e.Speaker,
			Content:   e.Content,
			Timestamp: e.CreatedAt.Format(time.RFC3339),
		}
	}
}

func (h *ChatHandler) writeLoop(cc *chatConn, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-cc.writeChan:
			cc.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := cc.conn.WriteJSON(msg); err != nil {
				log.Printf("⚠️  [CHAT] Write failed for %s: %v", cc.id, err)
				return
			}
		}
	}
}

func (h *ChatHandler) pingLoop(cc *chatConn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := cc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

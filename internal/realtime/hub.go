package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/igaue-takahiko/food-delivery-app/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64

	// AddUserEvent binds the sending session to a participant id.
	AddUserEvent = "add-user"
	// ConnectedEvent is sent once after the upgrade with the session id.
	ConnectedEvent = "connected"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionBusy     = errors.New("session send buffer full")
)

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type addUserData struct {
	UserID string `json:"userId"`
}

// Hub owns the open websocket sessions and keeps the Registry in sync with
// connects and disconnects.
type Hub struct {
	upgrader websocket.Upgrader
	registry *Registry
	log      *zap.Logger
	metrics  *metrics.Metrics

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub accepts upgrades from allowedOrigin; "*" accepts any origin.
func NewHub(registry *Registry, allowedOrigin string, log *zap.Logger, m *metrics.Metrics) *Hub {
	h := &Hub{
		registry: registry,
		log:      log,
		metrics:  m,
		sessions: make(map[string]*session),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowedOrigin == "" || allowedOrigin == "*" || origin == "" || origin == allowedOrigin
		},
	}
	return h
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

// ServeHTTP upgrades the request and starts the session pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &session{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	h.metrics.SessionOpened()
	h.log.Info("websocket connected", zap.String("session_id", s.id), zap.Int("total", h.Len()))

	if hello, err := json.Marshal(Frame{Event: ConnectedEvent, Data: map[string]string{"sessionId": s.id}}); err == nil {
		s.send <- hello
	}

	go s.writePump()
	go s.readPump()
}

// Send queues a frame for one session without blocking.
func (h *Hub) Send(sessionID string, frame []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	select {
	case s.send <- frame:
		return nil
	default:
		return ErrSessionBusy
	}
}

// Broadcast queues a frame for every session and returns how many accepted it.
// Sessions with a full buffer miss the frame.
func (h *Hub) Broadcast(frame []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, s := range h.sessions {
		select {
		case s.send <- frame:
			n++
		default:
			h.log.Debug("dropping broadcast for slow session", zap.String("session_id", s.id))
		}
	}
	return n
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close disconnects every session.
func (h *Hub) Close() {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.sessions))
	for _, s := range h.sessions {
		conns = append(conns, s.conn)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.Close()
	}
}

func (h *Hub) remove(s *session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s.id)
	// Senders hold the read lock, so nobody can be writing to s.send here.
	close(s.send)
	h.mu.Unlock()

	h.registry.Unregister(s.id)
	h.metrics.SessionClosed()
	h.log.Info("websocket disconnected", zap.String("session_id", s.id), zap.Int("total", h.Len()))
}

func (h *Hub) handle(s *session, msg []byte) {
	var in inboundFrame
	if err := json.Unmarshal(msg, &in); err != nil {
		h.log.Debug("ignoring malformed frame", zap.String("session_id", s.id), zap.Error(err))
		return
	}

	switch in.Event {
	case AddUserEvent:
		var data addUserData
		if err := json.Unmarshal(in.Data, &data); err != nil || data.UserID == "" {
			h.log.Debug("add-user without userId", zap.String("session_id", s.id))
			return
		}
		h.registry.Register(data.UserID, s.id)
		h.log.Info("participant registered", zap.String("participant_id", data.UserID), zap.String("session_id", s.id))
	default:
		h.log.Debug("ignoring unknown event", zap.String("event", in.Event), zap.String("session_id", s.id))
	}
}

func (s *session) readPump() {
	defer func() {
		s.hub.remove(s)
		s.conn.Close()
	}()
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.log.Warn("websocket closed unexpectedly", zap.String("session_id", s.id), zap.Error(err))
			}
			return
		}
		s.hub.handle(s, msg)
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

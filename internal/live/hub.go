package live

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Zachkp/portfolio/internal/counter"
)

const (
	maxMessageSize = 64 << 10
	writeWait      = 10 * time.Second
)

// Hub upgrades page views to websocket sessions and tears them all down on
// shutdown.
type Hub struct {
	opts     Options
	clock    *counter.Counter
	recorder SectionRecorder

	upgrader       websocket.Upgrader
	allowedOrigins map[string]bool

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewHub creates a hub. With no allowed origins only same-host pages may
// connect.
func NewHub(clock *counter.Counter, recorder SectionRecorder, opts Options, allowedOrigins []string) *Hub {
	h := &Hub{
		opts:           opts,
		clock:          clock,
		recorder:       recorder,
		allowedOrigins: make(map[string]bool),
		sessions:       make(map[string]*Session),
	}
	for _, origin := range allowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			h.allowedOrigins[trimmed] = true
		}
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if h.allowedOrigins[origin] {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// Open starts a session without a connection. ServeWS uses it; tests and
// other transports may too.
func (h *Hub) Open(hashedIP string) *Session {
	s := newSession(uuid.NewString(), hashedIP, h.opts, h.clock, h.recorder)
	s.onClose = func() {
		h.mu.Lock()
		delete(h.sessions, s.ID)
		h.mu.Unlock()
	}

	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
	return s
}

// Count returns the number of open sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close tears down every open session.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// ServeWS upgrades the request and runs the session until the client goes
// away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, hashedIP string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	s := h.Open(hashedIP)
	log.Printf("Live session %s connected", s.ID)

	go writePump(conn, s.Outbox())

	defer func() {
		s.Close()
		log.Printf("Live session %s disconnected", s.ID)
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := s.Handle(data); err != nil {
			log.Printf("live session %s: %v", s.ID, err)
		}
	}
}

func writePump(conn *websocket.Conn, outbox <-chan []byte) {
	defer conn.Close()
	for msg := range outbox {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

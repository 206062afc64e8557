// Package live runs one visibility tracker per connected page view. The
// browser reports section rectangles and scroll position over a websocket;
// the session answers with tracker state and counter ticks.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Zachkp/portfolio/internal/counter"
	"github.com/Zachkp/portfolio/internal/visibility"
)

const (
	MsgLayout = "layout"
	MsgScroll = "scroll"

	MsgState   = "state"
	MsgCounter = "counter"
)

// Inbound is a message from the browser.
type Inbound struct {
	Type     string           `json:"type"`
	Viewport *visibility.Rect `json:"viewport,omitempty"`
	Regions  []RegionRect     `json:"regions,omitempty"`
}

// RegionRect is a section rectangle in document coordinates.
type RegionRect struct {
	Key  string          `json:"key"`
	Rect visibility.Rect `json:"rect"`
}

// Outbound is a message to the browser.
type Outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type CounterPayload struct {
	Seconds   int64  `json:"seconds"`
	Formatted string `json:"formatted"`
}

// SectionRecorder stores the first time a page view sees a section.
type SectionRecorder interface {
	RecordSectionView(ctx context.Context, sessionID, hashedIP, section string) error
}

// Options configure every session of a hub.
type Options struct {
	Sections     []string
	Default      string
	Threshold    float64
	StartupDelay time.Duration
	// SendBuffer is the outbound queue length before a client counts as slow.
	SendBuffer int
}

// Session is one page view.
type Session struct {
	ID       string
	hashedIP string

	geometry *visibility.Geometry
	tracker  *visibility.Tracker
	recorder SectionRecorder

	keys map[string]bool

	mu     sync.Mutex
	rects  map[string]visibility.Rect
	send   chan []byte
	closed bool

	stopCounter func()
	closeOnce   sync.Once
	onClose     func()
}

func newSession(id, hashedIP string, opts Options, clock *counter.Counter, recorder SectionRecorder) *Session {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}

	s := &Session{
		ID:       id,
		hashedIP: hashedIP,
		geometry: visibility.NewGeometry(),
		recorder: recorder,
		keys:     make(map[string]bool, len(opts.Sections)),
		rects:    make(map[string]visibility.Rect, len(opts.Sections)),
		send:     make(chan []byte, opts.SendBuffer),
	}
	s.tracker = visibility.NewTracker(s.geometry, visibility.Config{
		Default:   opts.Default,
		Threshold: opts.Threshold,
	})

	for _, key := range opts.Sections {
		key := key
		s.keys[key] = true
		// Sections are unique by config validation; a duplicate is skipped.
		if err := s.tracker.Register(key, visibility.RectFunc(func() visibility.Rect {
			return s.rect(key)
		})); err != nil {
			log.Printf("live session %s: %v", id, err)
		}
	}

	s.tracker.OnChange(func(st visibility.State) { s.emit(MsgState, st) })
	s.tracker.OnSeen(s.recordSeen)

	s.emit(MsgState, s.tracker.State())
	if clock != nil {
		s.emitCounter(clock.Value())
		s.stopCounter = clock.Subscribe(s.emitCounter)
	}
	s.tracker.ArmAfter(opts.StartupDelay)
	return s
}

// Tracker exposes the session's tracker.
func (s *Session) Tracker() *visibility.Tracker { return s.tracker }

// Outbox is drained by the connection's write pump. It is closed by Close.
func (s *Session) Outbox() <-chan []byte { return s.send }

func (s *Session) rect(key string) visibility.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rects[key]
}

// Handle applies one inbound message.
func (s *Session) Handle(data []byte) error {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	switch msg.Type {
	case MsgLayout:
		s.mu.Lock()
		for _, r := range msg.Regions {
			if !s.keys[r.Key] {
				continue
			}
			s.rects[r.Key] = r.Rect
		}
		s.mu.Unlock()
		s.apply(msg.Viewport)
	case MsgScroll:
		if msg.Viewport == nil {
			return fmt.Errorf("scroll message without viewport")
		}
		s.apply(msg.Viewport)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (s *Session) apply(vp *visibility.Rect) {
	if vp != nil {
		s.geometry.Update(*vp)
		return
	}
	s.geometry.Refresh()
}

func (s *Session) recordSeen(section string) {
	if s.recorder == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.recorder.RecordSectionView(ctx, s.ID, s.hashedIP, section); err != nil {
			log.Printf("Error recording section view: %v", err)
		}
	}()
}

func (s *Session) emitCounter(v int64) {
	s.emit(MsgCounter, CounterPayload{Seconds: v, Formatted: counter.Format(v)})
}

func (s *Session) emit(typ string, payload any) {
	data, err := json.Marshal(Outbound{Type: typ, Payload: payload})
	if err != nil {
		log.Printf("live marshal error: %v", err)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	select {
	case s.send <- data:
		s.mu.Unlock()
	default:
		s.mu.Unlock()
		log.Printf("live client %s too slow, disconnecting", s.ID)
		go s.Close()
	}
}

// Close tears down the tracker and the counter subscription and closes the
// outbox. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.tracker.UnregisterAll()
		if s.stopCounter != nil {
			s.stopCounter()
		}

		s.mu.Lock()
		s.closed = true
		close(s.send)
		s.mu.Unlock()

		if s.onClose != nil {
			s.onClose()
		}
	})
}

package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
)

// Message is one server-sent event.
type Message struct {
	Type domain.EventType
	Data []byte
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Message]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan Message]struct{}),
		logger:      logging.NewNop(),
	}
}

// SetLogger replaces the logger used for dropped messages.
func (sm *StreamManager) SetLogger(logger *slog.Logger) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.logger = logger
}

// Subscribe registers a buffered channel for sessionID. The returned cancel
// function unregisters and closes it; it is safe to call more than once.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan Message]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of sessionID without blocking.
func (sm *StreamManager) Broadcast(sessionID string, msg Message) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Close ends every stream of sessionID.
func (sm *StreamManager) Close(sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for ch := range sm.subscribers[sessionID] {
		close(ch)
	}
	delete(sm.subscribers, sessionID)
}

// CloseAll ends every stream, for example on server shutdown.
func (sm *StreamManager) CloseAll() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for id, subs := range sm.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(sm.subscribers, id)
	}
}

// Hooks returns lifecycle hooks that publish a session's events to its
// subscribers. Pass them to the controller created for sessionID.
func (sm *StreamManager) Hooks(sessionID string) domain.LifecycleHooks {
	publish := func(t domain.EventType, e any) {
		data, err := json.Marshal(e)
		if err != nil {
			return
		}
		sm.Broadcast(sessionID, Message{Type: t, Data: data})
	}
	return domain.LifecycleHooks{
		OnNodeEnter:    func(e *domain.NodeEvent) { publish(e.Type, e) },
		OnNodeLeave:    func(e *domain.NodeEvent) { publish(e.Type, e) },
		OnSubState:     func(e *domain.SubStateEvent) { publish(e.Type, e) },
		OnAutoDispatch: func(e *domain.NodeEvent) { publish(e.Type, e) },
		OnFlowExit:     func(e *domain.ExitEvent) { publish(e.Type, e) },
	}
}

// SubscribeEvents handles the GET /sessions/{id}/events request (SSE).
// The optional watch query parameter lists the event types to forward.
func (s *Server[M]) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if _, err := s.Sessions.Get(r.Context(), sessionID); err != nil {
		s.writeError(w, "SubscribeEvents", err)
		return
	}

	var watch map[domain.EventType]bool
	if raw := r.URL.Query().Get("watch"); raw != "" {
		watch = make(map[domain.EventType]bool)
		for _, t := range strings.Split(raw, ",") {
			watch[domain.EventType(strings.TrimSpace(t))] = true
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE: subscribed", "session_id", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if watch != nil && !watch[msg.Type] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, msg.Data)
			flusher.Flush()
		}
	}
}

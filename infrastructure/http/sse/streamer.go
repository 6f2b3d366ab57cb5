package sse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetlog/fleetlog/application/port/outbound"
	"github.com/fleetlog/fleetlog/infrastructure/http/response"
)

const (
	DefaultHeartbeat = 15 * time.Second
	clientBuffer     = 64
	broadcastBuffer  = 256
)

var ErrBroadcastFull = errors.New("broadcast channel is full")

var heartbeatFrame = []byte(": ping\n\n")

// Streamer pushes change request events to connected Server-Sent Events clients.
// It is a notification sink: events handed to Notify are broadcast to every client.
type Streamer struct {
	mu        sync.RWMutex
	clients   map[string]*client
	broadcast chan []byte
	heartbeat time.Duration
}

type client struct {
	id     string
	frames chan []byte
}

var _ outbound.NotificationSink = (*Streamer)(nil)

func NewStreamer(heartbeat time.Duration) *Streamer {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Streamer{
		clients:   make(map[string]*client),
		broadcast: make(chan []byte, broadcastBuffer),
		heartbeat: heartbeat,
	}
}

// Start runs the broadcast loop until ctx is cancelled, then disconnects all clients
func (s *Streamer) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.closeAll()
				return
			case frame := <-s.broadcast:
				s.fanOut(frame)
			case <-ticker.C:
				s.fanOut(heartbeatFrame)
			}
		}
	}()
}

func (s *Streamer) Notify(_ context.Context, event outbound.ChangeRequestEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	frame := fmt.Appendf(nil, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Type, data)

	select {
	case s.broadcast <- frame:
		return nil
	default:
		return ErrBroadcastFull
	}
}

func (s *Streamer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// ServeHTTP holds the connection open and writes events until the client goes away
func (s *Streamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming unsupported")
		return
	}
	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	c := s.addClient()
	defer s.removeClient(c.id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, ": connected %s\n\n", c.id); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, open := <-c.frames:
			if !open {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Streamer) addClient() *client {
	c := &client{id: uuid.NewString(), frames: make(chan []byte, clientBuffer)}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	return c
}

func (s *Streamer) removeClient(id string) {
	s.mu.Lock()
	if c, ok := s.clients[id]; ok {
		delete(s.clients, id)
		close(c.frames)
	}
	s.mu.Unlock()
}

// fanOut drops clients whose buffer is full
func (s *Streamer) fanOut(frame []byte) {
	var slow []string

	s.mu.RLock()
	for id, c := range s.clients {
		select {
		case c.frames <- frame:
		default:
			slow = append(slow, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range slow {
		s.removeClient(id)
	}
}

func (s *Streamer) closeAll() {
	s.mu.Lock()
	for id, c := range s.clients {
		delete(s.clients, id)
		close(c.frames)
	}
	s.mu.Unlock()
}

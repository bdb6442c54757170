// Package preview implements a TCP live-preview sink: a newline-delimited
// JSON stream of per-iteration progress events, so a viewer can connect
// mid-render and follow it. Events carry no image data. Grounded on the channel-based event stream in
// pkg/renderer/progressive.go (PassResult/TileCompletionResult sent over
// <-chan), adapted from an in-process Go-channel protocol to an
// over-the-wire one.
package preview

import (
	"bufio"
	"encoding/json"
	"net"
	"sync"

	"github.com/google/uuid"
)

// Event is one line of the preview protocol.
type Event struct {
	RunID       string  `json:"run_id"`
	Iteration   uint64  `json:"iteration"`
	Kind        string  `json:"kind"` // "iteration_start" | "iteration_end" | "error"
	Message     string  `json:"message,omitempty"`
	ElapsedSecs float64 `json:"elapsed_secs,omitempty"`
}

// Sink accepts TCP connections and fans every published Event out to all
// currently connected viewers, skipping events for a viewer that falls
// behind rather than blocking the render loop on a slow network peer.
type Sink struct {
	runID    uuid.UUID
	listener net.Listener

	mu      sync.Mutex
	clients map[net.Conn]chan Event
}

// NewSink starts listening on addr (e.g. ":9091") and returns a Sink whose
// Publish method can be called from the render loop without blocking on
// network I/O.
func NewSink(addr string) (*Sink, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Sink{
		runID:    uuid.New(),
		listener: ln,
		clients:  make(map[net.Conn]chan Event),
	}
	go s.acceptLoop()
	return s, nil
}

func (s *Sink) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		ch := make(chan Event, 64)
		s.mu.Lock()
		s.clients[conn] = ch
		s.mu.Unlock()
		go s.serveClient(conn, ch)
	}
}

func (s *Sink) serveClient(conn net.Conn, ch chan Event) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	w := bufio.NewWriter(conn)
	enc := json.NewEncoder(w)
	for ev := range ch {
		ev.RunID = s.runID.String()
		if err := enc.Encode(ev); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

// Publish fans an event out to every connected viewer. A viewer whose
// channel is full is skipped for this event rather than blocking the
// caller — live preview is best-effort, never a rendering bottleneck.
func (s *Sink) Publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.clients {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close stops accepting new connections and disconnects every viewer.
func (s *Sink) Close() error {
	s.mu.Lock()
	for conn, ch := range s.clients {
		close(ch)
		conn.Close()
	}
	s.clients = nil
	s.mu.Unlock()
	return s.listener.Close()
}

func (s *Sink) RunID() uuid.UUID { return s.runID }

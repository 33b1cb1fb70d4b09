package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/OCharnyshevich/flightsim/internal/sandbox/world"
)

const (
	sendBuffer   = 256
	writeTimeout = 5 * time.Second
	pingInterval = 20 * time.Second
)

// HeightFunc answers terrain height queries.
type HeightFunc func(x, z float64) float64

// Message is the JSON shape of one chunk event on the wire.
type Message struct {
	Kind      world.EventKind `json:"kind"`
	X         int             `json:"x"`
	Z         int             `json:"z"`
	MinHeight float32         `json:"min_height,omitempty"`
	MaxHeight float32         `json:"max_height,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// HeightResponse is returned by GET /height.
type HeightResponse struct {
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Height float64 `json:"height"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans chunk lifecycle events out to websocket subscribers and serves
// point height queries. Observe never blocks: a subscriber whose buffer is
// full misses the event.
type Hub struct {
	upgrader websocket.Upgrader
	heights  HeightFunc
	log      *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	dropped int
}

// New creates a Hub answering height queries with heights.
func New(heights HeightFunc, log *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		heights: heights,
		log:     log.With("component", "feed"),
		clients: make(map[*client]struct{}),
	}
}

// Handler returns the hub's HTTP routes.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	mux.HandleFunc("/height", h.handleHeight)
	return mux
}

// Observe broadcasts e. It matches world.Observer.
func (h *Hub) Observe(e world.Event) {
	msg := Message{
		Kind:      e.Kind,
		X:         e.Coord.X,
		Z:         e.Coord.Z,
		MinHeight: e.MinHeight,
		MaxHeight: e.MaxHeight,
	}
	if e.Err != nil {
		msg.Error = e.Err.Error()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped++
		}
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many event deliveries were skipped for slow subscribers.
func (h *Hub) Dropped() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Serve listens on addr until ctx is cancelled.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.log.Info("feed listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve feed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.closeClients()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown feed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve feed: %w", err)
	}
	return nil
}

func (h *Hub) closeClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("subscriber connected", "remote", r.RemoteAddr)

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards inbound frames and returns when the peer goes away.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.remove(c)
		h.log.Info("subscriber disconnected", "remote", c.conn.RemoteAddr().String())
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

func (h *Hub) handleHeight(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	z, errZ := strconv.ParseFloat(q.Get("z"), 64)
	if err := errors.Join(errX, errZ); err != nil {
		http.Error(w, fmt.Sprintf("bad coordinates: %v", err), http.StatusBadRequest)
		return
	}
	if !finite(x) || !finite(z) {
		http.Error(w, "bad coordinates: not finite", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(HeightResponse{X: x, Z: z, Height: h.heights(x, z)}); err != nil {
		h.log.Warn("write height response", "error", err)
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

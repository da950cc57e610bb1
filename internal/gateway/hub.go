// Package gateway exposes the monitoring engine over HTTP: a REST surface
// for state, alerts and timeframe control, plus a WebSocket fan-out that
// pushes every state update and accepted alert to connected clients.
package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"trading-monitor/internal/alerts"
	"trading-monitor/internal/metrics"
	"trading-monitor/internal/monitor"
)

// Engine is the slice of the supervisor the gateway needs.
type Engine interface {
	Assets() []string
	StateOf(asset string) (monitor.State, bool)
	States() map[string]monitor.State
	Timeframe() time.Duration
	SwitchTimeframe(tf time.Duration) error
	Store() *alerts.Store
	Subscribe() (<-chan monitor.Event, func())
}

// TimeframeOption is one selectable timeframe, e.g. {"3m", 3 * time.Minute}.
type TimeframeOption struct {
	Label    string
	Duration time.Duration
}

// Hub manages WebSocket clients and fans supervisor events out to them.
type Hub struct {
	engine Engine
	log    zerolog.Logger
	met    *metrics.Metrics

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates a hub bound to the engine.
func NewHub(engine Engine, met *metrics.Metrics, log zerolog.Logger) *Hub {
	return &Hub{
		engine:  engine,
		log:     log.With().Str("comp", "gateway").Logger(),
		met:     met,
		clients: make(map[*Client]bool),
	}
}

// Run subscribes to the engine's event feed and pushes every event to all
// connected clients. Blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	events, cancel := h.engine.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ev, ok := <-events:
			if !ok {
				h.closeAll()
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.log.Error().Err(err).Msg("event marshal failed")
				continue
			}
			h.broadcast(payload)
		}
	}
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.trySend(payload)
	}
}

// AddClient registers a client and starts its pumps.
func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()

	h.met.WSClients.Set(float64(n))
	h.log.Info().Int("clients", n).Msg("ws client connected")

	go c.writePump()
	go c.readPump()
	c.sendInitialState()
}

// RemoveClient unregisters a client and closes its send channel.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.closeSend()
	}
	n := len(h.clients)
	h.mu.Unlock()

	h.met.WSClients.Set(float64(n))
}

// ClientCount returns the number of connected WebSocket clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.closeSend()
	}
}

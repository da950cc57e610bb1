package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trading-monitor/internal/markethours"
	"trading-monitor/internal/metrics"
	"trading-monitor/internal/model"
	"trading-monitor/internal/monitor"
)

func newWSServer(hub *Hub) *httptest.Server {
	mux := http.NewServeMux()
	RegisterRoutes(mux, hub, testTimeframes, markethours.DefaultExchanges, nil, time.Now())
	return httptest.NewServer(mux)
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) monitor.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	// Frames may coalesce several newline-separated events; take the first.
	if i := strings.IndexByte(string(msg), '\n'); i >= 0 {
		msg = msg[:i]
	}
	var ev monitor.Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	return ev
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, got %d", want, hub.ClientCount())
}

func TestHub_PushesEventsToClients(t *testing.T) {
	engine := newFakeEngine()
	hub := NewHub(engine, metrics.NewMetrics(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := newWSServer(hub)
	defer server.Close()

	conn := dialWS(t, server)
	defer conn.Close()

	// The initial state push arrives first.
	ev := readEvent(t, conn)
	if ev.Type != "state" || ev.State == nil || ev.State.Asset != "AAPL" {
		t.Fatalf("unexpected initial event: %+v", ev)
	}

	// A live alert event flows through the hub to the client.
	a := model.NewAlert(model.AlertBuyCall, "AAPL", 1000)
	engine.events <- monitor.Event{Type: "alert", Alert: &a}

	for {
		ev = readEvent(t, conn)
		if ev.Type == "alert" {
			break
		}
	}
	if ev.Alert == nil || ev.Alert.ID != a.ID {
		t.Fatalf("unexpected alert event: %+v", ev)
	}
}

func TestHub_ClientLifecycle(t *testing.T) {
	engine := newFakeEngine()
	hub := NewHub(engine, metrics.NewMetrics(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := newWSServer(hub)
	defer server.Close()

	if hub.ClientCount() != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.ClientCount())
	}

	conn := dialWS(t, server)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

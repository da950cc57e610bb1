package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"trading-monitor/internal/markethours"
	"trading-monitor/internal/model"
)

// AlertHistory serves alerts from the durable journal. Nil when no journal
// is configured.
type AlertHistory interface {
	Recent(ctx context.Context, asset string, limit int) ([]model.AlertEvent, error)
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	SetCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// RegisterRoutes registers all HTTP routes on the provided mux. history may
// be nil; the alert history endpoint then reports the journal as disabled.
func RegisterRoutes(mux *http.ServeMux, hub *Hub, tfOptions []TimeframeOption, exchanges []markethours.Exchange, history AlertHistory, processStart time.Time) {
	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warn().Err(err).Msg("ws upgrade failed")
			return
		}
		hub.AddClient(NewClient(conn, hub))
	})

	// REST: tracked assets
	mux.HandleFunc("/api/assets", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hub.engine.Assets())
	})

	// REST: per-asset state
	mux.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		asset := r.URL.Query().Get("asset")
		if asset == "" {
			writeErr(w, http.StatusBadRequest, "asset query parameter is required")
			return
		}
		st, ok := hub.engine.StateOf(asset)
		if !ok {
			writeErr(w, http.StatusNotFound, "unknown asset: "+asset)
			return
		}
		writeJSON(w, http.StatusOK, st)
	})

	// REST: all states keyed by asset
	mux.HandleFunc("/api/states", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hub.engine.States())
	})

	// REST: alert collection; DELETE with ?id= dismisses one alert
	mux.HandleFunc("/api/alerts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			SetCORS(w)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			id := r.URL.Query().Get("id")
			if id == "" {
				writeErr(w, http.StatusBadRequest, "id query parameter is required")
				return
			}
			if !hub.engine.Store().Dismiss(id) {
				writeErr(w, http.StatusNotFound, "no alert with id "+id)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
		default:
			writeJSON(w, http.StatusOK, hub.engine.Store().Events())
		}
	})

	// REST: journaled alert history for one asset, newest first
	mux.HandleFunc("/api/alerts/history", func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			writeErr(w, http.StatusNotFound, "alert journal is not enabled")
			return
		}
		asset := r.URL.Query().Get("asset")
		if asset == "" {
			writeErr(w, http.StatusBadRequest, "asset query parameter is required")
			return
		}
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeErr(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}
		events, err := history.Recent(r.Context(), asset, limit)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err.Error())
			return
		}
		if events == nil {
			events = []model.AlertEvent{}
		}
		writeJSON(w, http.StatusOK, events)
	})

	// REST: per-kind alert counts for one asset
	mux.HandleFunc("/api/alerts/counts", func(w http.ResponseWriter, r *http.Request) {
		asset := r.URL.Query().Get("asset")
		if asset == "" {
			writeErr(w, http.StatusBadRequest, "asset query parameter is required")
			return
		}
		writeJSON(w, http.StatusOK, hub.engine.Store().Counts(asset))
	})

	// REST: current timeframe (GET) and timeframe switch (POST)
	mux.HandleFunc("/api/timeframe", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			SetCORS(w)
			w.WriteHeader(http.StatusOK)
		case http.MethodPost:
			var req struct {
				Timeframe string `json:"timeframe"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeErr(w, http.StatusBadRequest, "invalid JSON")
				return
			}
			opt, ok := findTimeframe(tfOptions, req.Timeframe)
			if !ok {
				writeErr(w, http.StatusBadRequest, "unknown timeframe: "+req.Timeframe)
				return
			}
			if err := hub.engine.SwitchTimeframe(opt.Duration); err != nil {
				writeErr(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "timeframe": opt.Label})
		default:
			writeJSON(w, http.StatusOK, timeframeView(hub.engine.Timeframe(), tfOptions))
		}
	})

	// REST: exchange market-hours status
	mux.HandleFunc("/api/exchanges", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, markethours.Statuses(exchanges, time.Now()))
	})

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":     "ok",
			"ws_clients": hub.ClientCount(),
			"assets":     len(hub.engine.Assets()),
			"uptime_sec": int64(time.Since(processStart).Seconds()),
			"ts":         time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

func findTimeframe(opts []TimeframeOption, label string) (TimeframeOption, bool) {
	for _, o := range opts {
		if o.Label == label {
			return o, true
		}
	}
	return TimeframeOption{}, false
}

type timeframeResponse struct {
	Current string   `json:"current"`
	Options []string `json:"options"`
}

func timeframeView(cur time.Duration, opts []TimeframeOption) timeframeResponse {
	resp := timeframeResponse{Options: make([]string, len(opts))}
	for i, o := range opts {
		resp.Options[i] = o.Label
		if o.Duration == cur {
			resp.Current = o.Label
		}
	}
	return resp
}

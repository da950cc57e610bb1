// Package notify delivers alerts to human-facing channels. The log
// notifier is always on in development; the webhook notifier posts alert
// JSON to an arbitrary HTTP endpoint.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"trading-monitor/internal/model"
)

// LogNotifier writes each alert to the structured log.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("comp", "notify").Logger()}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Send(_ context.Context, ev model.AlertEvent) error {
	n.log.Info().
		Str("asset", ev.Asset).
		Stringer("kind", ev.Kind).
		Int64("ts", ev.Timestamp).
		Msg(ev.Message)
	return nil
}

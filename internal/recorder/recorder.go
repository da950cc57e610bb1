// Package recorder persists accepted alerts to a durable journal so they
// survive process restarts and can be inspected after the fact.
package recorder

import (
	"context"

	"trading-monitor/internal/model"
)

// Recorder is the journal surface. SQLite is the production backend; Noop
// stands in when no journal path is configured.
type Recorder interface {
	Name() string
	Send(ctx context.Context, ev model.AlertEvent) error
	Close() error
}

// Noop discards everything.
type Noop struct{}

func (Noop) Name() string                                     { return "noop" }
func (Noop) Send(_ context.Context, _ model.AlertEvent) error { return nil }
func (Noop) Close() error                                     { return nil }

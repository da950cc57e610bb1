package recorder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"trading-monitor/internal/model"
)

func newTestJournal(t *testing.T) *SQLite {
	t.Helper()
	r, err := NewSQLite(filepath.Join(t.TempDir(), "alerts.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLite_SendAndRecent(t *testing.T) {
	r := newTestJournal(t)
	ctx := context.Background()

	first := model.NewAlert(model.AlertBuyCall, "AAPL", 1000)
	second := model.NewAlert(model.AlertTargetConfirmBullish, "AAPL", 2000)
	second.Region = &model.BreakRegion{Low: 100, High: 103, Target: 100}
	other := model.NewAlert(model.AlertSellPut, "MSFT", 1500)

	for _, ev := range []model.AlertEvent{first, second, other} {
		if err := r.Send(ctx, ev); err != nil {
			t.Fatalf("Send %s: %v", ev.ID, err)
		}
	}

	got, err := r.Recent(ctx, "AAPL", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 AAPL alerts, got %d", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("expected newest first, got %s then %s", got[0].ID, got[1].ID)
	}
	if got[0].Kind != model.AlertTargetConfirmBullish {
		t.Errorf("expected kind %s, got %s", model.AlertTargetConfirmBullish, got[0].Kind)
	}
	if got[0].Message != second.Message {
		t.Errorf("message mismatch: %q", got[0].Message)
	}
	if got[0].Region == nil || got[0].Region.High != 103 || got[0].Region.Target != 100 {
		t.Errorf("region did not round-trip: %+v", got[0].Region)
	}
	if got[1].Region != nil {
		t.Error("expected no region on a plain alert")
	}
}

func TestSQLite_DuplicateSendIsNoop(t *testing.T) {
	r := newTestJournal(t)
	ctx := context.Background()

	a := model.NewAlert(model.AlertBuyCall, "AAPL", 1000)
	if err := r.Send(ctx, a); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := r.Send(ctx, a); err != nil {
		t.Fatalf("replayed send must succeed silently, got %v", err)
	}

	got, err := r.Recent(ctx, "AAPL", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected a single journaled row, got %d", len(got))
	}
}

func TestSQLite_RecentLimit(t *testing.T) {
	r := newTestJournal(t)
	ctx := context.Background()

	for ts := int64(1); ts <= 5; ts++ {
		if err := r.Send(ctx, model.NewAlert(model.AlertBuyCall, "AAPL", ts*1000)); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	got, err := r.Recent(ctx, "AAPL", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit respected, got %d rows", len(got))
	}
	if got[0].Timestamp != 5000 || got[1].Timestamp != 4000 {
		t.Errorf("expected the two newest rows, got ts %d and %d", got[0].Timestamp, got[1].Timestamp)
	}
}

package markethours

import (
	"testing"
	"time"
)

func TestStatusAt(t *testing.T) {
	nyse := Exchange{Name: "NYSE", Timezone: "America/New_York", OpenHour: 9, CloseHour: 16}

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone database unavailable")
	}

	open := time.Date(2026, 3, 10, 11, 30, 0, 0, loc)
	status, err := StatusAt(nyse, open)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusOpen {
		t.Errorf("11:30 local: expected OPEN, got %s", status)
	}

	closed := time.Date(2026, 3, 10, 20, 0, 0, 0, loc)
	if status, _ = StatusAt(nyse, closed); status != StatusClosed {
		t.Errorf("20:00 local: expected CLOSED, got %s", status)
	}

	// Open boundary is inclusive, close boundary exclusive.
	if status, _ = StatusAt(nyse, time.Date(2026, 3, 10, 9, 0, 0, 0, loc)); status != StatusOpen {
		t.Errorf("09:00 local: expected OPEN, got %s", status)
	}
	if status, _ = StatusAt(nyse, time.Date(2026, 3, 10, 16, 0, 0, 0, loc)); status != StatusClosed {
		t.Errorf("16:00 local: expected CLOSED, got %s", status)
	}
}

func TestStatusAt_UnknownTimezone(t *testing.T) {
	ex := Exchange{Name: "X", Timezone: "Not/AZone", OpenHour: 9, CloseHour: 17}
	status, err := StatusAt(ex, time.Now())
	if err == nil {
		t.Error("expected an error for an unknown timezone")
	}
	if status != StatusClosed {
		t.Errorf("expected CLOSED fallback, got %s", status)
	}
}

func TestStatuses(t *testing.T) {
	out := Statuses(DefaultExchanges, time.Now())
	if len(out) != len(DefaultExchanges) {
		t.Fatalf("expected %d entries, got %d", len(DefaultExchanges), len(out))
	}
	for _, es := range out {
		if es.Status != StatusOpen && es.Status != StatusClosed {
			t.Errorf("%s: invalid status %q", es.Name, es.Status)
		}
	}
}

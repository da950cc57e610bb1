// Package markethours reports the open/closed status of major stock
// exchanges. It is a presentation utility: the analytical core never gates
// on it. The check is hour-granular and ignores holidays.
package markethours

import (
	"fmt"
	"time"
)

// Exchange describes one exchange's trading window in its local timezone.
type Exchange struct {
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
	OpenHour  int    `json:"openHour"`  // local hour, inclusive
	CloseHour int    `json:"closeHour"` // local hour, exclusive
}

// Status is an exchange's open/closed state.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// DefaultExchanges lists the tracked exchanges.
var DefaultExchanges = []Exchange{
	{Name: "NYSE", Timezone: "America/New_York", OpenHour: 9, CloseHour: 16},
	{Name: "NASDAQ", Timezone: "America/New_York", OpenHour: 9, CloseHour: 16},
	{Name: "London SE", Timezone: "Europe/London", OpenHour: 8, CloseHour: 16},
	{Name: "Tokyo SE", Timezone: "Asia/Tokyo", OpenHour: 9, CloseHour: 15},
	{Name: "Shanghai SE", Timezone: "Asia/Shanghai", OpenHour: 9, CloseHour: 15},
	{Name: "Euronext Paris", Timezone: "Europe/Paris", OpenHour: 9, CloseHour: 17},
	{Name: "BM&FBOVESPA", Timezone: "America/Sao_Paulo", OpenHour: 10, CloseHour: 17},
}

// StatusAt returns the exchange's status at time t. Fails only when the
// timezone database lacks the exchange's zone.
func StatusAt(ex Exchange, t time.Time) (Status, error) {
	loc, err := time.LoadLocation(ex.Timezone)
	if err != nil {
		return StatusClosed, fmt.Errorf("load timezone %s: %w", ex.Timezone, err)
	}
	local := t.In(loc)
	minutes := local.Hour()*60 + local.Minute()
	if minutes >= ex.OpenHour*60 && minutes < ex.CloseHour*60 {
		return StatusOpen, nil
	}
	return StatusClosed, nil
}

// ExchangeStatus pairs an exchange with its current status for reporting.
type ExchangeStatus struct {
	Exchange
	Status Status `json:"status"`
}

// Statuses evaluates all exchanges at time t. Exchanges with an unknown
// timezone report closed rather than failing the whole listing.
func Statuses(exchanges []Exchange, t time.Time) []ExchangeStatus {
	out := make([]ExchangeStatus, 0, len(exchanges))
	for _, ex := range exchanges {
		status, err := StatusAt(ex, t)
		if err != nil {
			status = StatusClosed
		}
		out = append(out, ExchangeStatus{Exchange: ex, Status: status})
	}
	return out
}

package model

import (
	"encoding/json"
	"fmt"
)

// AlertKind enumerates every signal the rule engine can emit. The set is
// closed: counters index it as a fixed-size array, so adding a kind means
// extending this block and AlertKindCount together.
type AlertKind int

const (
	AlertBuyCall AlertKind = iota
	AlertSellPut
	AlertEarlyPullbackBullish
	AlertEarlyPullbackBearish
	AlertTargetConfirmBullish
	AlertTargetConfirmBearish
	AlertFollowThroughBullish
	AlertFollowThroughBearish

	// AlertKindCount is the number of alert kinds; keep it last.
	AlertKindCount
)

var alertKindNames = [AlertKindCount]string{
	AlertBuyCall:              "BUY_CALL",
	AlertSellPut:              "SELL_PUT",
	AlertEarlyPullbackBullish: "EARLY_PULLBACK_EMA20_BULLISH",
	AlertEarlyPullbackBearish: "EARLY_PULLBACK_EMA20_BEARISH",
	AlertTargetConfirmBullish: "TARGET_LINE_CONFIRMATION_BULLISH",
	AlertTargetConfirmBearish: "TARGET_LINE_CONFIRMATION_BEARISH",
	AlertFollowThroughBullish: "TARGET_FOLLOW_THROUGH_BULLISH",
	AlertFollowThroughBearish: "TARGET_FOLLOW_THROUGH_BEARISH",
}

var alertKindSlugs = [AlertKindCount]string{
	AlertBuyCall:              "buy-call",
	AlertSellPut:              "sell-put",
	AlertEarlyPullbackBullish: "early-pullback-ema20-bullish",
	AlertEarlyPullbackBearish: "early-pullback-ema20-bearish",
	AlertTargetConfirmBullish: "target-confirm-bullish",
	AlertTargetConfirmBearish: "target-confirm-bearish",
	AlertFollowThroughBullish: "follow-bull",
	AlertFollowThroughBearish: "follow-bear",
}

var alertKindMessages = [AlertKindCount]string{
	AlertBuyCall:              "📈 CALL entry detected: trend confirmed",
	AlertSellPut:              "📉 PUT entry detected: trend confirmed",
	AlertEarlyPullbackBullish: "🟢 BULLISH pullback at EMA 20: upside potential!",
	AlertEarlyPullbackBearish: "🔴 BEARISH pullback at EMA 20: downside potential!",
	AlertTargetConfirmBullish: "🎯 BULLISH confirmation at target: price broke above the target line!",
	AlertTargetConfirmBearish: "🎯 BEARISH confirmation at target: price broke below the target line!",
	AlertFollowThroughBullish: "🚀 Following BULLISH target: continued upward move!",
	AlertFollowThroughBearish: "☄️ Following BEARISH target: continued downward move!",
}

func (k AlertKind) String() string {
	if k < 0 || k >= AlertKindCount {
		return "UNKNOWN"
	}
	return alertKindNames[k]
}

// Slug returns the lowercase id fragment for this kind.
func (k AlertKind) Slug() string {
	if k < 0 || k >= AlertKindCount {
		return "unknown"
	}
	return alertKindSlugs[k]
}

// Message returns the human-readable alert text for this kind.
func (k AlertKind) Message() string {
	if k < 0 || k >= AlertKindCount {
		return ""
	}
	return alertKindMessages[k]
}

// MarshalJSON encodes the kind as its string name.
func (k AlertKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON decodes the string name back into a kind.
func (k *AlertKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind := AlertKindFromString(s)
	if kind < 0 {
		return fmt.Errorf("unknown alert kind %q", s)
	}
	*k = kind
	return nil
}

// AlertKindFromString is the inverse of String. Unrecognized names return
// -1, which no valid kind uses.
func AlertKindFromString(s string) AlertKind {
	for k, name := range alertKindNames {
		if name == s {
			return AlertKind(k)
		}
	}
	return AlertKind(-1)
}

// BreakRegion is the price band between the closing price and the broken
// target line, attached to target-line confirmation alerts.
type BreakRegion struct {
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Target float64 `json:"target"`
}

// AlertEvent is one detected signal occurrence. Events are immutable value
// objects: once emitted they are only collected, counted or dismissed.
type AlertEvent struct {
	ID        string       `json:"id"`
	Kind      AlertKind    `json:"type"`
	Message   string       `json:"message"`
	Timestamp int64        `json:"timestamp"`
	Asset     string       `json:"asset"`
	Region    *BreakRegion `json:"breakPriceRegion,omitempty"`
}

// NewAlert builds an alert for the given kind, asset and candle timestamp.
// The id is unique per (kind, asset, timestamp), which is also the
// deduplication key at the collection boundary.
func NewAlert(kind AlertKind, asset string, timestamp int64) AlertEvent {
	return AlertEvent{
		ID:        fmt.Sprintf("%s-%s-%d", kind.Slug(), asset, timestamp),
		Kind:      kind,
		Message:   kind.Message(),
		Timestamp: timestamp,
		Asset:     asset,
	}
}

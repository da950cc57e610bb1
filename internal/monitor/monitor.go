// Package monitor owns the per-instrument analysis pipeline: a bounded
// candle window, the aligned indicator history, cycle classification and
// rule evaluation, plus the Supervisor that schedules one pipeline per
// tracked asset.
package monitor

import (
	"encoding/json"
	"fmt"

	"trading-monitor/internal/indicator"
	"trading-monitor/internal/model"
	"trading-monitor/internal/strategy"
	"trading-monitor/internal/window"
)

// Phase is the monitor lifecycle state. A monitor warms up until its
// history covers the longest rule precondition, then stays active for as
// long as the instrument is tracked.
type Phase int8

const (
	PhaseWarming Phase = iota
	PhaseActive
)

func (p Phase) String() string {
	if p == PhaseActive {
		return "active"
	}
	return "warming"
}

// MarshalJSON encodes the phase as its string label.
func (p Phase) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON decodes the string label back into a phase.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "active":
		*p = PhaseActive
	case "warming":
		*p = PhaseWarming
	default:
		return fmt.Errorf("unknown phase %q", s)
	}
	return nil
}

// State is the read-only per-asset snapshot republished after every tick.
// Slices are copies; callers may hold a State across ticks.
type State struct {
	Asset      string                    `json:"asset"`
	Phase      Phase                     `json:"phase"`
	Candles    []model.Candle            `json:"candleData"`
	Indicators []model.IndicatorSnapshot `json:"indicatorData"`
	SR         model.SupportResistance   `json:"supportResistance"`
	Cycle      model.MarketCycle         `json:"marketCycle"`
	Targets    model.TargetLevels        `json:"targetLevels"`
	Confirmed  model.Direction           `json:"confirmedDirection"`
}

// Monitor drives the analysis for one instrument. Designed for
// single-goroutine usage: the owning pipeline serializes all calls, so no
// locks are needed.
type Monitor struct {
	asset  string
	icfg   indicator.Config
	eval   *strategy.Evaluator
	minLen int

	win       *window.Window
	inds      []model.IndicatorSnapshot
	sr        model.SupportResistance
	cycle     model.MarketCycle
	prevInd   *model.IndicatorSnapshot
	targets   model.TargetLevels
	confirmed model.Direction
	phase     Phase
}

// New creates a monitor with an empty window.
func New(asset string, windowLimit int, icfg indicator.Config, params strategy.Params) *Monitor {
	return &Monitor{
		asset:  asset,
		icfg:   icfg,
		eval:   strategy.NewEvaluator(params),
		minLen: params.MinHistory(),
		win:    window.New(windowLimit),
	}
}

// Asset returns the instrument id this monitor tracks.
func (m *Monitor) Asset() string { return m.asset }

// Seed loads an initial candle history and computes indicators over it.
// The latest snapshot becomes the "previous" reference so the first live
// tick can classify and evaluate; no alerts and no cycle are produced for
// seeded data itself.
func (m *Monitor) Seed(candles []model.Candle) {
	m.win.Reset()
	for _, c := range candles {
		m.win.Append(c)
	}

	res := indicator.ComputeAll(m.win.Snapshot(), m.icfg)
	m.inds = res.Snapshots
	m.sr = res.SR
	m.cycle = model.CycleUnknown
	m.prevInd = nil
	if len(m.inds) > 0 {
		last := m.inds[len(m.inds)-1]
		m.prevInd = &last
	}
	m.updatePhase()
}

// OnCandle processes one new bar: window update, full indicator recompute,
// cycle classification, rule evaluation, previous-snapshot rotation. It
// returns the candidate alerts for this tick (pre-dedup) and the updated
// state snapshot.
func (m *Monitor) OnCandle(c model.Candle) ([]model.AlertEvent, State) {
	m.win.Append(c)
	snap := m.win.Snapshot()

	res := indicator.ComputeAll(snap, m.icfg)
	m.inds = res.Snapshots
	m.sr = res.SR

	var cur model.IndicatorSnapshot
	if len(m.inds) > 0 {
		cur = m.inds[len(m.inds)-1]
	}

	history := snap[:len(snap)-1]

	m.cycle = model.CycleUnknown
	if m.prevInd != nil && len(history) > 0 {
		m.cycle = strategy.ClassifyCycle(cur, *m.prevInd)
	}

	var fired []model.AlertEvent
	if len(history) > 0 {
		fired = m.eval.Evaluate(strategy.TickContext{
			Asset:     m.asset,
			Candle:    c,
			History:   history,
			Ind:       cur,
			PrevInd:   m.prevInd,
			Pivot:     m.targets.Pivot,
			Confirmed: m.confirmed,
		})
	}

	m.prevInd = &cur
	m.updatePhase()

	return fired, m.State()
}

// RecomputePivot derives fresh target levels from the latest candle.
// Returns the zero TargetLevels when the window is empty.
func (m *Monitor) RecomputePivot() model.TargetLevels {
	last, ok := m.win.Last()
	if !ok {
		m.targets = model.TargetLevels{}
		return m.targets
	}
	m.targets = indicator.ComputePivot(last)
	return m.targets
}

// Confirm records a confirmed breakout direction for follow-through
// evaluation.
func (m *Monitor) Confirm(d model.Direction) { m.confirmed = d }

// ClearConfirmed drops the confirmed direction. Called on the pivot
// recompute cadence so follow-through cannot fire indefinitely off one
// confirmation.
func (m *Monitor) ClearConfirmed() { m.confirmed = model.DirectionNone }

// Confirmed returns the currently confirmed direction.
func (m *Monitor) Confirmed() model.Direction { return m.confirmed }

// WindowLen returns the current candle window length.
func (m *Monitor) WindowLen() int { return m.win.Len() }

// State returns a snapshot of the monitor's current aggregate state.
func (m *Monitor) State() State {
	candles := m.win.Snapshot()
	inds := make([]model.IndicatorSnapshot, len(m.inds))
	copy(inds, m.inds)

	return State{
		Asset:      m.asset,
		Phase:      m.phase,
		Candles:    candles,
		Indicators: inds,
		SR:         m.sr,
		Cycle:      m.cycle,
		Targets:    m.targets,
		Confirmed:  m.confirmed,
	}
}

func (m *Monitor) updatePhase() {
	// History excludes the newest candle, mirroring the rule contract.
	if m.win.Len()-1 >= m.minLen {
		m.phase = PhaseActive
	} else {
		m.phase = PhaseWarming
	}
}

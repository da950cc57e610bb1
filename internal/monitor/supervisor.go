package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"trading-monitor/internal/alerts"
	"trading-monitor/internal/feed"
	"trading-monitor/internal/indicator"
	"trading-monitor/internal/metrics"
	"trading-monitor/internal/model"
	"trading-monitor/internal/strategy"
)

// Sink receives every alert accepted by the store. Delivery failures are
// logged and counted, never propagated back into the pipeline.
type Sink interface {
	Name() string
	Send(ctx context.Context, ev model.AlertEvent) error
}

// Event is pushed to gateway subscribers on every state update and
// accepted alert.
type Event struct {
	Type  string            `json:"type"` // "state" or "alert"
	State *State            `json:"state,omitempty"`
	Alert *model.AlertEvent `json:"alert,omitempty"`
}

// Options configures the supervisor.
type Options struct {
	Assets        []string
	Timeframe     time.Duration
	WindowLimit   int
	SeedHistory   int // candles back-filled on start and on every reset
	PivotInterval time.Duration
	Indicators    indicator.Config
	Params        strategy.Params
	FeedSeed      int64 // 0 means time-based seeding
}

// pipeline couples one asset's monitor with its candle source. Only its
// run goroutine touches the monitor and source.
type pipeline struct {
	mon     *Monitor
	src     *feed.Source
	pivotCh chan struct{}
}

// generation is one set of pipelines sharing a lifetime. A timeframe
// switch retires the whole generation and builds a new one.
type generation struct {
	id        int64
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	pipelines map[string]*pipeline
}

// Supervisor owns all asset pipelines, the global alert store, the pivot
// scheduler and the subscriber fan-out.
type Supervisor struct {
	opts  Options
	log   zerolog.Logger
	store *alerts.Store
	met   *metrics.Metrics
	sinks []Sink
	cron  *cron.Cron

	mu        sync.RWMutex
	timeframe time.Duration
	cur       *generation
	states    map[string]State
	subs      map[chan Event]struct{}
	nextGen   int64

	baseCtx context.Context
}

// NewSupervisor wires a supervisor. Run must be called before any pipeline
// activity happens.
func NewSupervisor(opts Options, store *alerts.Store, met *metrics.Metrics, sinks []Sink, log zerolog.Logger) (*Supervisor, error) {
	if len(opts.Assets) == 0 {
		return nil, fmt.Errorf("supervisor: no assets configured")
	}
	if opts.Timeframe <= 0 {
		return nil, fmt.Errorf("supervisor: timeframe must be positive")
	}
	if opts.SeedHistory <= 0 {
		opts.SeedHistory = opts.WindowLimit
	}
	if opts.FeedSeed == 0 {
		opts.FeedSeed = time.Now().UnixNano()
	}
	return &Supervisor{
		opts:      opts,
		log:       log.With().Str("comp", "supervisor").Logger(),
		store:     store,
		met:       met,
		sinks:     sinks,
		cron:      cron.New(),
		timeframe: opts.Timeframe,
		states:    make(map[string]State),
		subs:      make(map[chan Event]struct{}),
	}, nil
}

// Store returns the global alert store.
func (s *Supervisor) Store() *alerts.Store { return s.store }

// Assets returns the tracked instrument ids.
func (s *Supervisor) Assets() []string {
	out := make([]string, len(s.opts.Assets))
	copy(out, s.opts.Assets)
	return out
}

// Timeframe returns the currently active timeframe.
func (s *Supervisor) Timeframe() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeframe
}

// StateOf returns the latest published state for an asset.
func (s *Supervisor) StateOf(asset string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[asset]
	return st, ok
}

// States returns the latest published state of every asset.
func (s *Supervisor) States() map[string]State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]State, len(s.states))
	for k, v := range s.states {
		out[k] = v
	}
	return out
}

// Subscribe registers an event channel for state/alert pushes. The
// returned cancel func must be called exactly once. Slow subscribers have
// events dropped rather than blocking the pipelines.
func (s *Supervisor) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 256)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Run starts the pipelines and the pivot scheduler and blocks until ctx is
// cancelled.
func (s *Supervisor) Run(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.opts.PivotInterval)
	if _, err := s.cron.AddFunc(spec, s.pivotTick); err != nil {
		return fmt.Errorf("register pivot job: %w", err)
	}

	s.mu.Lock()
	s.baseCtx = ctx
	s.cur = s.newGeneration(s.timeframe)
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info().
		Int("assets", len(s.opts.Assets)).
		Dur("timeframe", s.Timeframe()).
		Dur("pivot_interval", s.opts.PivotInterval).
		Msg("supervisor started")

	<-ctx.Done()

	cronCtx := s.cron.Stop()
	s.mu.Lock()
	cur := s.cur
	s.mu.Unlock()
	if cur != nil {
		cur.cancel()
		cur.wg.Wait()
	}
	<-cronCtx.Done()
	s.log.Info().Msg("supervisor stopped")
	return nil
}

// SwitchTimeframe tears down every pipeline, clears all accumulated state
// (windows, alerts, counts, targets, confirmed directions) and rebuilds
// from fresh synthetic history. The reset is all-or-nothing: no instrument
// keeps prior-timeframe state.
func (s *Supervisor) SwitchTimeframe(tf time.Duration) error {
	if tf <= 0 {
		return fmt.Errorf("switch timeframe: non-positive duration %s", tf)
	}

	s.mu.Lock()
	if tf == s.timeframe {
		s.mu.Unlock()
		return nil
	}
	if s.baseCtx == nil {
		s.mu.Unlock()
		return fmt.Errorf("switch timeframe: supervisor is not running")
	}
	old := s.cur
	s.cur = nil
	s.timeframe = tf
	s.mu.Unlock()

	if old != nil {
		old.cancel()
		old.wg.Wait()
	}

	s.mu.Lock()
	s.store.Reset()
	s.states = make(map[string]State)
	s.cur = s.newGeneration(tf)
	s.mu.Unlock()

	s.met.TimeframeResets.Inc()
	s.log.Info().Dur("timeframe", tf).Msg("timeframe switched, all state reset")
	return nil
}

// newGeneration builds and starts the pipelines for one timeframe.
// Caller holds s.mu with s.baseCtx set.
func (s *Supervisor) newGeneration(tf time.Duration) *generation {
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.nextGen++
	g := &generation{
		id:        s.nextGen,
		ctx:       ctx,
		cancel:    cancel,
		pipelines: make(map[string]*pipeline, len(s.opts.Assets)),
	}

	now := time.Now().UnixMilli()
	for i, asset := range s.opts.Assets {
		src := feed.NewSource(s.opts.FeedSeed + int64(i) + g.id*1000)
		mon := New(asset, s.opts.WindowLimit, s.opts.Indicators, s.opts.Params)
		mon.Seed(src.History(s.opts.SeedHistory, tf.Milliseconds(), now))

		p := &pipeline{mon: mon, src: src, pivotCh: make(chan struct{}, 1)}
		g.pipelines[asset] = p
		s.states[asset] = mon.State()

		g.wg.Add(1)
		go s.runPipeline(g, p, tf)
	}
	return g
}

// runPipeline is the single goroutine that owns one asset's monitor. It
// processes ticks strictly in order; tick N is fully applied before tick
// N+1 is read.
func (s *Supervisor) runPipeline(g *generation, p *pipeline, tf time.Duration) {
	defer g.wg.Done()

	ticker := time.NewTicker(tf)
	defer ticker.Stop()

	for {
		select {
		case <-g.ctx.Done():
			return
		case t := <-ticker.C:
			s.onTick(g, p, t)
		case <-p.pivotCh:
			p.mon.RecomputePivot()
			p.mon.ClearConfirmed()
			s.publish(g, p.mon.State())
		}
	}
}

func (s *Supervisor) onTick(g *generation, p *pipeline, t time.Time) {
	candle := p.src.Next(t.UnixMilli())

	start := time.Now()
	fired, _ := p.mon.OnCandle(candle)
	s.met.ComputeDur.Observe(time.Since(start).Seconds())
	s.met.CandlesTotal.WithLabelValues(p.mon.Asset()).Inc()
	s.met.WindowSize.WithLabelValues(p.mon.Asset()).Set(float64(p.mon.WindowLen()))

	for _, a := range fired {
		s.accept(g, p, a)
	}

	// Snapshot after alert handling so a confirmation set this tick is
	// already visible.
	s.publish(g, p.mon.State())
}

// accept runs the global dedup-and-count insertion and, on acceptance,
// applies side effects: confirmed-direction latching, sink delivery and
// subscriber broadcast.
func (s *Supervisor) accept(g *generation, p *pipeline, a model.AlertEvent) {
	if !s.store.Insert(a) {
		s.met.AlertsDeduped.Inc()
		return
	}
	s.met.AlertsTotal.WithLabelValues(a.Kind.String()).Inc()

	switch a.Kind {
	case model.AlertTargetConfirmBullish:
		p.mon.Confirm(model.DirectionBullish)
	case model.AlertTargetConfirmBearish:
		p.mon.Confirm(model.DirectionBearish)
	}

	s.log.Info().
		Str("asset", a.Asset).
		Stringer("kind", a.Kind).
		Int64("ts", a.Timestamp).
		Msg("alert")

	if len(s.sinks) > 0 {
		go s.deliver(a)
	}

	ev := a
	s.broadcast(g, Event{Type: "alert", Alert: &ev})
}

// deliver fans an accepted alert out to all sinks off the pipeline
// goroutine, so a slow sink cannot delay tick processing.
func (s *Supervisor) deliver(a model.AlertEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, sink := range s.sinks {
		if err := sink.Send(ctx, a); err != nil {
			s.met.SinkErrors.WithLabelValues(sink.Name()).Inc()
			s.log.Warn().Err(err).Str("sink", sink.Name()).Str("alert", a.ID).Msg("sink delivery failed")
		}
	}
}

// publish stores the latest state and pushes it to subscribers, unless the
// generation has been retired by a timeframe switch in the meantime.
func (s *Supervisor) publish(g *generation, st State) {
	s.mu.Lock()
	if s.cur == nil || s.cur.id != g.id {
		s.mu.Unlock()
		return
	}
	s.states[st.Asset] = st
	s.mu.Unlock()

	stCopy := st
	s.broadcast(g, Event{Type: "state", State: &stCopy})
}

func (s *Supervisor) broadcast(g *generation, ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil || s.cur.id != g.id {
		return
	}
	for ch := range s.subs {
		select {
		case ch <- ev:
		default: // slow subscriber, drop
		}
	}
}

// pivotTick asks every pipeline to recompute its target levels and clear
// its confirmed direction. The signal is non-blocking: a pipeline mid-tick
// picks it up right after.
func (s *Supervisor) pivotTick() {
	s.mu.RLock()
	g := s.cur
	s.mu.RUnlock()
	if g == nil {
		return
	}
	for _, p := range g.pipelines {
		select {
		case p.pivotCh <- struct{}{}:
		default:
		}
	}
	s.met.PivotRecomputes.Inc()
}

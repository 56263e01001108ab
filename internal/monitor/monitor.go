// Package monitor keeps one expiry tracker per worker in memory, refreshes
// them from the store and drives them with a daily scheduler.
package monitor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/erazemk/hsetracker/internal/expiry"
	"github.com/erazemk/hsetracker/internal/model"
	"github.com/erazemk/hsetracker/internal/store"
)

// DefaultFetchTimeout bounds every store round trip made by the monitor.
const DefaultFetchTimeout = 5 * time.Second

// Config configures a Monitor.
type Config struct {
	DB           *sql.DB
	Location     *time.Location
	FetchTimeout time.Duration
	Alerts       expiry.Sink
	Push         expiry.Sink
	Clock        expiry.Clock
	Metrics      *Metrics
	Logger       *slog.Logger
}

// Summary counts tracked items per status kind.
type Summary struct {
	Workers int            `json:"workers"`
	Items   int            `json:"items"`
	Counts  map[string]int `json:"counts"`
}

// Monitor owns the trackers of all active workers.
type Monitor struct {
	cfg   Config
	sched *expiry.Scheduler

	mu       sync.Mutex
	trackers map[int64]*expiry.Tracker
}

// New creates a monitor. Call Start to load data and arm the scheduler.
func New(cfg Config) *Monitor {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = expiry.SystemClock{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Alerts = cfg.Metrics.instrument("in_app", cfg.Alerts)
	cfg.Push = cfg.Metrics.instrument("push", cfg.Push)

	m := &Monitor{cfg: cfg, trackers: make(map[int64]*expiry.Tracker)}
	m.sched = expiry.NewScheduler(expiry.SchedulerConfig{
		Location:   cfg.Location,
		Clock:      cfg.Clock,
		OnTick:     m.tick,
		OnRollover: m.rollover,
		Logger:     cfg.Logger,
	})
	return m
}

// Start loads every worker, evaluates immediately and arms the daily scheduler.
func (m *Monitor) Start(ctx context.Context) error {
	return m.sched.Start(ctx)
}

// Stop disarms the scheduler and waits for a running tick to finish.
func (m *Monitor) Stop() {
	m.sched.Stop()
}

// State reports the scheduler state.
func (m *Monitor) State() expiry.State {
	return m.sched.State()
}

func (m *Monitor) tick(ctx context.Context, now time.Time) error {
	start := time.Now()
	defer func() { m.cfg.Metrics.TickDuration.Observe(time.Since(start).Seconds()) }()

	loadErr := m.loadAll(ctx)
	if loadErr != nil {
		m.cfg.Metrics.LoadFailures.Inc()
		m.cfg.Logger.Warn("loading equipment failed, keeping previous data", "error", loadErr)
	}
	m.EvaluateAll(ctx, now)

	if err := store.SetSetting(ctx, m.cfg.DB, store.SettingLastEvaluated, now.In(m.cfg.Location).Format(time.RFC3339)); err != nil {
		m.cfg.Logger.Warn("recording evaluation time failed", "error", err)
	}
	return loadErr
}

func (m *Monitor) rollover() {
	m.mu.Lock()
	trackers := m.snapshot()
	m.mu.Unlock()

	for _, t := range trackers {
		t.Rollover()
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.FetchTimeout)
	defer cancel()
	day := m.cfg.Clock.Now().In(m.cfg.Location).Format(expiry.DateLayout)
	if err := store.SetSetting(ctx, m.cfg.DB, store.SettingLastRollover, day); err != nil {
		m.cfg.Logger.Warn("recording rollover failed", "error", err)
	}
	if n, err := store.PurgeRevokedTokens(ctx, m.cfg.DB, m.cfg.Clock.Now()); err != nil {
		m.cfg.Logger.Warn("purging revoked tokens failed", "error", err)
	} else if n > 0 {
		m.cfg.Logger.Info("purged revoked tokens", "count", n)
	}
	m.cfg.Logger.Info("midnight rollover", "day", day, "workers", len(trackers))
}

// loadAll refreshes every tracker from the store. On error nothing is changed.
func (m *Monitor) loadAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.FetchTimeout)
	defer cancel()

	workers, err := store.ListWorkers(ctx, m.cfg.DB, "")
	if err != nil {
		return err
	}
	equipment, err := store.ListAllEquipment(ctx, m.cfg.DB)
	if err != nil {
		return err
	}

	items := make(map[int64][]expiry.Item, len(workers))
	for _, e := range equipment {
		items[e.WorkerID] = append(items[e.WorkerID], e.ExpiryItem())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	active := make(map[int64]bool, len(workers))
	for _, w := range workers {
		active[w.ID] = true
		m.trackerLocked(w).Load(items[w.ID])
	}
	for id := range m.trackers {
		if !active[id] {
			delete(m.trackers, id)
		}
	}
	return nil
}

// trackerLocked returns the tracker for w, creating it if needed. m.mu must be held.
func (m *Monitor) trackerLocked(w model.Worker) *expiry.Tracker {
	t, ok := m.trackers[w.ID]
	if !ok {
		t = expiry.NewTracker(expiry.TrackerConfig{
			Subject:   w.Name,
			SubjectID: w.ID,
			Location:  m.cfg.Location,
			Alerts:    m.cfg.Alerts,
			Push:      m.cfg.Push,
			Logger:    m.cfg.Logger.With("worker_id", w.ID),
		})
		m.trackers[w.ID] = t
		return t
	}
	t.SetSubject(w.Name)
	return t
}

// snapshot returns the trackers ordered by worker ID. m.mu must be held.
func (m *Monitor) snapshot() []*expiry.Tracker {
	ids := make([]int64, 0, len(m.trackers))
	for id := range m.trackers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	trackers := make([]*expiry.Tracker, len(ids))
	for i, id := range ids {
		trackers[i] = m.trackers[id]
	}
	return trackers
}

// EvaluateAll evaluates every tracker at now and writes changed labels back.
func (m *Monitor) EvaluateAll(ctx context.Context, now time.Time) {
	m.mu.Lock()
	ids := make([]int64, 0, len(m.trackers))
	for id := range m.trackers {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	slices.Sort(ids)

	for _, id := range ids {
		m.evaluate(ctx, id, now)
	}
	m.updateGauges()
}

func (m *Monitor) evaluate(ctx context.Context, workerID int64, now time.Time) {
	m.mu.Lock()
	t := m.trackers[workerID]
	m.mu.Unlock()
	if t == nil {
		return
	}

	changes := t.Evaluate(ctx, now)
	m.cfg.Metrics.Evaluations.Inc()
	if len(changes) == 0 {
		return
	}

	statuses := make(map[string]string, len(changes))
	for _, c := range changes {
		statuses[c.Name] = c.Current.Label()
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.FetchTimeout)
	defer cancel()
	if err := store.UpdateEquipmentStatuses(ctx, m.cfg.DB, workerID, statuses); err != nil {
		m.cfg.Logger.Warn("writing statuses failed", "worker_id", workerID, "error", err)
	}
}

// Reload refreshes one worker from the store and evaluates it at the current
// time. This starts a new epoch for the worker, so owed notifications are
// sent again. A missing or deleted worker is forgotten.
//
// ctx is usually a request context. Its cancellation is ignored: thresholds
// are recorded before delivery, so a cancelled send would be lost for the
// rest of the epoch. Each step is bounded by the fetch timeout instead.
func (m *Monitor) Reload(ctx context.Context, workerID int64) error {
	ctx = context.WithoutCancel(ctx)

	fetchCtx, cancel := context.WithTimeout(ctx, m.cfg.FetchTimeout)
	record, err := store.GetEquipmentRecord(fetchCtx, m.cfg.DB, workerID)
	cancel()
	if err != nil {
		m.cfg.Metrics.LoadFailures.Inc()
		return fmt.Errorf("reloading worker %d: %w", workerID, err)
	}
	if record == nil {
		m.Forget(workerID)
		return nil
	}

	items := make([]expiry.Item, len(record.Equipment))
	for i, e := range record.Equipment {
		items[i] = e.ExpiryItem()
	}

	m.mu.Lock()
	m.trackerLocked(record.Worker).Load(items)
	m.mu.Unlock()

	evalCtx, cancel := context.WithTimeout(ctx, m.cfg.FetchTimeout)
	defer cancel()
	m.evaluate(evalCtx, workerID, m.cfg.Clock.Now())
	m.updateGauges()
	return nil
}

// Forget drops the tracker of a deleted worker.
func (m *Monitor) Forget(workerID int64) {
	m.mu.Lock()
	delete(m.trackers, workerID)
	m.mu.Unlock()
	m.updateGauges()
}

// Items returns the tracked items of a worker with their current status, or
// nil if the worker is not tracked.
func (m *Monitor) Items(workerID int64) []expiry.Item {
	m.mu.Lock()
	t := m.trackers[workerID]
	m.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.Items()
}

// Summary counts the tracked items per status kind.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	trackers := m.snapshot()
	m.mu.Unlock()

	s := Summary{Workers: len(trackers), Counts: make(map[string]int, len(expiry.Kinds))}
	for _, k := range expiry.Kinds {
		s.Counts[k.String()] = 0
	}
	for _, t := range trackers {
		for _, it := range t.Items() {
			s.Items++
			s.Counts[it.Status.Kind.String()]++
		}
	}
	return s
}

func (m *Monitor) updateGauges() {
	for kind, n := range m.Summary().Counts {
		m.cfg.Metrics.TrackedItems.WithLabelValues(kind).Set(float64(n))
	}
}

package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/jobtracker/internal/checklist"
	"github.com/roach88/jobtracker/internal/digest"
	"github.com/roach88/jobtracker/internal/metrics"
	"github.com/roach88/jobtracker/internal/notify"
	"github.com/roach88/jobtracker/internal/prefs"
	"github.com/roach88/jobtracker/internal/record"
)

// Store is the durable key-value store holding serialized records.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Tracker is the application state of one session.
type Tracker struct {
	store    Store
	logger   *slog.Logger
	notifier notify.Notifier
	metrics  *metrics.Recorder
	now      func() time.Time
	ids      IDGenerator
	source   digest.Source
	delay    time.Duration
	gen      *digest.Generator
	session  string

	mu        sync.Mutex
	checklist *checklist.State
	gate      *checklist.Gate
	prefs     record.Preferences
	jobs      []record.Job
	digest    *record.DigestState
	route     Route

	// wg tracks goroutines relaying digest results.
	wg sync.WaitGroup
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the tracker's logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = l
	}
}

// WithNotifier sets where user notifications go. The default is an
// in-memory notify.Log.
func WithNotifier(n notify.Notifier) Option {
	return func(t *Tracker) {
		t.notifier = n
	}
}

// WithMetrics sets the metrics recorder. Nil disables metrics.
func WithMetrics(m *metrics.Recorder) Option {
	return func(t *Tracker) {
		t.metrics = m
	}
}

// WithNow sets the wall clock used for "today" and notification times.
func WithNow(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithSessionIDs sets the session id generator.
func WithSessionIDs(g IDGenerator) Option {
	return func(t *Tracker) {
		t.ids = g
	}
}

// WithDigestSource sets where digest entries come from. The default is the
// built-in catalog.
func WithDigestSource(s digest.Source) Option {
	return func(t *Tracker) {
		t.source = s
	}
}

// WithDigestDelay sets the digest completion delay.
func WithDigestDelay(d time.Duration) Option {
	return func(t *Tracker) {
		t.delay = d
	}
}

// New loads every record from store and returns a ready tracker.
//
// Missing records take their defaults. Malformed records are logged and
// replaced by defaults in memory; the stored value is left alone until the
// next mutation overwrites it. Only a failing store is an error.
func New(ctx context.Context, store Store, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		ids:    UUIDv7Generator{},
		delay:  digest.DefaultDelay,
		gate:   checklist.NewGate(),
		route:  RouteDashboard,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.notifier == nil {
		t.notifier = notify.NewLog(notify.DefaultLimit, t.logger)
	}
	if t.source == nil {
		c, err := digest.DefaultCatalog()
		if err != nil {
			return nil, err
		}
		t.source = c
	}

	t.session = t.ids.Generate()
	t.logger = t.logger.With("session", t.session)
	t.gen = digest.NewGenerator(t.source,
		digest.WithDelay(t.delay),
		digest.WithNow(t.now),
		digest.WithLogger(t.logger),
	)

	if err := t.load(ctx); err != nil {
		return nil, err
	}

	passed := t.checklist.PassedCount()
	t.gate.Update(passed)
	t.metrics.SetPassed(passed)
	t.metrics.SetShipUnlocked(t.gate.Unlocked())

	t.logger.Info("tracker session started", "passed", passed, "gate", t.gate.State())
	return t, nil
}

func (t *Tracker) load(ctx context.Context) error {
	t.checklist = checklist.New()
	if data, ok, err := t.read(ctx, record.KeyChecklist); err != nil {
		return err
	} else if ok {
		if s, err := checklist.Decode(data); err != nil {
			t.logger.Warn("malformed record, using defaults", "key", record.KeyChecklist, "error", err)
		} else {
			t.checklist = s
		}
	}

	t.prefs = prefs.Defaults()
	if data, ok, err := t.read(ctx, record.KeyPreferences); err != nil {
		return err
	} else if ok {
		p, err := prefs.Decode(data)
		if err != nil {
			t.logger.Warn("malformed record, using defaults", "key", record.KeyPreferences, "error", err)
		}
		t.prefs = p
	}

	t.jobs = []record.Job{}
	if data, ok, err := t.read(ctx, record.KeyJobs); err != nil {
		return err
	} else if ok {
		var jobs []record.Job
		if err := json.Unmarshal(data, &jobs); err != nil || jobs == nil {
			t.logger.Warn("malformed record, using defaults", "key", record.KeyJobs, "error", err)
		} else {
			t.jobs = jobs
		}
	}

	if data, ok, err := t.read(ctx, record.KeyDigest); err != nil {
		return err
	} else if ok {
		d, err := digest.Decode(data)
		if err != nil {
			t.logger.Warn("malformed record, ignoring", "key", record.KeyDigest, "error", err)
		} else {
			t.digest = d
		}
	}
	return nil
}

func (t *Tracker) read(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := t.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return data, ok, nil
}

// persist writes v in full under key.
// persist encodes v, writes it under key and returns the written bytes.
func (t *Tracker) persist(ctx context.Context, key string, v any) ([]byte, error) {
	data, err := record.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", key, err)
	}
	if err := t.store.Set(ctx, key, data); err != nil {
		return nil, fmt.Errorf("set %s: %w", key, err)
	}
	return data, nil
}

func (t *Tracker) notify(level notify.Level, msg string) {
	t.notifier.Notify(notify.Notification{Level: level, Message: msg, At: t.now()})
}

// Session returns the id of this tracker session.
func (t *Tracker) Session() string {
	return t.session
}

// Notifications returns the recent notifications when the notifier keeps
// them, oldest first.
func (t *Tracker) Notifications() []notify.Notification {
	if l, ok := t.notifier.(interface{ Recent() []notify.Notification }); ok {
		return l.Recent()
	}
	return nil
}

// Close cancels an in-flight digest generation and waits for it to finish.
// The store is not closed.
func (t *Tracker) Close() error {
	t.gen.Stop()
	t.wg.Wait()
	t.logger.Debug("tracker session closed")
	return nil
}

// Snapshot is a consistent view of the whole session.
type Snapshot struct {
	Session       string                `json:"session"`
	Checklist     record.ChecklistState `json:"checklist"`
	Summary       checklist.Summary     `json:"summary"`
	Gate          checklist.GateState   `json:"gate"`
	Route         Route                 `json:"route"`
	Preferences   record.Preferences    `json:"preferences"`
	Digest        *record.DigestState   `json:"digest"`
	DigestPending bool                  `json:"digestPending"`
}

// Snapshot returns the current session state. Digest is nil unless a digest
// was generated today.
func (t *Tracker) Snapshot() Snapshot {
	pending := t.gen.Pending()

	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		Session:       t.session,
		Checklist:     t.checklist.Record(),
		Summary:       t.checklist.Summarize(),
		Gate:          t.gate.State(),
		Route:         t.route,
		Preferences:   t.prefs,
		Digest:        t.currentDigestLocked(),
		DigestPending: pending,
	}
}

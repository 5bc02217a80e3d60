// Package digest produces the ranked daily digest.
//
// Generation is asynchronous: Start returns at once and the result arrives
// on a channel after a fixed delay. Only one generation occupies the slot at
// a time; starting a new one cancels the previous, and a superseded
// generation never commits.
package digest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/jobtracker/internal/record"
)

// Size is the number of entries in every digest.
const Size = 10

// DefaultDelay is the artificial completion delay of a generation.
const DefaultDelay = 1500 * time.Millisecond

var (
	// ErrSuperseded is reported by a generation replaced by a newer one.
	ErrSuperseded = errors.New("digest generation superseded")
	// ErrClosed is reported when the generator has been stopped.
	ErrClosed = errors.New("digest generator closed")
	// ErrNotRanked is reported when source entries are not in strictly
	// descending score order.
	ErrNotRanked = errors.New("digest entries not in descending score order")
	// ErrShortDigest is reported when the source yields fewer than Size entries.
	ErrShortDigest = errors.New("digest source returned too few entries")
)

// Source supplies candidate entries, best first.
type Source interface {
	Entries(ctx context.Context) ([]record.DigestEntry, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]record.DigestEntry, error)

// Entries calls f.
func (f SourceFunc) Entries(ctx context.Context) ([]record.DigestEntry, error) {
	return f(ctx)
}

// CommitFunc persists a finished digest and returns it as stored, which may
// differ from d where encoding normalizes text. It is called at most once per
// generation, only while that generation still holds the slot.
type CommitFunc func(ctx context.Context, d record.DigestState) (record.DigestState, error)

// Result is the outcome of one generation.
type Result struct {
	Seq    int64
	Digest record.DigestState
	Err    error
}

// Option configures a Generator.
type Option func(*Generator)

// WithDelay sets the completion delay. Zero completes without waiting.
func WithDelay(d time.Duration) Option {
	return func(g *Generator) {
		g.delay = d
	}
}

// WithNow sets the wall clock used to date generated digests.
func WithNow(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithLogger sets the generator's logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// Generator runs digest generations in a single cancellable slot.
//
// Thread-safety: Start, Pending and Stop may be called from any goroutine.
// The commit callback runs on the generation's goroutine while the slot lock
// is held, so it must not call back into the Generator.
type Generator struct {
	source Source
	delay  time.Duration
	now    func() time.Time
	clock  *Clock
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewGenerator creates a generator drawing entries from source.
func NewGenerator(source Source, opts ...Option) *Generator {
	g := &Generator{
		source: source,
		delay:  DefaultDelay,
		now:    time.Now,
		clock:  NewClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start launches a generation and returns immediately. Any in-flight
// generation is cancelled and will report ErrSuperseded.
//
// The returned channel receives exactly one Result and is then closed.
// commit is invoked with the finished digest unless the generation fails or
// is superseded first.
func (g *Generator) Start(ctx context.Context, commit CommitFunc) <-chan Result {
	out := make(chan Result, 1)

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		out <- Result{Err: ErrClosed}
		close(out)
		return out
	}
	if g.cancel != nil {
		g.cancel()
	}
	seq := g.clock.Next()
	runCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.wg.Add(1)
	g.mu.Unlock()

	g.logger.Debug("digest generation started", "seq", seq)

	go func() {
		defer g.wg.Done()
		defer close(out)
		defer cancel()

		res := g.run(runCtx, seq, commit)
		g.release(seq)
		if res.Err != nil {
			g.logger.Debug("digest generation ended", "seq", seq, "error", res.Err)
		} else {
			g.logger.Info("digest generated", "seq", seq, "entries", len(res.Digest.Entries), "generated_on", res.Digest.GeneratedOn)
		}
		out <- res
	}()

	return out
}

func (g *Generator) run(ctx context.Context, seq int64, commit CommitFunc) Result {
	res := Result{Seq: seq}

	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			res.Err = g.abortReason(ctx, seq)
			return res
		case <-timer.C:
		}
	}

	entries, err := g.source.Entries(ctx)
	if err != nil {
		if ctx.Err() != nil {
			res.Err = g.abortReason(ctx, seq)
		} else {
			res.Err = fmt.Errorf("read digest source: %w", err)
		}
		return res
	}

	ranked, err := Rank(entries)
	if err != nil {
		res.Err = err
		return res
	}
	digest := record.DigestState{
		Entries:     ranked,
		GeneratedOn: record.FormatDate(g.now()),
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if seq != g.clock.Current() || ctx.Err() != nil {
		res.Err = g.abortReasonLocked(ctx, seq)
		return res
	}
	if commit != nil {
		stored, err := commit(ctx, digest)
		if err != nil {
			res.Err = fmt.Errorf("commit digest: %w", err)
			return res
		}
		digest = stored
	}
	res.Digest = digest
	return res
}

// release frees the slot if seq still holds it.
func (g *Generator) release(seq int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.clock.Current() == seq {
		g.cancel = nil
	}
}

func (g *Generator) abortReason(ctx context.Context, seq int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.abortReasonLocked(ctx, seq)
}

func (g *Generator) abortReasonLocked(ctx context.Context, seq int64) error {
	switch {
	case seq != g.clock.Current():
		return ErrSuperseded
	case g.closed:
		return ErrClosed
	default:
		return ctx.Err()
	}
}

// Pending reports whether a generation currently holds the slot.
func (g *Generator) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancel != nil
}

// Stop cancels any in-flight generation and waits for it to finish.
// Later calls to Start report ErrClosed. Stop is idempotent.
func (g *Generator) Stop() {
	g.mu.Lock()
	g.closed = true
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.mu.Unlock()

	g.wg.Wait()
}

// Rank checks that entries are in strictly descending score order and
// returns the first Size of them. It verifies the order; it never sorts.
func Rank(entries []record.DigestEntry) ([]record.DigestEntry, error) {
	if len(entries) < Size {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrShortDigest, len(entries), Size)
	}
	top := make([]record.DigestEntry, Size)
	copy(top, entries[:Size])
	for i := 1; i < len(top); i++ {
		if top[i].Score >= top[i-1].Score {
			return nil, fmt.Errorf("%w: rank %d scores %d after %d", ErrNotRanked, i+1, top[i].Score, top[i-1].Score)
		}
	}
	return top, nil
}

// Current returns d when it was generated on the calendar day of now.
func Current(d *record.DigestState, now time.Time) (*record.DigestState, bool) {
	if d == nil || !d.FreshOn(now) {
		return nil, false
	}
	return d, true
}

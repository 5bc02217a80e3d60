package digest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jobtracker/internal/record"
)

var fixedNow = time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func defaultEntries(t *testing.T) []record.DigestEntry {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	entries, err := c.Entries(context.Background())
	require.NoError(t, err)
	return entries
}

// blockingSource blocks its first caller until the context is cancelled or
// release is closed. Later callers return immediately.
type blockingSource struct {
	entries []record.DigestEntry
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newBlockingSource(entries []record.DigestEntry) *blockingSource {
	return &blockingSource{
		entries: entries,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *blockingSource) Entries(ctx context.Context) ([]record.DigestEntry, error) {
	if s.calls.Add(1) == 1 {
		close(s.entered)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.release:
		}
	}
	return s.entries, nil
}

type commitRecorder struct {
	mu      sync.Mutex
	commits []record.DigestState
	err     error
}

func (r *commitRecorder) commit(_ context.Context, d record.DigestState) (record.DigestState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return record.DigestState{}, r.err
	}
	r.commits = append(r.commits, d)
	return d, nil
}

func (r *commitRecorder) all() []record.DigestState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]record.DigestState(nil), r.commits...)
}

func TestGenerator_ProducesRankedDigest(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	g := NewGenerator(c, WithDelay(0), WithNow(fixedClock))
	defer g.Stop()

	rec := &commitRecorder{}
	res := <-g.Start(context.Background(), rec.commit)

	require.NoError(t, res.Err)
	assert.Equal(t, int64(1), res.Seq)
	require.Len(t, res.Digest.Entries, Size)
	assert.Equal(t, "Sat Oct 17 2026", res.Digest.GeneratedOn)
	assert.Equal(t, "Senior React Developer", res.Digest.Entries[0].Title)
	for i := 1; i < Size; i++ {
		assert.Less(t, res.Digest.Entries[i].Score, res.Digest.Entries[i-1].Score, "rank %d", i+1)
	}

	commits := rec.all()
	require.Len(t, commits, 1)
	assert.Equal(t, res.Digest, commits[0])
	assert.False(t, g.Pending())
}

func TestGenerator_WaitsForDelay(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	g := NewGenerator(c, WithDelay(20*time.Millisecond), WithNow(fixedClock))
	defer g.Stop()

	start := time.Now()
	ch := g.Start(context.Background(), nil)
	assert.True(t, g.Pending(), "generation must still be running after Start returns")

	res := <-ch
	require.NoError(t, res.Err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Len(t, res.Digest.Entries, Size)
}

func TestGenerator_SupersededNeverCommits(t *testing.T) {
	src := newBlockingSource(defaultEntries(t))
	g := NewGenerator(src, WithDelay(0), WithNow(fixedClock))
	defer g.Stop()

	rec := &commitRecorder{}
	first := g.Start(context.Background(), rec.commit)
	<-src.entered

	second := g.Start(context.Background(), rec.commit)

	r1 := <-first
	assert.ErrorIs(t, r1.Err, ErrSuperseded)
	assert.Equal(t, int64(1), r1.Seq)

	r2 := <-second
	require.NoError(t, r2.Err)
	assert.Equal(t, int64(2), r2.Seq)

	commits := rec.all()
	require.Len(t, commits, 1)
	assert.Equal(t, r2.Digest, commits[0])
}

func TestGenerator_SupersededDuringDelay(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	g := NewGenerator(c, WithDelay(time.Hour), WithNow(fixedClock))

	rec := &commitRecorder{}
	first := g.Start(context.Background(), rec.commit)
	second := g.Start(context.Background(), rec.commit)

	assert.ErrorIs(t, (<-first).Err, ErrSuperseded)

	g.Stop()
	assert.ErrorIs(t, (<-second).Err, ErrClosed)
	assert.Empty(t, rec.all())
}

func TestGenerator_StopDuringGeneration(t *testing.T) {
	src := newBlockingSource(defaultEntries(t))
	g := NewGenerator(src, WithDelay(0), WithNow(fixedClock))

	rec := &commitRecorder{}
	ch := g.Start(context.Background(), rec.commit)
	<-src.entered

	g.Stop()

	res := <-ch
	assert.ErrorIs(t, res.Err, ErrClosed)
	assert.Empty(t, rec.all())
	assert.False(t, g.Pending())
}

func TestGenerator_StartAfterStop(t *testing.T) {
	g := NewGenerator(SourceFunc(func(context.Context) ([]record.DigestEntry, error) {
		t.Fatal("source must not be called after Stop")
		return nil, nil
	}))
	g.Stop()
	g.Stop()

	res, ok := <-g.Start(context.Background(), nil)
	require.True(t, ok)
	assert.ErrorIs(t, res.Err, ErrClosed)

	_, ok = <-g.Start(context.Background(), nil)
	assert.True(t, ok, "every Start delivers one result")
}

func TestGenerator_ParentContextCancelled(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	g := NewGenerator(c, WithDelay(time.Hour))
	defer g.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	ch := g.Start(ctx, nil)
	cancel()

	res := <-ch
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.False(t, g.Pending())
}

func TestGenerator_Failures(t *testing.T) {
	entries := defaultEntries(t)
	boom := errors.New("boom")

	tied := append([]record.DigestEntry(nil), entries...)
	tied[4].Score = tied[3].Score

	tests := []struct {
		name    string
		source  SourceFunc
		wantErr error
	}{
		{
			name: "source error",
			source: func(context.Context) ([]record.DigestEntry, error) {
				return nil, boom
			},
			wantErr: boom,
		},
		{
			name: "short list",
			source: func(context.Context) ([]record.DigestEntry, error) {
				return entries[:3], nil
			},
			wantErr: ErrShortDigest,
		},
		{
			name: "tied scores",
			source: func(context.Context) ([]record.DigestEntry, error) {
				return tied, nil
			},
			wantErr: ErrNotRanked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.source, WithDelay(0))
			defer g.Stop()

			rec := &commitRecorder{}
			res := <-g.Start(context.Background(), rec.commit)
			assert.ErrorIs(t, res.Err, tt.wantErr)
			assert.Empty(t, rec.all())
			assert.Empty(t, res.Digest.Entries)
		})
	}
}

func TestGenerator_CommitError(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	g := NewGenerator(c, WithDelay(0))
	defer g.Stop()

	diskFull := errors.New("disk full")
	rec := &commitRecorder{err: diskFull}
	res := <-g.Start(context.Background(), rec.commit)

	assert.ErrorIs(t, res.Err, diskFull)
	assert.Empty(t, res.Digest.Entries)
}

func TestRank(t *testing.T) {
	entries := make([]record.DigestEntry, 0, 12)
	for i := 0; i < 12; i++ {
		entries = append(entries, record.DigestEntry{Title: "Job", Company: "Co", Score: 100 - i})
	}

	top, err := Rank(entries)
	require.NoError(t, err)
	require.Len(t, top, Size)
	assert.Equal(t, 100, top[0].Score)
	assert.Equal(t, 91, top[Size-1].Score)

	top[0].Score = 0
	assert.Equal(t, 100, entries[0].Score, "Rank must not alias its input")
}

func TestRank_Errors(t *testing.T) {
	_, err := Rank(nil)
	assert.ErrorIs(t, err, ErrShortDigest)

	ascending := make([]record.DigestEntry, Size)
	for i := range ascending {
		ascending[i] = record.DigestEntry{Title: "Job", Company: "Co", Score: i}
	}
	_, err = Rank(ascending)
	assert.ErrorIs(t, err, ErrNotRanked)

	// Only the first Size entries are checked.
	tail := make([]record.DigestEntry, Size+1)
	for i := 0; i < Size; i++ {
		tail[i] = record.DigestEntry{Title: "Job", Company: "Co", Score: 90 - i}
	}
	tail[Size] = record.DigestEntry{Title: "Late", Company: "Co", Score: 99}
	_, err = Rank(tail)
	assert.NoError(t, err)
}

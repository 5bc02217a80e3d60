package tracker

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/jobtracker/internal/digest"
	"github.com/roach88/jobtracker/internal/metrics"
	"github.com/roach88/jobtracker/internal/notify"
	"github.com/roach88/jobtracker/internal/record"
)

// Digest notification messages.
const (
	MessageDigestGenerated = "Daily digest generated successfully"
	MessageDigestFailed    = "Daily digest generation failed"
)

// GenerateDigest starts a digest generation and returns at once. A
// generation already in flight is superseded and never commits.
//
// The generation outlives ctx's cancellation so a caller that does not wait
// (an HTTP handler) still gets its digest. The returned channel receives one
// result and is closed.
func (t *Tracker) GenerateDigest(ctx context.Context) <-chan digest.Result {
	results := t.gen.Start(context.WithoutCancel(ctx), t.commitDigest)

	out := make(chan digest.Result, 1)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer close(out)
		res := <-results
		t.digestFinished(res)
		out <- res
	}()
	return out
}

// commitDigest replaces the stored digest and keeps the stored form in
// memory. It runs while the generator holds its slot, so it must not call
// back into the generator.
func (t *Tracker) commitDigest(ctx context.Context, d record.DigestState) (record.DigestState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := t.persist(ctx, record.KeyDigest, d)
	if err != nil {
		return record.DigestState{}, err
	}
	stored, err := digest.Decode(data)
	if err != nil {
		return record.DigestState{}, fmt.Errorf("reload %s: %w", record.KeyDigest, err)
	}
	if stored == nil {
		return record.DigestState{}, fmt.Errorf("reload %s: empty record", record.KeyDigest)
	}
	t.digest = stored
	return *stored, nil
}

func (t *Tracker) digestFinished(res digest.Result) {
	switch {
	case res.Err == nil:
		t.metrics.IncDigestGeneration(metrics.ResultSuccess)
		t.notify(notify.LevelSuccess, MessageDigestGenerated)
	case errors.Is(res.Err, digest.ErrSuperseded):
		t.metrics.IncDigestGeneration(metrics.ResultSuperseded)
	case errors.Is(res.Err, digest.ErrClosed):
		t.metrics.IncDigestGeneration(metrics.ResultClosed)
	default:
		t.metrics.IncDigestGeneration(metrics.ResultFailed)
		t.logger.Error("digest generation failed", "seq", res.Seq, "error", res.Err)
		t.notify(notify.LevelError, MessageDigestFailed+": "+res.Err.Error())
	}
}

// DigestPending reports whether a generation is in flight.
func (t *Tracker) DigestPending() bool {
	return t.gen.Pending()
}

// CurrentDigest returns the stored digest if it was generated today.
func (t *Tracker) CurrentDigest() (record.DigestState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.currentDigestLocked()
	if d == nil {
		return record.DigestState{}, false
	}
	return *d, true
}

// currentDigestLocked returns a copy of today's digest or nil. t.mu must be
// held.
func (t *Tracker) currentDigestLocked() *record.DigestState {
	d, ok := digest.Current(t.digest, t.now())
	if !ok {
		return nil
	}
	return &record.DigestState{
		Entries:     slices.Clone(d.Entries),
		GeneratedOn: d.GeneratedOn,
	}
}

package tracker

import (
	"context"

	"github.com/roach88/jobtracker/internal/checklist"
	"github.com/roach88/jobtracker/internal/record"
)

// SetTestResult records one checklist result and persists the whole
// checklist. Unknown ids fail with checklist.ErrUnknownTest and write
// nothing.
func (t *Tracker) SetTestResult(ctx context.Context, id string, passed bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.checklist.Passed(id)
	if err := t.checklist.Set(id, passed); err != nil {
		return err
	}
	if _, err := t.persist(ctx, record.KeyChecklist, t.checklist.Record()); err != nil {
		_ = t.checklist.Set(id, prev)
		return err
	}

	t.logger.Debug("test result recorded", "test", id, "passed", passed)
	t.refreshGateLocked()
	return nil
}

// ResetAll marks every test as failing and persists the checklist.
func (t *Tracker) ResetAll(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.checklist.Record()
	t.checklist.Reset()
	if _, err := t.persist(ctx, record.KeyChecklist, t.checklist.Record()); err != nil {
		for id, passed := range prev {
			_ = t.checklist.Set(id, passed)
		}
		return err
	}

	t.logger.Info("checklist reset")
	t.refreshGateLocked()
	return nil
}

// refreshGateLocked recomputes the gate from the checklist. t.mu must be held.
func (t *Tracker) refreshGateLocked() {
	passed := t.checklist.PassedCount()
	t.metrics.SetPassed(passed)

	state, changed := t.gate.Update(passed)
	if !changed {
		return
	}
	t.metrics.SetShipUnlocked(state == checklist.Unlocked)
	t.metrics.IncGateTransition(state.String())
	t.logger.Info("ship gate changed", "gate", state, "passed", passed)
}

// PassedCount returns the number of passing tests.
func (t *Tracker) PassedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checklist.PassedCount()
}

// IsShipUnlocked reports whether every test passes.
func (t *Tracker) IsShipUnlocked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gate.Unlocked()
}

// Gate returns the ship gate state.
func (t *Tracker) Gate() checklist.GateState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gate.State()
}

// Checklist returns a copy of the checklist record.
func (t *Tracker) Checklist() record.ChecklistState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checklist.Record()
}

// Summary returns checklist progress.
func (t *Tracker) Summary() checklist.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checklist.Summarize()
}

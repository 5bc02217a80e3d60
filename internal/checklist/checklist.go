// Package checklist holds the ten-step verification checklist and the gate
// that keeps the ship destination locked until every step has passed.
package checklist

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/jobtracker/internal/record"
)

// Test identifiers. The set is closed: nothing outside it is ever stored or
// counted.
const (
	TestPreferences      = "preferences"
	TestMatchScore       = "match-score"
	TestShowMatches      = "show-matches"
	TestSaveJob          = "save-job"
	TestApplyTab         = "apply-tab"
	TestStatusUpdate     = "status-update"
	TestStatusFilter     = "status-filter"
	TestDigestGeneration = "digest-generation"
	TestDigestPersist    = "digest-persist"
	TestNoErrors         = "no-errors"
)

// Total is the number of tests in the checklist.
const Total = 10

var testIDs = []string{
	TestPreferences,
	TestMatchScore,
	TestShowMatches,
	TestSaveJob,
	TestApplyTab,
	TestStatusUpdate,
	TestStatusFilter,
	TestDigestGeneration,
	TestDigestPersist,
	TestNoErrors,
}

// ErrUnknownTest is returned for identifiers outside the fixed set.
var ErrUnknownTest = errors.New("unknown test id")

// IDs returns the fixed test identifiers in display order.
func IDs() []string {
	return slices.Clone(testIDs)
}

// IsKnown reports whether id belongs to the fixed set.
func IsKnown(id string) bool {
	return slices.Contains(testIDs, id)
}

// State is the in-memory checklist. The zero value is not usable; call New
// or Decode.
type State struct {
	flags map[string]bool
}

// New returns a checklist with every test failing.
func New() *State {
	s := &State{flags: make(map[string]bool, Total)}
	for _, id := range testIDs {
		s.flags[id] = false
	}
	return s
}

// Decode builds a State from a stored record. Missing ids are treated as
// failing and ids outside the fixed set are dropped.
func Decode(data []byte) (*State, error) {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode checklist: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode checklist: not an object")
	}

	s := New()
	for _, id := range testIDs {
		s.flags[id] = raw[id]
	}
	return s, nil
}

// Record returns the persisted form of the state, holding every fixed id.
func (s *State) Record() record.ChecklistState {
	out := make(record.ChecklistState, Total)
	for _, id := range testIDs {
		out[id] = s.flags[id]
	}
	return out
}

// Set records the result of one test.
func (s *State) Set(id string, passed bool) error {
	if !IsKnown(id) {
		return fmt.Errorf("%w: %q", ErrUnknownTest, id)
	}
	s.flags[id] = passed
	return nil
}

// Passed reports the stored result of one test. Unknown ids report false.
func (s *State) Passed(id string) bool {
	return s.flags[id]
}

// PassedCount returns the number of passing tests.
func (s *State) PassedCount() int {
	n := 0
	for _, id := range testIDs {
		if s.flags[id] {
			n++
		}
	}
	return n
}

// Complete reports whether every test passes.
func (s *State) Complete() bool {
	return s.PassedCount() == Total
}

// Reset marks every test as failing. Calling it repeatedly has no further
// effect.
func (s *State) Reset() {
	for _, id := range testIDs {
		s.flags[id] = false
	}
}

// Summary is the derived progress shown next to the checklist.
type Summary struct {
	Passed  int    `json:"passed"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// Summary messages.
const (
	MessageReady   = "All tests passed! Ready to ship."
	MessagePending = "Resolve all issues before shipping."
)

// Summarize derives progress from the current flags.
func (s *State) Summarize() Summary {
	passed := s.PassedCount()
	msg := MessagePending
	if passed == Total {
		msg = MessageReady
	}
	return Summary{
		Passed:  passed,
		Total:   Total,
		Percent: passed * 100 / Total,
		Message: msg,
	}
}

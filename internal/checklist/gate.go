package checklist

import "fmt"

// GateState is the lock state of the ship destination.
type GateState int

const (
	// Locked is the initial state; the ship destination is not navigable.
	Locked GateState = iota
	// Unlocked means every test passes.
	Unlocked
)

func (g GateState) String() string {
	if g == Unlocked {
		return "UNLOCKED"
	}
	return "LOCKED"
}

// MarshalText renders the state as "LOCKED" or "UNLOCKED".
func (g GateState) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText parses "LOCKED" or "UNLOCKED".
func (g *GateState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "LOCKED":
		*g = Locked
	case "UNLOCKED":
		*g = Unlocked
	default:
		return fmt.Errorf("unknown gate state %q", text)
	}
	return nil
}

// Gate derives the lock state from a passed count. It has no hysteresis:
// the state follows the count on every update.
type Gate struct {
	state GateState
}

// NewGate returns a locked gate.
func NewGate() *Gate {
	return &Gate{state: Locked}
}

// State returns the current lock state.
func (g *Gate) State() GateState {
	return g.state
}

// Unlocked reports whether the ship destination is navigable.
func (g *Gate) Unlocked() bool {
	return g.state == Unlocked
}

// Update recomputes the state from passed and reports whether it changed.
func (g *Gate) Update(passed int) (GateState, bool) {
	next := Locked
	if passed == Total {
		next = Unlocked
	}
	changed := next != g.state
	g.state = next
	return next, changed
}

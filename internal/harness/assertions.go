package harness

import (
	"context"
	"fmt"
	"strings"
)

// EvaluateAssertions checks every assertion against the harness state and
// returns one message per failure.
func EvaluateAssertions(ctx context.Context, h *Harness, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(ctx, h, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d] %s: %v", i, a.Type, err))
		}
	}
	return failures
}

func evaluate(ctx context.Context, h *Harness, a Assertion) error {
	tr := h.tracker
	switch a.Type {
	case AssertPassedCount:
		if got := tr.PassedCount(); got != *a.Count {
			return fmt.Errorf("expected %d passed, got %d", *a.Count, got)
		}
	case AssertGate:
		if got := tr.Gate().String(); got != a.State {
			return fmt.Errorf("expected gate %s, got %s", a.State, got)
		}
	case AssertRoute:
		if got := string(tr.Route()); got != a.Route {
			return fmt.Errorf("expected route %s, got %s", a.Route, got)
		}
	case AssertPreferences:
		p := tr.Preferences()
		if a.MatchThreshold != nil && p.MatchThreshold != *a.MatchThreshold {
			return fmt.Errorf("expected matchThreshold %d, got %d", *a.MatchThreshold, p.MatchThreshold)
		}
		if a.EmailNotifications != nil && p.EmailNotifications != *a.EmailNotifications {
			return fmt.Errorf("expected emailNotifications %t, got %t", *a.EmailNotifications, p.EmailNotifications)
		}
	case AssertDigest:
		d, ok := tr.CurrentDigest()
		if ok != *a.Present {
			return fmt.Errorf("expected present=%t, got %t", *a.Present, ok)
		}
		if ok && a.Entries != nil && len(d.Entries) != *a.Entries {
			return fmt.Errorf("expected %d entries, got %d", *a.Entries, len(d.Entries))
		}
	case AssertNotification:
		return assertNotification(h, a)
	case AssertStored:
		return assertStored(ctx, h, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// assertNotification passes when any notification of the session contains
// the message and, if given, has the level.
func assertNotification(h *Harness, a Assertion) error {
	var seen []string
	for _, n := range h.notes.Recent() {
		if strings.Contains(n.Message, a.Message) && (a.Level == "" || string(n.Level) == a.Level) {
			return nil
		}
		seen = append(seen, fmt.Sprintf("%s: %s", n.Level, n.Message))
	}
	return fmt.Errorf("no %s notification containing %q (seen %v)", levelOrAny(a.Level), a.Message, seen)
}

func levelOrAny(level string) string {
	if level == "" {
		return "any"
	}
	return level
}

// assertStored compares the raw stored value. With present: false the key
// must be absent.
func assertStored(ctx context.Context, h *Harness, a Assertion) error {
	value, found, err := h.store.Get(ctx, a.Key)
	if err != nil {
		return err
	}
	if a.Present != nil && !*a.Present {
		if found {
			return fmt.Errorf("expected %s absent, found %s", a.Key, value)
		}
		return nil
	}
	if !found {
		return fmt.Errorf("expected %s stored, not found", a.Key)
	}
	if a.Value != "" && string(value) != a.Value {
		return fmt.Errorf("expected %s = %s, got %s", a.Key, a.Value, value)
	}
	return nil
}

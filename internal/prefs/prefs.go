// Package prefs loads user preferences with per-field defaults.
package prefs

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/jobtracker/internal/record"
)

// Defaults applied to fields that have never been stored.
const (
	DefaultMatchThreshold     = 75
	DefaultEmailNotifications = true
)

// Threshold bounds enforced by presenting controls.
const (
	MinThreshold = 0
	MaxThreshold = 100
)

// Defaults returns the preferences used when nothing has been stored.
func Defaults() record.Preferences {
	return record.Preferences{
		MatchThreshold:     DefaultMatchThreshold,
		EmailNotifications: DefaultEmailNotifications,
	}
}

// stored mirrors record.Preferences with optional fields so a partially
// written record keeps the defaults of the fields it lacks.
type stored struct {
	MatchThreshold     *int  `json:"matchThreshold"`
	EmailNotifications *bool `json:"emailNotifications"`
}

// Decode builds preferences from a stored record, defaulting each missing
// field on its own. Notifications stay enabled unless explicitly disabled.
func Decode(data []byte) (record.Preferences, error) {
	var raw *stored
	if err := json.Unmarshal(data, &raw); err != nil {
		return Defaults(), fmt.Errorf("decode preferences: %w", err)
	}
	if raw == nil {
		return Defaults(), fmt.Errorf("decode preferences: not an object")
	}

	p := Defaults()
	if raw.MatchThreshold != nil {
		p.MatchThreshold = *raw.MatchThreshold
	}
	if raw.EmailNotifications != nil {
		p.EmailNotifications = *raw.EmailNotifications
	}
	return p, nil
}

// ValidThreshold reports whether v lies within the range offered by the
// threshold control.
func ValidThreshold(v int) bool {
	return v >= MinThreshold && v <= MaxThreshold
}

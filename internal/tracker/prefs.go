package tracker

import (
	"context"

	"github.com/roach88/jobtracker/internal/record"
)

// Preferences returns the current preferences.
func (t *Tracker) Preferences() record.Preferences {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prefs
}

// SetMatchThreshold stores and persists the match threshold. The range is
// checked by whatever presents the control, not here.
func (t *Tracker) SetMatchThreshold(ctx context.Context, v int) error {
	return t.updatePrefs(ctx, func(p *record.Preferences) {
		p.MatchThreshold = v
	})
}

// SetEmailNotifications stores and persists the email notification flag.
func (t *Tracker) SetEmailNotifications(ctx context.Context, enabled bool) error {
	return t.updatePrefs(ctx, func(p *record.Preferences) {
		p.EmailNotifications = enabled
	})
}

func (t *Tracker) updatePrefs(ctx context.Context, apply func(*record.Preferences)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := t.prefs
	apply(&next)
	if _, err := t.persist(ctx, record.KeyPreferences, next); err != nil {
		return err
	}
	t.prefs = next
	t.logger.Debug("preferences saved", "match_threshold", next.MatchThreshold, "email_notifications", next.EmailNotifications)
	return nil
}

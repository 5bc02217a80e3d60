package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/jobtracker/internal/digest"
	"github.com/roach88/jobtracker/internal/notify"
	"github.com/roach88/jobtracker/internal/store"
	"github.com/roach88/jobtracker/internal/tracker"
)

// session is one tracker session over the configured database.
type session struct {
	store   *store.Store
	tracker *tracker.Tracker
	notes   *notify.Log
}

// openSession opens the database and loads a tracker from it. Failures are
// command errors: nothing has been changed yet.
func (o *RootOptions) openSession(ctx context.Context, extra ...tracker.Option) (*session, error) {
	logger := o.Logger()

	logger.Debug("opening database", "path", o.Database)
	st, err := store.Open(o.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	notes := notify.NewLog(notify.DefaultLimit, logger)
	opts := []tracker.Option{
		tracker.WithLogger(logger),
		tracker.WithNotifier(notes),
		tracker.WithDigestDelay(o.Delay),
	}
	if o.Now != nil {
		opts = append(opts, tracker.WithNow(o.Now))
	}
	if o.Catalog != "" {
		c, err := digest.LoadCatalog(o.Catalog)
		if err != nil {
			_ = st.Close()
			return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
		}
		opts = append(opts, tracker.WithDigestSource(c))
	}
	opts = append(opts, extra...)

	tr, err := tracker.New(ctx, st, opts...)
	if err != nil {
		_ = st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load tracker state", err)
	}
	return &session{store: st, tracker: tr, notes: notes}, nil
}

// Close stops the tracker, then closes the database.
func (s *session) Close() error {
	return errors.Join(s.tracker.Close(), s.store.Close())
}

// notificationList renders notifications one per line.
type notificationList []notify.Notification

func (l notificationList) String() string {
	var b strings.Builder
	for i, n := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s", levelMark(n.Level), n.Message)
	}
	return b.String()
}

func levelMark(level notify.Level) string {
	switch level {
	case notify.LevelSuccess:
		return "✓"
	case notify.LevelWarning:
		return "!"
	case notify.LevelError:
		return "✗"
	default:
		return "·"
	}
}

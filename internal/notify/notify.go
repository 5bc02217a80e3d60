// Package notify carries user-facing notifications from the tracker to
// whatever presents them.
package notify

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a single message raised for the user.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// DefaultLimit is the number of notifications a Log keeps by default.
const DefaultLimit = 50

// Log keeps the most recent notifications in memory and mirrors each one to
// a logger. It is safe for concurrent use.
type Log struct {
	mu     sync.Mutex
	limit  int
	items  []Notification
	logger *slog.Logger
}

// NewLog creates a Log holding at most limit notifications. A limit below 1
// uses DefaultLimit; a nil logger discards.
func NewLog(limit int, logger *slog.Logger) *Log {
	if limit < 1 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Log{limit: limit, logger: logger}
}

// Notify records n, dropping the oldest entry when full.
func (l *Log) Notify(n Notification) {
	l.mu.Lock()
	l.items = append(l.items, n)
	if over := len(l.items) - l.limit; over > 0 {
		l.items = slices.Delete(l.items, 0, over)
	}
	l.mu.Unlock()

	l.logger.Log(context.Background(), slogLevel(n.Level), n.Message, "notification", string(n.Level))
}

// Recent returns the held notifications, oldest first.
func (l *Log) Recent() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

func slogLevel(level Level) slog.Level {
	switch level {
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

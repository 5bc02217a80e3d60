package tracker

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/jobtracker/internal/notify"
	"github.com/roach88/jobtracker/internal/record"
)

// JobStatus is the application status of a job.
type JobStatus string

const (
	StatusNotApplied JobStatus = "not-applied"
	StatusApplied    JobStatus = "applied"
	StatusRejected   JobStatus = "rejected"
	StatusSelected   JobStatus = "selected"
)

// StatusAll is the filter value matching every status.
const StatusAll = "all"

var statuses = []JobStatus{StatusNotApplied, StatusApplied, StatusRejected, StatusSelected}

// MessageFiltersApplied is raised by ApplyFilters.
const MessageFiltersApplied = "Job filters applied"

// ErrUnknownStatus is returned for status names outside the fixed set.
var ErrUnknownStatus = errors.New("unknown job status")

// Statuses returns every job status.
func Statuses() []JobStatus {
	return slices.Clone(statuses)
}

// ParseJobStatus validates a status name.
func ParseJobStatus(s string) (JobStatus, error) {
	st := JobStatus(s)
	if !slices.Contains(statuses, st) {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

// Jobs returns a copy of the stored job list.
func (t *Tracker) Jobs() []record.Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.jobs)
}

// SaveJob acknowledges saving a job. Nothing is persisted.
func (t *Tracker) SaveJob(title string) {
	t.logger.Debug("job saved", "title", title)
	t.notify(notify.LevelSuccess, fmt.Sprintf("Job \"%s\" saved", title))
}

// SetJobStatus acknowledges a status change for a job. Nothing is persisted.
func (t *Tracker) SetJobStatus(title, status string) error {
	st, err := ParseJobStatus(status)
	if err != nil {
		return err
	}
	t.logger.Debug("job status updated", "title", title, "status", st)
	t.notify(notify.LevelSuccess, fmt.Sprintf("Job \"%s\" status updated to %s", title, st))
	return nil
}

// ApplyFilters acknowledges a filter change. status is a job status or
// StatusAll; empty means StatusAll. No list is filtered.
func (t *Tracker) ApplyFilters(showOnlyMatches bool, status string) error {
	if status == "" {
		status = StatusAll
	}
	if status != StatusAll {
		if _, err := ParseJobStatus(status); err != nil {
			return err
		}
	}
	t.logger.Debug("job filters applied", "show_only_matches", showOnlyMatches, "status", status)
	t.notify(notify.LevelSuccess, MessageFiltersApplied)
	return nil
}

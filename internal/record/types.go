package record

import "time"

// Store keys. These are the durable contract shared with earlier versions of
// the tracker and must not change.
const (
	KeyChecklist   = "jnt_test_states"
	KeyPreferences = "jnt_preferences"
	KeyJobs        = "jnt_jobs"
	KeyDigest      = "jnt_digest"
)

// DateLayout is the calendar date format used for DigestState.GeneratedOn.
// It matches JavaScript's Date.prototype.toDateString ("Sat Oct 17 2026").
const DateLayout = "Mon Jan 02 2006"

// FormatDate renders t as a calendar date in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ChecklistState maps test identifiers to their pass flag.
type ChecklistState map[string]bool

// Preferences holds the user's tracker settings.
type Preferences struct {
	MatchThreshold     int  `json:"matchThreshold"`
	EmailNotifications bool `json:"emailNotifications"`
}

// DigestEntry is one ranked item of a digest. Rank is its position.
type DigestEntry struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	Score   int    `json:"score"`
}

// DigestState is a generated digest together with the calendar date it was
// generated on.
type DigestState struct {
	Entries     []DigestEntry `json:"entries"`
	GeneratedOn string        `json:"generatedOn"`
}

// FreshOn reports whether the digest was generated on the calendar day of t.
func (d DigestState) FreshOn(t time.Time) bool {
	return d.GeneratedOn == FormatDate(t)
}

// Job is an entry of the persisted job list.
type Job struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Score   int    `json:"score"`
}

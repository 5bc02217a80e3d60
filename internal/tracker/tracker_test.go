package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jobtracker/internal/checklist"
	"github.com/roach88/jobtracker/internal/digest"
	"github.com/roach88/jobtracker/internal/prefs"
	"github.com/roach88/jobtracker/internal/record"
)

func TestNew_EmptyStoreUsesDefaults(t *testing.T) {
	st := newMemStore()
	tr, _ := createTestTracker(t, st)

	assert.Equal(t, "session-1", tr.Session())
	assert.Equal(t, record.Preferences{MatchThreshold: 75, EmailNotifications: true}, tr.Preferences())
	assert.Equal(t, 0, tr.PassedCount())
	assert.False(t, tr.IsShipUnlocked())
	assert.Equal(t, checklist.Locked, tr.Gate())
	assert.Equal(t, RouteDashboard, tr.Route())
	assert.Empty(t, tr.Jobs())
	assert.NotNil(t, tr.Jobs())

	_, ok := tr.CurrentDigest()
	assert.False(t, ok)

	cl := tr.Checklist()
	assert.Len(t, cl, checklist.Total)
	for _, id := range checklist.IDs() {
		assert.False(t, cl[id], id)
	}

	// Loading never writes.
	_, ok = st.raw(record.KeyChecklist)
	assert.False(t, ok)
	_, ok = st.raw(record.KeyPreferences)
	assert.False(t, ok)
}

func TestNew_MalformedRecordsUseDefaults(t *testing.T) {
	st := newMemStore()
	st.put(record.KeyChecklist, `["preferences"]`)
	st.put(record.KeyPreferences, `{"matchThreshold":"high"}`)
	st.put(record.KeyJobs, `{"not":"a list"}`)
	st.put(record.KeyDigest, `{"entries":`)

	tr, _ := createTestTracker(t, st)

	assert.Equal(t, prefs.Defaults(), tr.Preferences())
	assert.Equal(t, 0, tr.PassedCount())
	assert.Empty(t, tr.Jobs())
	_, ok := tr.CurrentDigest()
	assert.False(t, ok)

	// The bad values stay until overwritten.
	raw, _ := st.raw(record.KeyPreferences)
	assert.Equal(t, `{"matchThreshold":"high"}`, raw)

	require.NoError(t, tr.SetTestResult(context.Background(), checklist.TestSaveJob, true))
	assert.Equal(t, 1, tr.PassedCount())
}

func TestNew_PartialPreferences(t *testing.T) {
	st := newMemStore()
	st.put(record.KeyPreferences, `{"matchThreshold":60}`)

	tr, _ := createTestTracker(t, st)
	assert.Equal(t, record.Preferences{MatchThreshold: 60, EmailNotifications: true}, tr.Preferences())
}

func TestNew_ExplicitlyDisabledEmail(t *testing.T) {
	st := newMemStore()
	st.put(record.KeyPreferences, `{"emailNotifications":false}`)

	tr, _ := createTestTracker(t, st)
	assert.Equal(t, record.Preferences{MatchThreshold: 75, EmailNotifications: false}, tr.Preferences())
}

func TestNew_LoadsJobs(t *testing.T) {
	st := newMemStore()
	st.put(record.KeyJobs, `[{"company":"TechCorp","id":"j1","score":95,"title":"Senior React Developer"}]`)

	tr, _ := createTestTracker(t, st)
	assert.Equal(t, []record.Job{{ID: "j1", Title: "Senior React Developer", Company: "TechCorp", Score: 95}}, tr.Jobs())
}

func TestNew_CompleteChecklistStartsUnlocked(t *testing.T) {
	st := newMemStore()
	all := make(map[string]bool)
	for _, id := range checklist.IDs() {
		all[id] = true
	}
	data, err := json.Marshal(all)
	require.NoError(t, err)
	st.put(record.KeyChecklist, string(data))

	tr, _ := createTestTracker(t, st)
	assert.True(t, tr.IsShipUnlocked())
	assert.Equal(t, checklist.Unlocked, tr.Gate())
}

func TestPersistReload_RoundTrip(t *testing.T) {
	st := createSQLiteStore(t)
	ctx := context.Background()

	first, _ := createTestTracker(t, st)
	require.NoError(t, first.SetTestResult(ctx, checklist.TestPreferences, true))
	require.NoError(t, first.SetTestResult(ctx, checklist.TestNoErrors, true))
	require.NoError(t, first.SetMatchThreshold(ctx, 42))
	require.NoError(t, first.SetEmailNotifications(ctx, false))
	res := <-first.GenerateDigest(ctx)
	require.NoError(t, res.Err)
	require.NoError(t, first.Close())

	second, _ := createTestTracker(t, st)
	assert.Equal(t, first.Checklist(), second.Checklist())
	assert.Equal(t, 2, second.PassedCount())
	assert.Equal(t, record.Preferences{MatchThreshold: 42, EmailNotifications: false}, second.Preferences())

	d, ok := second.CurrentDigest()
	require.True(t, ok)
	assert.Equal(t, res.Digest, d)
}

func TestPersistReload_DecomposedTextMatchesStore(t *testing.T) {
	st := createSQLiteStore(t)
	ctx := context.Background()

	// "Cafe\u0301" spells Café with a combining acute accent.
	decomposed := digest.SourceFunc(func(context.Context) ([]record.DigestEntry, error) {
		entries := make([]record.DigestEntry, digest.Size)
		for i := range entries {
			entries[i] = record.DigestEntry{
				Title:   fmt.Sprintf("Cafe\u0301 dev %d", i+1),
				Company: "Re\u0301sume\u0301 Co",
				Score:   90 - i,
			}
		}
		return entries, nil
	})

	first, _ := createTestTracker(t, st, WithDigestSource(decomposed))
	res := <-first.GenerateDigest(ctx)
	require.NoError(t, res.Err)
	before, ok := first.CurrentDigest()
	require.True(t, ok)
	assert.Equal(t, res.Digest, before)
	assert.Equal(t, "Caf\u00e9 dev 1", before.Entries[0].Title)
	assert.Equal(t, "R\u00e9sum\u00e9 Co", before.Entries[0].Company)
	require.NoError(t, first.Close())

	second, _ := createTestTracker(t, st)
	after, ok := second.CurrentDigest()
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestSnapshot(t *testing.T) {
	tr, _ := createTestTracker(t, newMemStore())
	require.NoError(t, tr.SetTestResult(context.Background(), checklist.TestApplyTab, true))

	snap := tr.Snapshot()
	assert.Equal(t, "session-1", snap.Session)
	assert.True(t, snap.Checklist[checklist.TestApplyTab])
	assert.Equal(t, checklist.Summary{Passed: 1, Total: 10, Percent: 10, Message: checklist.MessagePending}, snap.Summary)
	assert.Equal(t, checklist.Locked, snap.Gate)
	assert.Equal(t, RouteDashboard, snap.Route)
	assert.Nil(t, snap.Digest)
	assert.False(t, snap.DigestPending)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"gate":"LOCKED"`)
	assert.Contains(t, string(data), `"digest":null`)
}

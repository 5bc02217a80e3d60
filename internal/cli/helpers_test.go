package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/jobtracker/internal/config"
)

// today is the wall clock of most CLI tests: Saturday 17 October 2026.
var today = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

// isolateEnv clears every JNT_* variable and moves into an empty directory
// so no .env file is picked up.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvDB, config.EnvListenAddr, config.EnvDigestDelay, config.EnvLogLevel, config.EnvCatalog} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Chdir(t.TempDir())
}

// createTestDB returns a database path in a fresh temp directory.
func createTestDB(t *testing.T) string {
	t.Helper()
	isolateEnv(t)
	return filepath.Join(t.TempDir(), "jnt.db")
}

// execute runs the root command with the given options and stdin.
func execute(t *testing.T, opts *RootOptions, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCommand(opts)
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// runAt runs a command against db with no digest delay at the given time.
func runAt(t *testing.T, now time.Time, db string, args ...string) (string, error) {
	t.Helper()
	args = append(args, "--db", db, "--delay", "0")
	stdout, _, err := execute(t, &RootOptions{Now: func() time.Time { return now }}, "", args...)
	return stdout, err
}

// runCLI runs a command against db at today.
func runCLI(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	return runAt(t, today, db, args...)
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

package log

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggersDiscardBeforeInitialize(t *testing.T) {
	assert.NotPanics(t, func() {
		InfoLog.Printf("nobody hears this")
		ErrorLog.Print("or this")
	})
}

func TestInitialize_WritesToTempFile(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	Initialize(false)
	InfoLog.Printf("loaded scenario %q", "testbed")
	WarningLog.Printf("dropped link to %s", "99")
	DebugLog.Printf("hidden unless verbose")
	Close()

	data, err := os.ReadFile(Path())
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `loaded scenario "testbed"`)
	assert.Contains(t, out, "dropped link to 99")
	assert.NotContains(t, out, "hidden unless verbose")
}

func TestInitialize_VerboseEnablesDebug(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	Initialize(true)
	DebugLog.Printf("popup skipped for %s", "7")
	Close()

	data, err := os.ReadFile(Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "popup skipped for 7")
}

func TestClose_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Close()
		Close()
	})
}

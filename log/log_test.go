package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_PopoutUsesItsOwnFile(t *testing.T) {
	dir := t.TempDir()
	origMain, origPopout := logFileName, popoutLogFileName
	logFileName = filepath.Join(dir, "glrhs.log")
	popoutLogFileName = filepath.Join(dir, "glrhs-popout.log")
	t.Cleanup(func() {
		logFileName, popoutLogFileName = origMain, origPopout
		Discard()
	})

	Initialize(true)
	assert.Equal(t, popoutLogFileName, activeLogFile)
	InfoLog.Printf("popout synced")
	Close()

	data, err := os.ReadFile(popoutLogFileName)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[POPOUT] INFO:")
	assert.Contains(t, string(data), "popout synced")
	_, err = os.Stat(logFileName)
	assert.True(t, os.IsNotExist(err), "the main window log is untouched")

	Initialize(false)
	assert.Equal(t, logFileName, activeLogFile)
	Close()
}

func TestClose_WithoutInitialize(t *testing.T) {
	assert.NotPanics(t, Close)
}

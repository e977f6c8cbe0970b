package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/kastheco/glrhs/config"
	"github.com/kastheco/glrhs/config/journal"
	"github.com/kastheco/glrhs/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	for _, name := range []string{"popout", "journal", "check", "debug", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		require.NotNil(t, cmd)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestPopoutCommand(t *testing.T) {
	assert.Equal(t, "glrhs popout --team t1 --channel c1", popoutCommand("t1", "c1"))
	assert.Equal(t, "glrhs popout --channel c1", popoutCommand("", "c1"))
}

func TestApplyFlags_OverrideConfig(t *testing.T) {
	t.Cleanup(func() {
		serverFlag, channelFlag, journalFlag = "", "", ""
	})
	serverFlag = "https://other.example.com"
	channelFlag = "c9"

	cfg := config.DefaultConfig()
	cfg.ServerURL = "https://chat.example.com"
	cfg.TeamID = "t1"
	applyFlags(cfg)

	assert.Equal(t, "https://other.example.com", cfg.ServerURL)
	assert.Equal(t, "c9", cfg.ChannelID)
	assert.Equal(t, "t1", cfg.TeamID, "unset flags leave the config alone")
}

func TestJournalFlags_Filter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := journalFlags{window: "popout", channel: "c1", kinds: []string{"received_connected"}, limit: 10, since: time.Hour}

	qf, err := f.filter(now)
	require.NoError(t, err)
	assert.Equal(t, journal.WindowPopout, qf.Window)
	assert.Equal(t, "c1", qf.ChannelID)
	assert.Equal(t, []state.EventKind{"RECEIVED_CONNECTED"}, qf.Kinds)
	assert.Equal(t, 10, qf.Limit)
	assert.Equal(t, now.Add(-time.Hour), qf.After)

	_, err = journalFlags{window: "sidebar"}.filter(now)
	assert.Error(t, err)
}

func TestPrintJournal(t *testing.T) {
	var buf bytes.Buffer
	printJournal(&buf, nil)
	assert.Equal(t, "no journal entries\n", buf.String())

	buf.Reset()
	printJournal(&buf, []journal.Entry{{
		Kind:      state.KindReceivedConnected,
		Timestamp: time.Now(),
		Window:    journal.WindowMain,
		ChannelID: "c1",
		Message:   "connected as @alice",
	}})
	out := buf.String()
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, "RECEIVED_CONNECTED")
	assert.Contains(t, out, "connected as @alice")
}

func TestJournalCommand_ReadsDatabase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GLRHS_CONFIG_DIR", dir)
	dbPath := filepath.Join(dir, "journal.db")

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	j.Record(journal.Entry{Kind: state.KindSetRHSViewType, Window: journal.WindowMain, Message: "rhs shown"})
	j.Record(journal.Entry{Kind: state.KindReceivedConnected, Window: journal.WindowPopout, Message: "popout connected"})
	require.NoError(t, j.Close())

	t.Cleanup(func() { journalFlag = "" })
	journalFlag = dbPath

	cmd := newJournalCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--window", "popout"})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "popout connected")
	assert.NotContains(t, out, "rhs shown")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "glrhs version "+version+"\n", buf.String())
}

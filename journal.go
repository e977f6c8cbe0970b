package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kastheco/glrhs/config/journal"
	"github.com/kastheco/glrhs/state"
	"github.com/kastheco/glrhs/ui"
	"github.com/spf13/cobra"
)

type journalFlags struct {
	window  string
	channel string
	kinds   []string
	limit   int
	since   time.Duration
}

func newJournalCmd() *cobra.Command {
	var f journalFlags
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print recorded state events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if cfg.JournalPath == "" {
				return fmt.Errorf("the journal is disabled: journal_path is empty")
			}
			j, err := journal.Open(cfg.JournalPath)
			if err != nil {
				return err
			}
			defer j.Close()

			// The persistent --channel flag narrows the journal to one channel.
			f.channel = channelFlag
			filter, err := f.filter(time.Now())
			if err != nil {
				return err
			}
			entries, err := j.Query(filter)
			if err != nil {
				return err
			}
			printJournal(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.window, "window", "", "only entries of this window (main or popout)")
	cmd.Flags().StringSliceVar(&f.kinds, "kind", nil, "only these event kinds, e.g. RECEIVED_CONNECTED")
	cmd.Flags().IntVar(&f.limit, "limit", 50, "maximum number of entries")
	cmd.Flags().DurationVar(&f.since, "since", 0, "only entries newer than this, e.g. 1h")
	return cmd
}

func (f journalFlags) filter(now time.Time) (journal.QueryFilter, error) {
	qf := journal.QueryFilter{ChannelID: f.channel, Limit: f.limit}
	switch w := journal.Window(f.window); w {
	case "":
	case journal.WindowMain, journal.WindowPopout:
		qf.Window = w
	default:
		return qf, fmt.Errorf("unknown window %q, want main or popout", f.window)
	}
	for _, k := range f.kinds {
		qf.Kinds = append(qf.Kinds, state.EventKind(strings.ToUpper(k)))
	}
	if f.since > 0 {
		qf.After = now.Add(-f.since)
	}
	return qf, nil
}

var journalHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorIris).Padding(0, 1)
var journalCellStyle = lipgloss.NewStyle().Padding(0, 1)

func printJournal(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no journal entries")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ui.ColorMuted)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return journalHeaderStyle
			}
			return journalCellStyle
		}).
		Headers("TIME", "WINDOW", "CHANNEL", "KIND", "MESSAGE")
	for _, e := range entries {
		t.Row(
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			string(e.Window),
			e.ChannelID,
			string(e.Kind),
			e.Message,
		)
	}
	fmt.Fprintln(w, t.String())
}

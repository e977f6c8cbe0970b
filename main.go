package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kastheco/glrhs/actions"
	"github.com/kastheco/glrhs/app"
	"github.com/kastheco/glrhs/config"
	"github.com/kastheco/glrhs/config/journal"
	"github.com/kastheco/glrhs/host"
	"github.com/kastheco/glrhs/host/mattermost"
	"github.com/kastheco/glrhs/host/socket"
	"github.com/kastheco/glrhs/internal/pluginapi"
	sentrypkg "github.com/kastheco/glrhs/internal/sentry"
	"github.com/kastheco/glrhs/log"
	"github.com/kastheco/glrhs/plugin"
	"github.com/kastheco/glrhs/state"
	"github.com/kastheco/glrhs/ui"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	// Flags that override config.
	serverFlag   string
	tokenFlag    string
	pluginIDFlag string
	teamFlag     string
	channelFlag  string
	socketFlag   string
	journalFlag  string

	rootCmd = &cobra.Command{
		Use:   "glrhs",
		Short: "glrhs - GitLab merge requests, reviews, todos and issues for a Mattermost channel.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(false)
		},
	}

	popoutCmd = &cobra.Command{
		Use:   "popout",
		Short: "Open a popout window that syncs its panel state from the running main window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(true)
		},
	}

	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "Print debug information like config paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Initialize(false)
			defer log.Close()

			cfg := loadConfig()

			configDir, err := config.GetConfigDir()
			if err != nil {
				return fmt.Errorf("failed to get config directory: %w", err)
			}
			redacted := *cfg
			if redacted.Token != "" {
				redacted.Token = "<redacted>"
			}
			configJson, _ := json.MarshalIndent(redacted, "", "  ")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n%s\n", filepath.Join(configDir, config.ConfigFileName), configJson)
			fmt.Fprintf(out, "API: %s\n", cfg.APIBaseURL())
			if ws, err := cfg.WebSocketURL(); err == nil {
				fmt.Fprintf(out, "WebSocket: %s\n", ws)
			}
			return nil
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of glrhs",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "glrhs version %s\n", version)
		},
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&serverFlag, "server", "", "Mattermost site URL (overrides server_url)")
	flags.StringVar(&tokenFlag, "token", "", "Mattermost access token (overrides token)")
	flags.StringVar(&pluginIDFlag, "plugin-id", "", "GitLab plugin id (overrides plugin_id)")
	flags.StringVar(&teamFlag, "team", "", "team id (overrides team_id)")
	flags.StringVar(&channelFlag, "channel", "", "channel id the panel is opened for (overrides channel_id)")
	flags.StringVar(&socketFlag, "socket", "", "popout socket path (overrides popout_socket)")
	flags.StringVar(&journalFlag, "journal", "", "event journal database (overrides journal_path)")

	rootCmd.AddCommand(popoutCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newJournalCmd())
	rootCmd.AddCommand(newCheckCmd())
}

// loadConfig reads the config files and applies the flags on top.
func loadConfig() *config.Config {
	cfg := config.LoadConfig()
	applyFlags(cfg)
	return cfg
}

func applyFlags(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.ServerURL, serverFlag)
	set(&cfg.Token, tokenFlag)
	set(&cfg.PluginID, pluginIDFlag)
	set(&cfg.TeamID, teamFlag)
	set(&cfg.ChannelID, channelFlag)
	set(&cfg.PopoutSocket, socketFlag)
	set(&cfg.JournalPath, journalFlag)
}

// popoutCommand is what the main window copies to open a popout for a channel.
func popoutCommand(teamID, channelID string) string {
	cmd := "glrhs popout"
	if teamID != "" {
		cmd += " --team " + teamID
	}
	return cmd + " --channel " + channelID
}

// openJournal opens the configured journal, falling back to one that discards.
func openJournal(cfg *config.Config) journal.Journal {
	if cfg.JournalPath == "" {
		return journal.Nop()
	}
	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		log.WarningLog.Printf("journal disabled: %v", err)
		return journal.Nop()
	}
	return j
}

// runWindow runs the main window, or a popout window when popout is set.
func runWindow(popout bool) error {
	cfg := loadConfig()

	// Non-fatal: sentry failure should not prevent startup
	_ = sentrypkg.Init(version, cfg.IsTelemetryEnabled())
	defer sentrypkg.Flush()
	defer sentrypkg.RecoverPanic()

	log.Initialize(popout, cfg.IsTelemetryEnabled())
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if popout && cfg.ChannelID == "" {
		return errors.New("popout needs --channel")
	}
	if popout && cfg.PopoutSocket == "" {
		return errors.New("popouts are disabled: popout_socket is empty")
	}
	sentrypkg.SetContext(cfg.ServerHost(), cfg.PluginID, popout)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := pluginapi.NewClient(cfg.APIBaseURL(), cfg.Token, pluginapi.WithRateLimit(cfg.RequestsPerSecond))
	if err != nil {
		return fmt.Errorf("plugin api client: %w", err)
	}
	store := state.NewStore()
	a := actions.New(client, store, actions.WithUserCacheCooldown(cfg.UserCacheCooldown.Duration))

	j := openJournal(cfg)
	defer j.Close()
	window := journal.WindowMain
	if popout {
		window = journal.WindowPopout
	}
	journal.Attach(store, j, window)

	wsURL, err := cfg.WebSocketURL()
	if err != nil {
		return err
	}
	h := mattermost.New(wsURL, cfg.Token)

	var reg host.Registry = h
	opts := app.Options{
		Journal:    j,
		Window:     window,
		ServerHost: cfg.ServerHost(),
		ConnectURL: cfg.ConnectURL(),
		TeamID:     cfg.TeamID,
		Live:       h.Connected,
	}

	if popout {
		bridge, err := socket.Dial(ctx, cfg.PopoutSocket, socket.Hello{
			PluginID:  cfg.PluginID,
			TeamID:    cfg.TeamID,
			ChannelID: cfg.ChannelID,
		})
		if err != nil {
			return fmt.Errorf("is the main window running? %w", err)
		}
		defer bridge.Close()
		go func() {
			select {
			case <-bridge.Done():
				log.InfoLog.Printf("main window went away, popout keeps running on its own")
			case <-ctx.Done():
			}
		}()
		reg = mattermost.WithPopoutWindow(h, bridge)
	} else if cfg.PopoutSocket != "" {
		srv := socket.NewServer(cfg.PopoutSocket)
		if err := srv.Listen(); err != nil {
			log.WarningLog.Printf("popouts disabled: %v", err)
		} else {
			defer srv.Close()
			go func() {
				if err := srv.Serve(ctx); err != nil {
					log.WarningLog.Printf("popout socket: %v", err)
				}
			}()
			reg = mattermost.WithPopoutServer(h, srv)
			opts.PopoutCommand = popoutCommand
		}
	}

	p := plugin.New(cfg.PluginID, store, a)
	panel := ui.NewPanel(ctx, store, a, cfg.ChannelID)
	defer panel.Close()
	if err := p.Initialize(ctx, reg, panel); err != nil {
		return err
	}
	p.ShowRHS()

	go func() {
		if err := h.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.ErrorLog.Printf("websocket: %v", err)
		}
	}()

	opts.Plugin = p
	opts.Slot = h
	opts.Panel = panel
	err = app.Run(ctx, opts)

	cancel()
	p.Wait()
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errUnhealthy) {
			os.Exit(1)
		}
		fmt.Println(err)
		os.Exit(1)
	}
}

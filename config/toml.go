package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const TOMLConfigFileName = "config.toml"

// TOMLConfig is the config.toml overlay. Every field is optional; unset fields
// leave the JSON config untouched.
type TOMLConfig struct {
	Server struct {
		URL      string `toml:"url"`
		PluginID string `toml:"plugin_id"`
		Token    string `toml:"token"`
	} `toml:"server"`

	Window struct {
		TeamID       string `toml:"team_id"`
		ChannelID    string `toml:"channel_id"`
		PopoutSocket string `toml:"popout_socket"`
	} `toml:"window"`

	Cache struct {
		UserCooldown *Duration `toml:"user_cooldown"`
	} `toml:"cache"`

	RequestsPerSecond float64 `toml:"requests_per_second"`
	JournalPath       string  `toml:"journal_path"`
	TelemetryEnabled  *bool   `toml:"telemetry_enabled"`
}

// LoadTOMLConfig reads config.toml from the config directory.
// Returns (nil, nil) when the file does not exist.
func LoadTOMLConfig() (*TOMLConfig, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	tc, err := LoadTOMLConfigFrom(filepath.Join(configDir, TOMLConfigFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return tc, err
}

// LoadTOMLConfigFrom parses the TOML file at path.
func LoadTOMLConfigFrom(path string) (*TOMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tc TOMLConfig
	if _, err := toml.Decode(string(data), &tc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &tc, nil
}

func (tc *TOMLConfig) applyTo(c *Config) {
	if tc.Server.URL != "" {
		c.ServerURL = tc.Server.URL
	}
	if tc.Server.PluginID != "" {
		c.PluginID = tc.Server.PluginID
	}
	if tc.Server.Token != "" {
		c.Token = tc.Server.Token
	}
	if tc.Window.TeamID != "" {
		c.TeamID = tc.Window.TeamID
	}
	if tc.Window.ChannelID != "" {
		c.ChannelID = tc.Window.ChannelID
	}
	if tc.Window.PopoutSocket != "" {
		c.PopoutSocket = tc.Window.PopoutSocket
	}
	if tc.Cache.UserCooldown != nil {
		c.UserCacheCooldown = *tc.Cache.UserCooldown
	}
	if tc.RequestsPerSecond > 0 {
		c.RequestsPerSecond = tc.RequestsPerSecond
	}
	if tc.JournalPath != "" {
		c.JournalPath = tc.JournalPath
	}
	if tc.TelemetryEnabled != nil {
		c.TelemetryEnabled = tc.TelemetryEnabled
	}
}

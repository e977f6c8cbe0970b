package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kastheco/glrhs/log"
)

const (
	ConfigFileName = "config.json"

	// DefaultPluginID is the manifest id of the Mattermost GitLab plugin.
	DefaultPluginID = "com.github.manland.mattermost-plugin-gitlab"

	// DefaultUserCacheCooldown is how long a failed GitLab user lookup suppresses
	// further lookups for the same Mattermost user.
	DefaultUserCacheCooldown = time.Hour

	defaultRequestsPerSecond = 5
)

// configDirEnv overrides the config directory. Used by tests and by users running
// several profiles side by side.
const configDirEnv = "GLRHS_CONFIG_DIR"

// GetConfigDir returns the path to the application's configuration directory.
// Uses XDG-compliant ~/.config/glrhs/ unless GLRHS_CONFIG_DIR is set.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(configDirEnv); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "glrhs"), nil
}

// Duration is a time.Duration that reads and writes as "1h", "90m" in both the
// JSON and TOML config files.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// Config represents the application configuration
type Config struct {
	// ServerURL is the Mattermost site URL, e.g. "https://chat.example.com".
	ServerURL string `json:"server_url"`
	// PluginID is the GitLab plugin manifest id. Websocket events are prefixed with it.
	PluginID string `json:"plugin_id"`
	// Token is a Mattermost personal access token or session token.
	Token string `json:"token,omitempty"`
	// TeamID scopes the popout listener registration.
	TeamID string `json:"team_id,omitempty"`
	// ChannelID is the channel the main window treats as current.
	ChannelID string `json:"channel_id,omitempty"`
	// UserCacheCooldown is the negative-cache window for GitLab user lookups.
	UserCacheCooldown Duration `json:"user_cache_cooldown"`
	// RequestsPerSecond caps outgoing plugin API requests.
	RequestsPerSecond float64 `json:"requests_per_second"`
	// PopoutSocket is the unix socket the main window serves popout windows on.
	// Empty disables popout support.
	PopoutSocket string `json:"popout_socket,omitempty"`
	// JournalPath is the SQLite file the event journal writes to. Empty disables it.
	JournalPath string `json:"journal_path,omitempty"`
	// TelemetryEnabled controls whether crash reporting via Sentry is active.
	// Defaults to true when not set.
	TelemetryEnabled *bool `json:"telemetry_enabled,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{
		PluginID:          DefaultPluginID,
		UserCacheCooldown: Duration{DefaultUserCacheCooldown},
		RequestsPerSecond: defaultRequestsPerSecond,
	}
	if dir, err := GetConfigDir(); err == nil {
		cfg.PopoutSocket = filepath.Join(dir, "popout.sock")
		cfg.JournalPath = filepath.Join(dir, "journal.db")
	} else {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
	}
	return cfg
}

// IsTelemetryEnabled returns whether Sentry telemetry is enabled.
// Defaults to true when the field is not set.
func (c *Config) IsTelemetryEnabled() bool {
	if c.TelemetryEnabled == nil {
		return true
	}
	return *c.TelemetryEnabled
}

// Validate reports the first setting that prevents the client from talking to the server.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is not set")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url must be http or https, got %q", u.Scheme)
	}
	if c.PluginID == "" {
		return fmt.Errorf("plugin_id is not set")
	}
	if c.UserCacheCooldown.Duration <= 0 {
		return fmt.Errorf("user_cache_cooldown must be positive")
	}
	return nil
}

// APIBaseURL returns the plugin REST root, e.g.
// "https://chat.example.com/plugins/com.github.manland.mattermost-plugin-gitlab/api/v1".
func (c *Config) APIBaseURL() string {
	return strings.TrimRight(c.ServerURL, "/") + "/plugins/" + c.PluginID + "/api/v1"
}

// ConnectURL returns the page that starts the OAuth connect flow in a browser.
func (c *Config) ConnectURL() string {
	return strings.TrimRight(c.ServerURL, "/") + "/plugins/" + c.PluginID + "/oauth/connect"
}

// WebSocketURL returns the Mattermost websocket endpoint for the server.
func (c *Config) WebSocketURL() (string, error) {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return "", fmt.Errorf("invalid server_url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v4/websocket"
	return u.String(), nil
}

// ServerHost returns just the host of ServerURL, for logs and telemetry tags.
func (c *Config) ServerHost() string {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create and save default config if file doesn't exist
			defaultCfg := DefaultConfig()
			if saveErr := saveConfig(defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			return overlayTOML(defaultCfg)
		}

		log.WarningLog.Printf("failed to get config file: %v", err)
		return DefaultConfig()
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		log.ErrorLog.Printf("failed to parse config file: %v", err)
		return DefaultConfig()
	}

	return overlayTOML(config)
}

// overlayTOML applies config.toml on top of the JSON config. TOML wins for every
// field it sets.
func overlayTOML(config *Config) *Config {
	tomlResult, tomlErr := LoadTOMLConfig()
	if tomlErr != nil {
		log.WarningLog.Printf("failed to load TOML config: %v", tomlErr)
		return config
	}
	if tomlResult != nil {
		tomlResult.applyTo(config)
	}
	return config
}

// saveConfig saves the configuration to disk
func saveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold a token.
	return os.WriteFile(configPath, data, 0600)
}

// SaveConfig exports the saveConfig function for use by other packages
func SaveConfig(config *Config) error {
	return saveConfig(config)
}

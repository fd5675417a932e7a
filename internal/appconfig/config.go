package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/notepad/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	StateDir      string        `mapstructure:"state_dir" yaml:"state_dir"`
	Editor        EditorConfig  `mapstructure:"editor" yaml:"editor"`
	HTTP          HTTPConfig    `mapstructure:"http" yaml:"http"`
	SSH           SSHConfig     `mapstructure:"ssh" yaml:"ssh"`
	Console       ConsoleConfig `mapstructure:"console" yaml:"console"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// EditorConfig holds the defaults of a fresh notepad session.
type EditorConfig struct {
	WordWrap         bool     `mapstructure:"word_wrap" yaml:"word_wrap"`
	FontSize         int      `mapstructure:"font_size" yaml:"font_size"`
	Zoom             int      `mapstructure:"zoom" yaml:"zoom"`
	AcceptExtensions []string `mapstructure:"accept_extensions" yaml:"accept_extensions"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr            string `mapstructure:"addr" yaml:"addr"`
	SessionCookie   string `mapstructure:"session_cookie" yaml:"session_cookie"`
	SessionTTLHours int    `mapstructure:"session_ttl_hours" yaml:"session_ttl_hours"`
	BaseURL         string `mapstructure:"base_url" yaml:"base_url"`
	BasePath        string `mapstructure:"base_path" yaml:"base_path"`
	HubHistory      int    `mapstructure:"hub_history" yaml:"hub_history"`
}

// SSHConfig configures the SSH server.
type SSHConfig struct {
	Addr           string `mapstructure:"addr" yaml:"addr"`
	HostKeyPath    string `mapstructure:"host_key_path" yaml:"host_key_path"`
	AuthorizedKeys string `mapstructure:"authorized_keys" yaml:"authorized_keys"`
	Prompt         string `mapstructure:"prompt" yaml:"prompt"`
}

// ConsoleConfig configures the line console used by SSH and `notepad edit`.
// SaveDir confines console file access when set; SSH users always get a
// directory of their own under it or under the state dir.
type ConsoleConfig struct {
	SaveDir string `mapstructure:"save_dir" yaml:"save_dir"`
	Theme   string `mapstructure:"theme" yaml:"theme"`
}

// ServiceConfig maps the editor section onto the core service config.
func (c Config) ServiceConfig() schema.ServiceConfig {
	return schema.ServiceConfig{
		NoWordWrap:       !c.Editor.WordWrap,
		DefaultFontSize:  c.Editor.FontSize,
		DefaultZoom:      c.Editor.Zoom,
		AcceptExtensions: append([]string(nil), c.Editor.AcceptExtensions...),
	}
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateDir:      filepath.Join(home, ".notepad", "state"),
		Editor: EditorConfig{
			WordWrap:         true,
			FontSize:         schema.DefaultFontSize,
			Zoom:             schema.DefaultZoom,
			AcceptExtensions: append([]string(nil), schema.DefaultAcceptExtensions...),
		},
		HTTP: HTTPConfig{
			Addr:            ":27490",
			SessionCookie:   "notepad_session",
			SessionTTLHours: 720,
			BaseURL:         "",
			BasePath:        "",
			HubHistory:      256,
		},
		SSH: SSHConfig{
			Addr:           ":27422",
			HostKeyPath:    filepath.Join(home, ".notepad", "ssh_host_key"),
			AuthorizedKeys: filepath.Join(home, ".notepad", "authorized_keys"),
			Prompt:         "notepad> ",
		},
		Console: ConsoleConfig{
			SaveDir: "",
			Theme:   "outrun",
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".notepad", "config.yaml"), nil
}

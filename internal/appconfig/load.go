package appconfig

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pkt.systems/notepad/schema"
)

// EnvPrefix prefixes environment overrides, e.g. NOTEPAD_HTTP_ADDR.
const EnvPrefix = "NOTEPAD"

// Load reads configuration from path, or DefaultConfigPath when path is
// empty. Values resolve in order: environment, config file, defaults. A
// missing file is not an error.
func Load(path string) (Config, error) {
	path, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}
	defaults, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}
	seed, err := yaml.Marshal(defaults)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(seed)); err != nil {
		return Config{}, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file, err := readConfigFile(path)
	if err != nil {
		return Config{}, err
	}
	if file != nil {
		if err := checkVersion(file); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		if err := v.MergeConfigMap(file); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.StateDir = expandEnv(cfg.StateDir)
	cfg.SSH.HostKeyPath = expandEnv(cfg.SSH.HostKeyPath)
	cfg.SSH.AuthorizedKeys = expandEnv(cfg.SSH.AuthorizedKeys)
	cfg.Console.SaveDir = expandEnv(cfg.Console.SaveDir)

	if err := validateHTTPConfig(cfg.HTTP); err != nil {
		return Config{}, err
	}
	if _, err := schema.NormalizeServiceConfig(cfg.ServiceConfig()); err != nil {
		return Config{}, fmt.Errorf("editor: %w", err)
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return DefaultConfigPath()
}

// readConfigFile returns nil when the file does not exist.
func readConfigFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	file := map[string]any{}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if file == nil {
		file = map[string]any{}
	}
	return file, nil
}

func checkVersion(file map[string]any) error {
	raw, ok := file["config_version"]
	if !ok {
		return fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
	}
	version, ok := raw.(int)
	if !ok {
		return fmt.Errorf("config_version must be an integer, got %v", raw)
	}
	if version != CurrentConfigVersion {
		return fmt.Errorf("unsupported config_version %d; expected %d", version, CurrentConfigVersion)
	}
	return nil
}

func validateHTTPConfig(cfg HTTPConfig) error {
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("http.base_url must include scheme and host (e.g. https://example.com)")
		}
	}
	if basePath := strings.TrimSpace(cfg.BasePath); strings.Contains(basePath, "://") || strings.ContainsAny(basePath, "?#") {
		return fmt.Errorf("http.base_path must be a plain path prefix")
	}
	if cfg.SessionTTLHours < 0 {
		return fmt.Errorf("http.session_ttl_hours must not be negative")
	}
	if cfg.HubHistory < 0 {
		return fmt.Errorf("http.hub_history must not be negative")
	}
	return nil
}

// expandEnv expands $VAR and ${VAR}, leaving unset variables untouched.
func expandEnv(value string) string {
	if !strings.Contains(value, "$") {
		return value
	}
	return os.Expand(value, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

// WriteDefault writes the default config to path, or DefaultConfigPath
// when path is empty, and returns where it was written.
func WriteDefault(path string, overwrite bool) (string, error) {
	path, err := resolvePath(path)
	if err != nil {
		return "", err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}
	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	header := "# notepad configuration. Every key can be overridden with " + EnvPrefix + "_<SECTION>_<KEY>.\n"
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, append([]byte(header), body...), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

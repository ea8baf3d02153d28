package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ldi/gotask/internal/persist"
	"github.com/ldi/gotask/internal/planner"
)

const (
	RemoteNone      = ""
	RemoteSQLite    = "sqlite"
	RemoteFirestore = "firestore"
)

// Duration is a time.Duration written as "2s" in the config file.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"2s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config lives beside the database in .gotask/config.json.
type Config struct {
	UserID           string   `json:"user_id"`
	Locale           string   `json:"locale"`
	Remote           string   `json:"remote"`
	RemoteDBPath     string   `json:"remote_db_path,omitempty"`
	ProjectID        string   `json:"project_id,omitempty"`
	CredentialsPath  string   `json:"credentials_path,omitempty"`
	TokenPath        string   `json:"token_path,omitempty"`
	AutoSaveInterval Duration `json:"autosave_interval"`
	PushTimeout      Duration `json:"push_timeout"`
}

func defaultConfig() Config {
	dir := filepath.Dir(dbPath)
	return Config{
		Locale:           "pt-BR",
		RemoteDBPath:     filepath.Join(dir, "remote.db"),
		CredentialsPath:  filepath.Join(dir, "credentials.json"),
		TokenPath:        filepath.Join(dir, "token.json"),
		AutoSaveInterval: Duration(planner.DefaultAutoSaveInterval),
		PushTimeout:      Duration(persist.DefaultPushTimeout),
	}
}

func (c Config) Validate() error {
	switch c.Remote {
	case RemoteNone, RemoteSQLite:
	case RemoteFirestore:
		if c.ProjectID == "" {
			return errors.New("remote firestore requires project_id")
		}
	default:
		return fmt.Errorf("unknown remote %q (expected \"\", sqlite or firestore)", c.Remote)
	}
	if c.AutoSaveInterval < 0 || c.PushTimeout < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// resolveConfigPath returns --config, or config.json next to the database.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(filepath.Dir(dbPath), "config.json")
}

// loadConfig reads the config file over the defaults. A missing file yields
// the defaults.
func loadConfig() (Config, error) {
	cfg := defaultConfig()
	path := resolveConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Remote = strings.ToLower(strings.TrimSpace(cfg.Remote))
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func saveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

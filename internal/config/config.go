package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppName               = "pado"
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "pado.db"
	DefaultServerURL      = "http://localhost:5000"
)

type Keymap struct {
	Quit          string `toml:"quit"`
	Add           string `toml:"add"`
	Up            string `toml:"up"`
	Down          string `toml:"down"`
	Toggle        string `toml:"toggle"`
	Delete        string `toml:"delete"`
	Edit          string `toml:"edit"`
	Confirm       string `toml:"confirm"`
	Cancel        string `toml:"cancel"`
	NextList      string `toml:"next_list"`
	PrevList      string `toml:"prev_list"`
	NewList       string `toml:"new_list"`
	Share         string `toml:"share"`
	Undo          string `toml:"undo"`
	ShowCompleted string `toml:"show_completed"`
	SortDue       string `toml:"sort_due"`
	SortPriority  string `toml:"sort_priority"`
	SortCreated   string `toml:"sort_created"`
}

type Config struct {
	Backend       string `toml:"backend"`
	ServerURL     string `toml:"server_url"`
	DBPath        string `toml:"db_path"`
	DeletePolicy  string `toml:"delete_policy"`
	DefaultFilter string `toml:"default_filter"`
	DefaultSort   string `toml:"default_sort"`
	LogPath       string `toml:"log_path"`
	LogLevel      string `toml:"log_level"`
	Keys          Keymap `toml:"keys"`

	// Credentials come from the environment only, never from the file.
	Username string `toml:"-"`
	Password string `toml:"-"`
}

// ResolveConfigPath returns the config file location, honoring
// XDG_CONFIG_HOME and falling back to ~/.config/pado.
func ResolveConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, DefaultConfigFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(home, ".config", AppName, DefaultConfigFileName)
}

// LoadOrCreate reads the config, writing a default file on first
// launch. A .env file and the environment override the server URL and
// supply credentials.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return applyEnv(cfg), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBName
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	if cfg.Backend == "" {
		cfg.Backend = "remote"
	}
	if cfg.DeletePolicy == "" {
		// The standalone store keeps deletes reversible for a moment,
		// the server-backed one deletes outright.
		if cfg.Backend == "local" {
			cfg.DeletePolicy = "soft-delete-with-expiry"
		} else {
			cfg.DeletePolicy = "immediate"
		}
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	// Missing .env is fine; the environment may carry the values.
	_ = godotenv.Load()
	if v := os.Getenv("PADO_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("PADO_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("PADO_PASSWORD"); v != "" {
		cfg.Password = v
	}
	return cfg
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		Backend:       "remote",
		ServerURL:     DefaultServerURL,
		DBPath:        DefaultDBName,
		DeletePolicy:  "immediate",
		DefaultFilter: "open",
		DefaultSort:   "created",
		LogLevel:      "info",
		Keys: Keymap{
			Quit:          "q",
			Add:           "a",
			Up:            "k",
			Down:          "j",
			Toggle:        " ",
			Delete:        "d",
			Edit:          "e",
			Confirm:       "enter",
			Cancel:        "esc",
			NextList:      "tab",
			PrevList:      "shift+tab",
			NewList:       "n",
			Share:         "s",
			Undo:          "u",
			ShowCompleted: "c",
			SortDue:       "1",
			SortPriority:  "2",
			SortCreated:   "3",
		},
	}
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrEmptyAPIURL     = errors.New("api url is empty")
	ErrInvalidTimeout  = errors.New("timeout must be a positive duration")
	ErrUnknownBackend  = errors.New("unknown state backend")
	ErrUnknownLogLevel = errors.New("unknown log level")
)

const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config covers both the client (CLI, board) and the development server.
type Config struct {
	APIURL       string        `json:"api_url"`
	Timeout      time.Duration `json:"-"`
	StateDir     string        `json:"state_dir"`
	StateBackend string        `json:"state_backend"`
	LogLevel     string        `json:"log_level"`
	Server       ServerConfig  `json:"server"`
}

type ServerConfig struct {
	Addr          string   `json:"addr"`
	DataDir       string   `json:"data_dir"`
	AdminEmails   []string `json:"admin_emails"`
	AdminPassword string   `json:"admin_password"`
	SeedDemo      bool     `json:"seed_demo"`
	DemoPassword  string   `json:"demo_password"`
}

// fileConfig mirrors Config for decoding; durations are strings in JSON.
type fileConfig struct {
	Config
	Timeout string `json:"timeout"`
}

func Defaults() Config {
	return Config{
		APIURL:       "http://localhost:8080/api/v1",
		Timeout:      10 * time.Second,
		StateDir:     defaultStateDir(),
		StateBackend: BackendSQLite,
		LogLevel:     "dev",
		Server: ServerConfig{
			Addr:          ":8080",
			DataDir:       "data",
			AdminPassword: "admin",
			SeedDemo:      true,
			DemoPassword:  "password",
		},
	}
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tracker")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "tracker")
	}
	return ".tracker"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load builds the configuration from defaults, then the JSON file at path,
// then a .env file in the working directory, then the environment. Both files
// are optional; an empty path skips the JSON file.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg.APIURL = getEnv("TRACKER_API_URL", cfg.APIURL)
	cfg.StateDir = getEnv("TRACKER_STATE_DIR", cfg.StateDir)
	cfg.StateBackend = strings.ToLower(getEnv("TRACKER_STATE_BACKEND", cfg.StateBackend))
	cfg.LogLevel = strings.ToLower(getEnv("TRACKER_LOG_LEVEL", cfg.LogLevel))
	cfg.Server.Addr = getEnv("TRACKER_ADDR", cfg.Server.Addr)
	cfg.Server.DataDir = getEnv("TRACKER_DATA_DIR", cfg.Server.DataDir)
	cfg.Server.AdminPassword = getEnv("TRACKER_ADMIN_PASSWORD", cfg.Server.AdminPassword)
	cfg.Server.DemoPassword = getEnv("TRACKER_DEMO_PASSWORD", cfg.Server.DemoPassword)
	if v := os.Getenv("TRACKER_ADMIN_EMAILS"); v != "" {
		cfg.Server.AdminEmails = splitList(v)
	}
	if v := os.Getenv("TRACKER_SEED_DEMO"); v != "" {
		cfg.Server.SeedDemo = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("TRACKER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %q", ErrInvalidTimeout, v)
		}
		cfg.Timeout = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	fc := fileConfig{Config: *cfg}
	if err := json.NewDecoder(f).Decode(&fc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	*cfg = fc.Config
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, fc.Timeout)
		}
		cfg.Timeout = d
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return ErrEmptyAPIURL
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	switch c.StateBackend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.StateBackend)
	}
	switch c.LogLevel {
	case "dev", "prod":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogLevel, c.LogLevel)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

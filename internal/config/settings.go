package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	EnvHost = "BENCHER_HOST"

	defaultHost         = "https://api.bencher.dev"
	defaultConsoleURL   = "https://bencher.dev"
	defaultAttempts     = 3
	defaultRetryAfterMS = 1000
	defaultTimeoutMS    = 10000
	defaultPerPage      = 8
	maxPerPage          = 255
)

const (
	StoreBackendBbolt = "bbolt"
	StoreBackendFile  = "file"
)

type Config struct {
	API     APIConfig     `toml:"api"`
	Console ConsoleConfig `toml:"console"`
	Logging LoggingConfig `toml:"logging"`
	Store   StoreConfig   `toml:"store"`
	Fixture FixtureConfig `toml:"fixture"`
}

type APIConfig struct {
	Host         string `toml:"host"`
	Token        string `toml:"token"`
	Attempts     int    `toml:"attempts"`
	RetryAfterMS int    `toml:"retry_after_ms"`
	TimeoutMS    int    `toml:"timeout_ms"`
}

type ConsoleConfig struct {
	URL     string `toml:"url"`
	Project string `toml:"project"`
	PerPage int    `toml:"per_page"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type StoreConfig struct {
	Backend string `toml:"backend"`
}

type FixtureConfig struct {
	Path string `toml:"path"`
}

func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:         defaultHost,
			Attempts:     defaultAttempts,
			RetryAfterMS: defaultRetryAfterMS,
			TimeoutMS:    defaultTimeoutMS,
		},
		Console: ConsoleConfig{
			URL:     defaultConsoleURL,
			PerPage: defaultPerPage,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Backend: StoreBackendBbolt,
		},
	}
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFromPath(path)
}

func LoadFromPath(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal renders the config as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// APIHost resolves the API base URL. BENCHER_HOST wins over the config file.
func (c Config) APIHost() string {
	host := strings.TrimSpace(os.Getenv(EnvHost))
	if host == "" {
		host = strings.TrimSpace(c.API.Host)
	}
	if host == "" {
		return defaultHost
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	if _, err := url.Parse(host); err != nil {
		return defaultHost
	}
	return strings.TrimRight(host, "/")
}

func (c Config) APIToken() string {
	return strings.TrimSpace(c.API.Token)
}

func (c Config) Attempts() int {
	if c.API.Attempts <= 0 {
		return defaultAttempts
	}
	return c.API.Attempts
}

func (c Config) RetryAfter() time.Duration {
	if c.API.RetryAfterMS < 0 {
		return 0
	}
	if c.API.RetryAfterMS == 0 {
		return defaultRetryAfterMS * time.Millisecond
	}
	return time.Duration(c.API.RetryAfterMS) * time.Millisecond
}

func (c Config) Timeout() time.Duration {
	if c.API.TimeoutMS <= 0 {
		return defaultTimeoutMS * time.Millisecond
	}
	return time.Duration(c.API.TimeoutMS) * time.Millisecond
}

// ConsoleURL is the web console origin used when sharing plot links.
func (c Config) ConsoleURL() string {
	raw := strings.TrimSpace(c.Console.URL)
	if raw == "" {
		return defaultConsoleURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/")
}

func (c Config) Project() string {
	return strings.TrimSpace(c.Console.Project)
}

func (c Config) PerPage() int {
	perPage := c.Console.PerPage
	if perPage <= 0 {
		return defaultPerPage
	}
	if perPage > maxPerPage {
		return maxPerPage
	}
	return perPage
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) LogFormat() string {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		return "text"
	}
	return format
}

func (c Config) StoreBackend() string {
	switch strings.ToLower(strings.TrimSpace(c.Store.Backend)) {
	case StoreBackendFile:
		return StoreBackendFile
	default:
		return StoreBackendBbolt
	}
}

// FixturePath resolves the offline fixture file, or "" when none is set.
// Relative paths are taken from the data dir.
func (c Config) FixturePath() (string, error) {
	path := strings.TrimSpace(c.Fixture.Path)
	if path == "" {
		return "", nil
	}
	return resolveConfigPath(path)
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func resolveConfigPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is required")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, path), nil
}

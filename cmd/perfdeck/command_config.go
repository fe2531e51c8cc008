package main

import (
	"encoding/json"
	"errors"
	"flag"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"perfdeck/internal/config"
)

type ConfigCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig configLoader
}

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

type configOutput struct {
	ConfigPath string                 `json:"config_path" toml:"config_path"`
	TokenPath  string                 `json:"token_path" toml:"token_path"`
	API        effectiveAPIConfig     `json:"api" toml:"api"`
	Console    effectiveConsoleConfig `json:"console" toml:"console"`
	Logging    effectiveLoggingConfig `json:"logging" toml:"logging"`
	Store      effectiveStoreConfig   `json:"store" toml:"store"`
	Fixture    effectiveFixtureConfig `json:"fixture" toml:"fixture"`
}

type effectiveAPIConfig struct {
	Host         string `json:"host" toml:"host"`
	TokenSet     bool   `json:"token_set" toml:"token_set"`
	Attempts     int    `json:"attempts" toml:"attempts"`
	RetryAfterMS int64  `json:"retry_after_ms" toml:"retry_after_ms"`
	TimeoutMS    int64  `json:"timeout_ms" toml:"timeout_ms"`
}

type effectiveConsoleConfig struct {
	URL     string `json:"url" toml:"url"`
	Project string `json:"project,omitempty" toml:"project,omitempty"`
	PerPage int    `json:"per_page" toml:"per_page"`
}

type effectiveLoggingConfig struct {
	Level  string `json:"level" toml:"level"`
	Format string `json:"format" toml:"format"`
}

type effectiveStoreConfig struct {
	Backend string `json:"backend" toml:"backend"`
	Path    string `json:"path" toml:"path"`
}

type effectiveFixtureConfig struct {
	Path string `json:"path,omitempty" toml:"path,omitempty"`
}

func NewConfigCommand(stdout, stderr io.Writer, loadConfig configLoader) *ConfigCommand {
	return &ConfigCommand{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: loadConfig,
	}
}

func (c *ConfigCommand) Run(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	configPath := fs.String("config", "", "config file path")
	defaults := fs.Bool("default", false, "print default config values")
	format := fs.String("format", configFormatJSON, "output format: json|toml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resolvedFormat, err := resolveConfigFormat(*format)
	if err != nil {
		return err
	}
	payload, err := c.buildOutput(*configPath, *defaults)
	if err != nil {
		return err
	}
	return writeConfigOutput(c.stdout, resolvedFormat, payload)
}

func (c *ConfigCommand) buildOutput(configPath string, defaults bool) (configOutput, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		resolved, err := config.ConfigPath()
		if err != nil {
			return configOutput{}, err
		}
		path = resolved
	}
	cfg := config.DefaultConfig()
	if !defaults {
		loaded, err := c.loadConfig(path)
		if err != nil {
			return configOutput{}, err
		}
		cfg = loaded
	}
	tokenPath, err := config.TokenPath()
	if err != nil {
		return configOutput{}, err
	}
	storePath, err := config.StateDBPath()
	if err != nil {
		return configOutput{}, err
	}
	if cfg.StoreBackend() == config.StoreBackendFile {
		if storePath, err = config.StatePath(); err != nil {
			return configOutput{}, err
		}
	}
	fixturePath, err := cfg.FixturePath()
	if err != nil {
		return configOutput{}, err
	}

	return configOutput{
		ConfigPath: path,
		TokenPath:  tokenPath,
		API: effectiveAPIConfig{
			Host:         cfg.APIHost(),
			TokenSet:     cfg.APIToken() != "",
			Attempts:     cfg.Attempts(),
			RetryAfterMS: cfg.RetryAfter().Milliseconds(),
			TimeoutMS:    cfg.Timeout().Milliseconds(),
		},
		Console: effectiveConsoleConfig{
			URL:     cfg.ConsoleURL(),
			Project: cfg.Project(),
			PerPage: cfg.PerPage(),
		},
		Logging: effectiveLoggingConfig{
			Level:  cfg.LogLevel(),
			Format: cfg.LogFormat(),
		},
		Store: effectiveStoreConfig{
			Backend: cfg.StoreBackend(),
			Path:    storePath,
		},
		Fixture: effectiveFixtureConfig{
			Path: fixturePath,
		},
	}, nil
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	default:
		return errors.New("unsupported format")
	}
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatJSON:
		return configFormatJSON, nil
	case configFormatTOML:
		return configFormatTOML, nil
	default:
		return "", errors.New("invalid format: must be json or toml")
	}
}

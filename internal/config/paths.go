package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".perfdeck"

// DataDir returns the base data directory for perfdeck.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	return dataFile("config.toml")
}

// TokenPath returns the path to the token file.
func TokenPath() (string, error) {
	return dataFile("token")
}

// StateDBPath returns the path to the bbolt database holding plot queries.
func StateDBPath() (string, error) {
	return dataFile("state.db")
}

// StatePath returns the path to the JSON file used by the file store backend.
func StatePath() (string, error) {
	return dataFile("plots.json")
}

// UILogPath returns the path the terminal UI logs to.
func UILogPath() (string, error) {
	return dataFile("ui.log")
}

func dataFile(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}

package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPaths(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))

	dataDir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if !strings.HasSuffix(dataDir, ".perfdeck") {
		t.Fatalf("unexpected data dir: %s", dataDir)
	}

	cases := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{name: "ConfigPath", fn: ConfigPath, want: "config.toml"},
		{name: "TokenPath", fn: TokenPath, want: "token"},
		{name: "StateDBPath", fn: StateDBPath, want: "state.db"},
		{name: "StatePath", fn: StatePath, want: "plots.json"},
		{name: "UILogPath", fn: UILogPath, want: "ui.log"},
	}
	for _, tc := range cases {
		path, err := tc.fn()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if want := filepath.Join(".perfdeck", tc.want); !strings.HasSuffix(path, want) {
			t.Fatalf("%s: unexpected path %s", tc.name, path)
		}
	}
}

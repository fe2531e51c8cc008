package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"perfdeck/internal/types"
)

// readPlotFile loads the plot file at path. A missing or blank file reads as
// an empty current-version file.
func readPlotFile(path string) (*plotFile, error) {
	file := &plotFile{Version: plotSchemaVersion, Plots: []*types.PlotView{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return file, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return file, nil
	}
	if err := json.Unmarshal(data, file); err != nil {
		return nil, err
	}
	if file.Version == 0 {
		file.Version = plotSchemaVersion
	}
	plots := file.Plots[:0]
	for _, view := range file.Plots {
		if view != nil && strings.TrimSpace(view.Project) != "" {
			plots = append(plots, view)
		}
	}
	file.Plots = plots
	return file, nil
}

// writePlotFile replaces path through a synced temp file in the same
// directory so readers never see a partial write.
func writePlotFile(path string, file *plotFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".plots-*.json")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

package store

import (
	"context"
	"errors"
	"strings"
)

const (
	RepositoryBackendFile  = "file"
	RepositoryBackendBbolt = "bbolt"
)

type Repository interface {
	Plots() PlotStore
	Backend() string
	Close() error
}

type RepositoryPaths struct {
	PlotsPath string
	DBPath    string
}

type fileRepository struct {
	plots PlotStore
}

func NewFileRepository(paths RepositoryPaths) Repository {
	return &fileRepository{
		plots: NewFilePlotStore(paths.PlotsPath),
	}
}

func (r *fileRepository) Plots() PlotStore {
	return r.plots
}

func (r *fileRepository) Backend() string {
	return RepositoryBackendFile
}

func (r *fileRepository) Close() error {
	return nil
}

func OpenRepository(paths RepositoryPaths, backend string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", RepositoryBackendBbolt:
		if strings.TrimSpace(paths.DBPath) == "" {
			return nil, errors.New("db path is required for bbolt repository")
		}
		return NewBboltRepository(paths.DBPath)
	case RepositoryBackendFile:
		if strings.TrimSpace(paths.PlotsPath) == "" {
			return nil, errors.New("plots path is required for file repository")
		}
		return NewFileRepository(paths), nil
	default:
		return nil, errors.New("unsupported repository backend: " + backend)
	}
}

// SeedRepositoryFromFiles copies plot views from the JSON file into dst when
// dst has none, so switching the backend to bbolt keeps saved selections.
func SeedRepositoryFromFiles(ctx context.Context, dst Repository, paths RepositoryPaths) error {
	if dst == nil || dst.Backend() == RepositoryBackendFile || strings.TrimSpace(paths.PlotsPath) == "" {
		return nil
	}
	src := NewFileRepository(paths)
	defer src.Close()
	return seedPlots(ctx, dst.Plots(), src.Plots())
}

func seedPlots(ctx context.Context, dst PlotStore, src PlotStore) error {
	if dst == nil || src == nil {
		return nil
	}
	current, err := dst.List(ctx)
	if err != nil {
		return err
	}
	if len(current) > 0 {
		return nil
	}
	legacy, err := src.List(ctx)
	if err != nil {
		return err
	}
	for _, view := range legacy {
		if _, err := dst.Save(ctx, view); err != nil {
			return err
		}
	}
	return nil
}

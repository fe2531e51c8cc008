package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"perfdeck/internal/types"
)

const plotSchemaVersion = 1

type PlotStore interface {
	List(ctx context.Context) ([]*types.PlotView, error)
	Get(ctx context.Context, project string) (*types.PlotView, bool, error)
	Save(ctx context.Context, view *types.PlotView) (*types.PlotView, error)
	Delete(ctx context.Context, project string) error
}

type FilePlotStore struct {
	path string
	mu   sync.Mutex
}

type plotFile struct {
	Version int               `json:"version"`
	Plots   []*types.PlotView `json:"plots"`
}

func NewFilePlotStore(path string) *FilePlotStore {
	return &FilePlotStore{path: path}
}

func (s *FilePlotStore) List(ctx context.Context) ([]*types.PlotView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]*types.PlotView, 0, len(file.Plots))
	for _, view := range file.Plots {
		out = append(out, clonePlotView(view))
	}
	sortPlotViews(out)
	return out, nil
}

func (s *FilePlotStore) Get(ctx context.Context, project string) (*types.PlotView, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project = strings.TrimSpace(project)
	file, err := s.load()
	if err != nil {
		return nil, false, err
	}
	for _, view := range file.Plots {
		if view.Project == project {
			return clonePlotView(view), true, nil
		}
	}
	return nil, false, nil
}

func (s *FilePlotStore) Save(ctx context.Context, view *types.PlotView) (*types.PlotView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	var existing *types.PlotView
	index := -1
	if view != nil {
		for i, candidate := range file.Plots {
			if candidate.Project == strings.TrimSpace(view.Project) {
				existing, index = candidate, i
				break
			}
		}
	}
	normalized, err := normalizePlotView(view, existing)
	if err != nil {
		return nil, err
	}
	if index >= 0 {
		file.Plots[index] = normalized
	} else {
		file.Plots = append(file.Plots, normalized)
	}
	if err := writePlotFile(s.path, file); err != nil {
		return nil, err
	}
	return clonePlotView(normalized), nil
}

func (s *FilePlotStore) Delete(ctx context.Context, project string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project = strings.TrimSpace(project)
	file, err := s.load()
	if err != nil {
		return err
	}
	kept := file.Plots[:0]
	for _, view := range file.Plots {
		if view.Project != project {
			kept = append(kept, view)
		}
	}
	file.Plots = kept
	return writePlotFile(s.path, file)
}

func (s *FilePlotStore) load() (*plotFile, error) {
	return readPlotFile(s.path)
}

func normalizePlotView(view *types.PlotView, existing *types.PlotView) (*types.PlotView, error) {
	if view == nil {
		return nil, errors.New("plot view is required")
	}
	project := strings.TrimSpace(view.Project)
	if project == "" {
		return nil, errors.New("project is required")
	}
	now := time.Now().UTC()
	out := &types.PlotView{
		Project:   project,
		Query:     strings.TrimPrefix(strings.TrimSpace(view.Query), "?"),
		CreatedAt: view.CreatedAt,
		UpdatedAt: now,
	}
	if existing != nil && !existing.CreatedAt.IsZero() {
		out.CreatedAt = existing.CreatedAt
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	return out, nil
}

func clonePlotView(view *types.PlotView) *types.PlotView {
	if view == nil {
		return nil
	}
	out := *view
	return &out
}

// sortPlotViews orders most recently used first.
func sortPlotViews(views []*types.PlotView) {
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].UpdatedAt.Equal(views[j].UpdatedAt) {
			return views[i].Project < views[j].Project
		}
		return views[i].UpdatedAt.After(views[j].UpdatedAt)
	})
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"perfdeck/internal/types"
)

var bucketPlots = []byte("plots")

type bboltRepository struct {
	db    *bolt.DB
	plots PlotStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{db: db, plots: &bboltPlotStore{db: db}}, nil
}

func (r *bboltRepository) Plots() PlotStore {
	return r.plots
}

func (r *bboltRepository) Backend() string {
	return RepositoryBackendBbolt
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPlots)
		return err
	})
}

type bboltPlotStore struct {
	db *bolt.DB
	mu sync.Mutex
}

func (s *bboltPlotStore) List(ctx context.Context) ([]*types.PlotView, error) {
	out := make([]*types.PlotView, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPlots)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var view types.PlotView
			if err := json.Unmarshal(v, &view); err != nil {
				return err
			}
			out = append(out, clonePlotView(&view))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortPlotViews(out)
	return out, nil
}

func (s *bboltPlotStore) Get(ctx context.Context, project string) (*types.PlotView, bool, error) {
	var (
		out *types.PlotView
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPlots)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(strings.TrimSpace(project)))
		if raw == nil {
			return nil
		}
		var view types.PlotView
		if err := json.Unmarshal(raw, &view); err != nil {
			return err
		}
		out = clonePlotView(&view)
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, ok, nil
}

func (s *bboltPlotStore) Save(ctx context.Context, view *types.PlotView) (*types.PlotView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out *types.PlotView
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPlots)
		if b == nil {
			return errors.New("plots bucket is missing")
		}
		var existing *types.PlotView
		if view != nil {
			if raw := b.Get([]byte(strings.TrimSpace(view.Project))); raw != nil {
				var prev types.PlotView
				if err := json.Unmarshal(raw, &prev); err != nil {
					return err
				}
				existing = &prev
			}
		}
		normalized, err := normalizePlotView(view, existing)
		if err != nil {
			return err
		}
		data, err := json.Marshal(normalized)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(normalized.Project), data); err != nil {
			return err
		}
		out = clonePlotView(normalized)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *bboltPlotStore) Delete(ctx context.Context, project string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPlots)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(strings.TrimSpace(project)))
	})
}

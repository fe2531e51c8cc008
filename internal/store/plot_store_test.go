package store

import (
	"context"
	"path/filepath"
	"testing"

	"perfdeck/internal/types"
)

func openRepositories(t *testing.T) map[string]Repository {
	t.Helper()
	dir := t.TempDir()
	paths := RepositoryPaths{
		PlotsPath: filepath.Join(dir, "plots.json"),
		DBPath:    filepath.Join(dir, "state.db"),
	}
	out := map[string]Repository{}
	for _, backend := range []string{RepositoryBackendFile, RepositoryBackendBbolt} {
		repo, err := OpenRepository(paths, backend)
		if err != nil {
			t.Fatalf("OpenRepository(%s): %v", backend, err)
		}
		t.Cleanup(func() { _ = repo.Close() })
		out[backend] = repo
	}
	return out
}

func TestPlotStoreCRUD(t *testing.T) {
	ctx := context.Background()
	for backend, repo := range openRepositories(t) {
		t.Run(backend, func(t *testing.T) {
			plots := repo.Plots()
			if repo.Backend() != backend {
				t.Fatalf("unexpected backend %q", repo.Backend())
			}

			empty, err := plots.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(empty) != 0 {
				t.Fatalf("expected empty list, got %d", len(empty))
			}
			if _, ok, err := plots.Get(ctx, "demo"); err != nil || ok {
				t.Fatalf("expected missing view, got ok=%v err=%v", ok, err)
			}

			created, err := plots.Save(ctx, &types.PlotView{Project: " demo ", Query: "?tab=branch"})
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			if created.Project != "demo" || created.Query != "tab=branch" || created.CreatedAt.IsZero() {
				t.Fatalf("unexpected created view: %#v", created)
			}

			updated, err := plots.Save(ctx, &types.PlotView{Project: "demo", Query: "tab=testbed"})
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if !updated.CreatedAt.Equal(created.CreatedAt) {
				t.Fatalf("expected created_at preserved, got %s vs %s", updated.CreatedAt, created.CreatedAt)
			}

			got, ok, err := plots.Get(ctx, "demo")
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if got.Query != "tab=testbed" {
				t.Fatalf("unexpected query %q", got.Query)
			}

			if _, err := plots.Save(ctx, &types.PlotView{Project: "other", Query: ""}); err != nil {
				t.Fatalf("save other: %v", err)
			}
			all, err := plots.List(ctx)
			if err != nil || len(all) != 2 {
				t.Fatalf("expected two views, got %d err=%v", len(all), err)
			}

			if err := plots.Delete(ctx, "demo"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, ok, _ := plots.Get(ctx, "demo"); ok {
				t.Fatalf("expected demo view deleted")
			}
		})
	}
}

func TestPlotStoreRejectsMissingProject(t *testing.T) {
	ctx := context.Background()
	for backend, repo := range openRepositories(t) {
		t.Run(backend, func(t *testing.T) {
			if _, err := repo.Plots().Save(ctx, &types.PlotView{Query: "tab=branch"}); err == nil {
				t.Fatalf("expected error for missing project")
			}
			if _, err := repo.Plots().Save(ctx, nil); err == nil {
				t.Fatalf("expected error for nil view")
			}
		})
	}
}

func TestSeedRepositoryFromFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	paths := RepositoryPaths{
		PlotsPath: filepath.Join(dir, "plots.json"),
		DBPath:    filepath.Join(dir, "state.db"),
	}
	legacy := NewFileRepository(paths)
	if _, err := legacy.Plots().Save(ctx, &types.PlotView{Project: "demo", Query: "tab=measure"}); err != nil {
		t.Fatalf("seed save: %v", err)
	}

	repo, err := OpenRepository(paths, RepositoryBackendBbolt)
	if err != nil {
		t.Fatalf("OpenRepository: %v", err)
	}
	defer repo.Close()
	if err := SeedRepositoryFromFiles(ctx, repo, paths); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, ok, err := repo.Plots().Get(ctx, "demo")
	if err != nil || !ok || got.Query != "tab=measure" {
		t.Fatalf("expected seeded view, got %#v ok=%v err=%v", got, ok, err)
	}

	if _, err := legacy.Plots().Save(ctx, &types.PlotView{Project: "late", Query: "tab=branch"}); err != nil {
		t.Fatalf("legacy save: %v", err)
	}
	if err := SeedRepositoryFromFiles(ctx, repo, paths); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if _, ok, _ := repo.Plots().Get(ctx, "late"); ok {
		t.Fatalf("expected seeding to skip a non-empty repository")
	}
}

func TestOpenRepositoryRejectsUnknownBackend(t *testing.T) {
	if _, err := OpenRepository(RepositoryPaths{}, "sqlite"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := OpenRepository(RepositoryPaths{}, RepositoryBackendBbolt); err == nil {
		t.Fatalf("expected error for missing db path")
	}
}

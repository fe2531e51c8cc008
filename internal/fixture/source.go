// Package fixture serves dimensions from a local YAML file so the console can
// run without an API server.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"perfdeck/internal/types"
)

const urlScheme = "fixture"

var ErrNotFound = errors.New("dimension not found")

// Entry is one dimension in the fixture file. Fields other than the shared
// projection are kept as-is and surface in the resource payload.
type Entry struct {
	UUID  string         `yaml:"uuid"`
	Slug  string         `yaml:"slug"`
	Name  string         `yaml:"name"`
	Units string         `yaml:"units,omitempty"`
	Extra map[string]any `yaml:",inline"`
}

type File struct {
	Project    string  `yaml:"project"`
	Branches   []Entry `yaml:"branches"`
	Testbeds   []Entry `yaml:"testbeds"`
	Benchmarks []Entry `yaml:"benchmarks"`
	Measures   []Entry `yaml:"measures"`
}

func (f *File) entries(kind types.DimensionKind) *[]Entry {
	switch kind {
	case types.DimensionBranch:
		return &f.Branches
	case types.DimensionTestbed:
		return &f.Testbeds
	case types.DimensionBenchmark:
		return &f.Benchmarks
	case types.DimensionMeasure:
		return &f.Measures
	default:
		return nil
	}
}

type Source struct {
	path string
	mu   sync.RWMutex
	file File
}

// Open reads the fixture file at path.
func Open(path string) (*Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("fixture path is required")
	}
	s := &Source{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Source) Path() string {
	return s.path
}

func (s *Source) Project() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file.Project
}

// Reload re-reads the file. On error the previous contents are kept.
func (s *Source) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse fixture %s: %w", filepath.Base(s.path), err)
	}
	file.Project = strings.TrimSpace(file.Project)
	s.mu.Lock()
	s.file = file
	s.mu.Unlock()
	return nil
}

// ListDimensions fuzzy-filters the entries of kind by name and slug, then
// returns the requested page.
func (s *Source) ListDimensions(ctx context.Context, project string, kind types.DimensionKind, params types.ListParams) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.entriesFor(project, kind)
	if err != nil {
		return nil, err
	}
	params = params.Normalized()
	matched := filterEntries(entries, params.Search)

	// Compare page counts before multiplying; a huge page number overflows.
	if params.Page-1 > len(matched)/params.PerPage {
		return []types.Record{}, nil
	}
	start := (params.Page - 1) * params.PerPage
	if start >= len(matched) {
		return []types.Record{}, nil
	}
	end := start + params.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	out := make([]types.Record, 0, end-start)
	for _, entry := range matched[start:end] {
		out = append(out, entry.record(kind))
	}
	return out, nil
}

func (s *Source) GetDimension(ctx context.Context, project string, kind types.DimensionKind, slug string) (types.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.entriesFor(project, kind)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Slug == slug || entry.UUID == slug {
			return entry.resource(), nil
		}
	}
	return nil, ErrNotFound
}

// DimensionURL addresses one entry as fixture://project/plural/slug.
func (s *Source) DimensionURL(project string, kind types.DimensionKind, slug string) string {
	if strings.TrimSpace(slug) == "" || !kind.IsValid() {
		return ""
	}
	u := url.URL{
		Scheme: urlScheme,
		Host:   url.PathEscape(strings.TrimSpace(project)),
		Path:   "/" + kind.Plural() + "/" + strings.TrimSpace(slug),
	}
	return u.String()
}

// Delete removes the entry addressed by rawURL and writes the file back.
// The token is not checked offline.
func (s *Source) Delete(ctx context.Context, rawURL, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != urlScheme {
		return fmt.Errorf("unsupported url %q", rawURL)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 {
		return fmt.Errorf("unsupported url %q", rawURL)
	}
	kind, err := types.ParseDimensionKind(parts[0])
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.entriesFor(u.Host, kind); err != nil {
		return err
	}
	list := s.file.entries(kind)
	for i, entry := range *list {
		if entry.Slug != parts[1] && entry.UUID != parts[1] {
			continue
		}
		next := append([]Entry{}, (*list)[:i]...)
		*list = append(next, (*list)[i+1:]...)
		return s.writeLocked()
	}
	return ErrNotFound
}

func (s *Source) writeLocked() error {
	data, err := yaml.Marshal(&s.file)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".fixture-*.yaml")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *Source) entriesFor(project string, kind types.DimensionKind) ([]Entry, error) {
	project = strings.TrimSpace(project)
	if s.file.Project != "" && project != "" && project != s.file.Project {
		return nil, fmt.Errorf("project %q not in fixture", project)
	}
	list := s.file.entries(kind)
	if list == nil {
		return nil, fmt.Errorf("unknown dimension kind %q", kind)
	}
	return *list, nil
}

func filterEntries(entries []Entry, search string) []Entry {
	search = strings.TrimSpace(search)
	if search == "" {
		return entries
	}
	haystack := make([]string, len(entries))
	for i, entry := range entries {
		haystack[i] = entry.Name + " " + entry.Slug
	}
	matches := fuzzy.Find(search, haystack)
	out := make([]Entry, 0, len(matches))
	for _, match := range matches {
		out = append(out, entries[match.Index])
	}
	return out
}

func (e Entry) record(kind types.DimensionKind) types.Record {
	switch kind {
	case types.DimensionTestbed:
		return types.Testbed{UUID: e.UUID, Slug: e.Slug, Name: e.Name}
	case types.DimensionBenchmark:
		return types.Benchmark{UUID: e.UUID, Slug: e.Slug, Name: e.Name}
	case types.DimensionMeasure:
		return types.Measure{UUID: e.UUID, Slug: e.Slug, Name: e.Name, Units: e.Units}
	default:
		return types.Branch{UUID: e.UUID, Slug: e.Slug, Name: e.Name}
	}
}

func (e Entry) resource() types.Resource {
	out := types.Resource{}
	for key, value := range e.Extra {
		out[key] = value
	}
	out["uuid"] = e.UUID
	out["slug"] = e.Slug
	out["name"] = e.Name
	if e.Units != "" {
		out["units"] = e.Units
	}
	return out
}

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	xansi "github.com/charmbracelet/x/ansi"

	"perfdeck/internal/deletion"
	"perfdeck/internal/types"
	"perfdeck/internal/urlstate"
)

const (
	uuidMain = "3fa85f64-5717-4562-b3fc-2c963f66afa6"
	uuidDev  = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	uuidBox  = "e4d2b0a1-9c1f-4f5e-8a7b-2f1d3c4b5a69"
)

type fakeAPI struct {
	mu        sync.Mutex
	records   map[types.DimensionKind][]types.Record
	listErr   error
	listCalls []types.ListParams
	deleteErr error
	deleted   []string
	tokens    []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{records: map[types.DimensionKind][]types.Record{
		types.DimensionBranch: {
			types.Branch{UUID: uuidMain, Slug: "main", Name: "main"},
			types.Branch{UUID: uuidDev, Slug: "dev", Name: "dev"},
		},
		types.DimensionTestbed: {
			types.Testbed{UUID: uuidBox, Slug: "box", Name: "box"},
		},
	}}
}

func (f *fakeAPI) ListDimensions(_ context.Context, _ string, kind types.DimensionKind, params types.ListParams) ([]types.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, params)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []types.Record{}
	for _, record := range f.records[kind] {
		if params.Search == "" || strings.Contains(record.Ref().Name, params.Search) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetDimension(_ context.Context, _ string, kind types.DimensionKind, slug string) (types.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records[kind] {
		if record.Ref().Slug == slug {
			return types.ResourceFromRecord(record)
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeAPI) DimensionURL(project string, kind types.DimensionKind, slug string) string {
	return "https://api.test/v0/projects/" + project + "/" + kind.Plural() + "/" + slug
}

func (f *fakeAPI) Delete(_ context.Context, rawURL, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, rawURL)
	return nil
}

func (f *fakeAPI) lastList() types.ListParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.listCalls) == 0 {
		return types.ListParams{}
	}
	return f.listCalls[len(f.listCalls)-1]
}

type fakePlotStore struct {
	mu    sync.Mutex
	saved map[string]string
}

func (s *fakePlotStore) Get(_ context.Context, project string) (*types.PlotView, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	query, ok := s.saved[project]
	if !ok {
		return nil, false, nil
	}
	return &types.PlotView{Project: project, Query: query}, true, nil
}

func (s *fakePlotStore) Save(_ context.Context, view *types.PlotView) (*types.PlotView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = map[string]string{}
	}
	s.saved[view.Project] = view.Query
	return view, nil
}

func newTestModel(t *testing.T, api *fakeAPI, query string) (*Model, *fakePlotStore) {
	t.Helper()
	store := &fakePlotStore{}
	m := NewModel(Options{
		API:          api,
		Plots:        store,
		Project:      "demo",
		ConsoleURL:   "https://bencher.test/",
		InitialQuery: query,
		Token:        func() string { return "token" },
	})
	m.resize(100, 30)
	runCmd(t, &m, m.startFetch())
	return &m, store
}

// runCmd executes cmd and feeds every resulting message back into the model
// until nothing is left.
func runCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 50 {
			t.Fatalf("command chain did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case dimensionsMsg, resourceMsg, deleteFinishedMsg, plotSavedMsg:
			_, follow := m.Update(msg)
			queue = append(queue, follow)
		}
	}
}

func press(t *testing.T, m *Model, keys ...tea.KeyPressMsg) {
	t.Helper()
	for _, key := range keys {
		_, cmd := m.Update(key)
		runCmd(t, m, cmd)
	}
}

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

var spaceKey = tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}

func viewText(m *Model) string {
	return xansi.Strip(fmt.Sprint(m.View().Content))
}

func TestToggleWritesCheckedUUIDsToQueryAndStore(t *testing.T) {
	m, store := newTestModel(t, newFakeAPI(), "")

	press(t, m, spaceKey, key('j'), spaceKey)

	checked := m.query.CheckedFor(types.DimensionBranch)
	if len(checked) != 2 || checked[0] != uuidMain || checked[1] != uuidDev {
		t.Fatalf("unexpected checked uuids %v", checked)
	}
	saved, err := urlstate.ParsePlotQuery(store.saved["demo"])
	if err != nil {
		t.Fatalf("parse saved query: %v", err)
	}
	if got := saved.CheckedFor(types.DimensionBranch); len(got) != 2 || got[1] != uuidDev {
		t.Fatalf("expected saved query to carry selection, got %v", got)
	}
	if !strings.Contains(m.router.Pathname(), uuidMain) {
		t.Fatalf("expected path to carry selection, got %q", m.router.Pathname())
	}
	view := viewText(m)
	if !strings.Contains(view, "[x] main") || !strings.Contains(view, "[x] dev") {
		t.Fatalf("expected both rows checked in view:\n%s", view)
	}

	press(t, m, spaceKey)
	checked = m.query.CheckedFor(types.DimensionBranch)
	if len(checked) != 1 || checked[0] != uuidMain {
		t.Fatalf("expected dev removed, got %v", checked)
	}
}

func TestClearOnlyOffersButtonWithSelection(t *testing.T) {
	m, _ := newTestModel(t, newFakeAPI(), "branches="+uuidDev)
	if !strings.Contains(viewText(m), "[Clear]") {
		t.Fatalf("expected clear button with a selection")
	}

	press(t, m, key('c'))
	if len(m.query.CheckedFor(types.DimensionBranch)) != 0 {
		t.Fatalf("expected selection cleared")
	}
	if strings.Contains(viewText(m), "[Clear]") {
		t.Fatalf("expected clear button hidden once empty")
	}
	if _, cmd := m.Update(key('c')); cmd != nil {
		t.Fatalf("expected clearing an empty selection to do nothing")
	}
}

func TestClearIsScopedToActiveTab(t *testing.T) {
	m, _ := newTestModel(t, newFakeAPI(), "tab=testbed&branches="+uuidMain+"&testbeds="+uuidBox)
	press(t, m, key('c'))
	if len(m.query.CheckedFor(types.DimensionTestbed)) != 0 {
		t.Fatalf("expected testbeds cleared")
	}
	if got := m.query.CheckedFor(types.DimensionBranch); len(got) != 1 {
		t.Fatalf("expected branches untouched, got %v", got)
	}
}

func TestTabSwitchDropsResultsForPreviousKind(t *testing.T) {
	api := newFakeAPI()
	m, _ := newTestModel(t, api, "")

	m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if m.tab.Kind() != types.DimensionTestbed || !m.tab.Loading() {
		t.Fatalf("expected testbed tab loading, kind=%s loading=%v", m.tab.Kind(), m.tab.Loading())
	}
	m.Update(dimensionsMsg{kind: types.DimensionBranch, records: api.records[types.DimensionBranch]})
	if !m.tab.Loading() {
		t.Fatalf("expected branch result to be dropped")
	}
	m.Update(dimensionsMsg{kind: types.DimensionTestbed, records: api.records[types.DimensionTestbed]})
	if m.tab.Loading() || len(m.tab.Records()) != 1 {
		t.Fatalf("expected testbed page installed, records=%d", len(m.tab.Records()))
	}
	if m.query.Tab != types.DimensionTestbed {
		t.Fatalf("expected query tab updated, got %s", m.query.Tab)
	}
}

func TestLastCompletedFetchWins(t *testing.T) {
	m, _ := newTestModel(t, newFakeAPI(), "")
	m.startFetch()
	m.Update(dimensionsMsg{kind: types.DimensionBranch, records: []types.Record{types.Branch{UUID: uuidMain, Slug: "main", Name: "main"}}})
	m.Update(dimensionsMsg{kind: types.DimensionBranch, records: []types.Record{types.Branch{UUID: uuidDev, Slug: "dev", Name: "dev"}}})
	records := m.tab.Records()
	if len(records) != 1 || records[0].Ref().UUID != uuidDev {
		t.Fatalf("expected the later result to win, got %v", records)
	}
}

func TestSelectionSurvivesSearchAndPaging(t *testing.T) {
	api := newFakeAPI()
	m, _ := newTestModel(t, api, "branches="+uuidMain+"&branches_page=2")

	press(t, m, key('/'), key('d'))
	params := api.lastList()
	if params.Search != "d" || params.Page != 1 {
		t.Fatalf("expected search to reset the page, got %+v", params)
	}
	if got := m.query.CheckedFor(types.DimensionBranch); len(got) != 1 || got[0] != uuidMain {
		t.Fatalf("expected selection kept across search, got %v", got)
	}
	rows := m.tab.Rows()
	if len(rows) != 1 || rows[0].Ref.Slug != "dev" || rows[0].Checked {
		t.Fatalf("unexpected rows after search %#v", rows)
	}
	press(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.searching {
		t.Fatalf("expected esc to leave search")
	}
	if !strings.Contains(m.router.Pathname(), "branches_search=d") {
		t.Fatalf("expected search in path, got %q", m.router.Pathname())
	}
}

func TestFetchErrorShowsNothingFound(t *testing.T) {
	api := newFakeAPI()
	api.listErr = errors.New("boom")
	m, _ := newTestModel(t, api, "")
	if !m.tab.NothingFound() {
		t.Fatalf("expected empty resolved list")
	}
	view := viewText(m)
	if !strings.Contains(view, "No branches found") || !strings.Contains(view, "boom") {
		t.Fatalf("expected empty message and error status:\n%s", view)
	}
}

func TestPlaceholdersWhileLoading(t *testing.T) {
	m := NewModel(Options{API: newFakeAPI(), Project: "demo", PerPage: 3})
	m.resize(100, 30)
	m.startFetch()
	if got := strings.Count(viewText(&m), placeholderLabel); got != 3 {
		t.Fatalf("expected 3 placeholder rows, got %d", got)
	}
	if _, cmd := m.Update(spaceKey); cmd != nil {
		t.Fatalf("expected toggle ignored while loading")
	}
}

func TestMouseClickTogglesRow(t *testing.T) {
	m, _ := newTestModel(t, newFakeAPI(), "")
	_, cmd := m.Update(tea.MouseClickMsg{Button: tea.MouseLeft, X: 3, Y: plotHeaderLines + 1})
	runCmd(t, m, cmd)
	if got := m.query.CheckedFor(types.DimensionBranch); len(got) != 1 || got[0] != uuidDev {
		t.Fatalf("expected click to check dev, got %v", got)
	}
}

func TestCopyPlotLink(t *testing.T) {
	orig := clipboardWriteAll
	t.Cleanup(func() { clipboardWriteAll = orig })
	var copied string
	clipboardWriteAll = func(text string) error {
		copied = text
		return nil
	}

	m, _ := newTestModel(t, newFakeAPI(), "branches="+uuidMain)
	press(t, m, key('y'))
	want := "https://bencher.test/console/projects/demo/perf?" + m.query.Encode()
	if copied != want {
		t.Fatalf("expected %q, got %q", want, copied)
	}
	if m.status != "copied plot link" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func openManagedDev(t *testing.T, m *Model) {
	t.Helper()
	press(t, m, key('j'), key('m'))
	if m.mode != viewManage {
		t.Fatalf("expected manage view")
	}
	if _, ok := m.manageResource(); !ok {
		t.Fatalf("expected resource resolved")
	}
	press(t, m, key('d'))
	if !m.confirm.IsOpen() || m.deleter.State() != deletion.StateConfirming {
		t.Fatalf("expected confirm dialog open")
	}
	if !strings.Contains(viewText(m), deleteConfirmMessage) {
		t.Fatalf("expected confirm copy in view:\n%s", viewText(m))
	}
}

func TestManageDeleteNavigatesBack(t *testing.T) {
	api := newFakeAPI()
	m, _ := newTestModel(t, api, "branches="+uuidMain)
	plotPath := m.router.Pathname()
	openManagedDev(t, m)
	if !strings.Contains(m.router.Pathname(), "/branches/dev") {
		t.Fatalf("unexpected manage path %q", m.router.Pathname())
	}

	press(t, m, key('y'))

	if len(api.deleted) != 1 || api.deleted[0] != "https://api.test/v0/projects/demo/branches/dev" {
		t.Fatalf("unexpected deletes %v", api.deleted)
	}
	if api.tokens[0] != "token" {
		t.Fatalf("expected token forwarded, got %v", api.tokens)
	}
	if m.mode != viewPlot || m.confirm.IsOpen() {
		t.Fatalf("expected to land back on the plot view")
	}
	if m.router.Pathname() != plotPath {
		t.Fatalf("expected back path %q, got %q", plotPath, m.router.Pathname())
	}
	if got := m.query.CheckedFor(types.DimensionBranch); len(got) != 1 || got[0] != uuidMain {
		t.Fatalf("expected selection restored from back path, got %v", got)
	}
}

func TestManageDeleteFailureKeepsDialog(t *testing.T) {
	api := newFakeAPI()
	api.deleteErr = errors.New("503")
	m, _ := newTestModel(t, api, "")
	openManagedDev(t, m)

	press(t, m, key('y'))
	if !m.confirm.IsOpen() || m.confirm.Busy() {
		t.Fatalf("expected dialog back to its buttons after failure")
	}
	if m.deleter.State() != deletion.StateConfirming || m.mode != viewManage {
		t.Fatalf("expected to stay confirming, state=%s", m.deleter.State())
	}

	api.deleteErr = nil
	press(t, m, key('y'))
	if len(api.deleted) != 1 || m.mode != viewPlot {
		t.Fatalf("expected retry to succeed, deleted=%v", api.deleted)
	}
}

func TestDeleteWithoutTokenIsNotSent(t *testing.T) {
	api := newFakeAPI()
	m, _ := newTestModel(t, api, "")
	m.token = func() string { return "" }
	openManagedDev(t, m)

	press(t, m, key('y'))
	if len(api.tokens) != 0 {
		t.Fatalf("expected no request without a token")
	}
	if !m.confirm.IsOpen() || m.confirm.Busy() {
		t.Fatalf("expected dialog to stay open and idle")
	}
	press(t, m, key('n'))
	if m.confirm.IsOpen() || m.deleter.State() != deletion.StateIdle {
		t.Fatalf("expected cancel to close the dialog")
	}
}

func TestManageEscReturnsToPlot(t *testing.T) {
	m, _ := newTestModel(t, newFakeAPI(), "tab=testbed")
	press(t, m, key('m'))
	if m.mode != viewManage || !strings.Contains(viewText(m), "box") {
		t.Fatalf("expected manage view of box:\n%s", viewText(m))
	}
	press(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != viewPlot || m.tab.Kind() != types.DimensionTestbed {
		t.Fatalf("expected plot view on testbeds, mode=%v kind=%s", m.mode, m.tab.Kind())
	}
}

func TestResourceMarkdownListsFields(t *testing.T) {
	md := resourceMarkdown(types.DimensionMeasure, types.Resource{
		"uuid":  uuidMain,
		"slug":  "latency",
		"name":  "Latency",
		"units": "ns | nanoseconds",
		"meta":  map[string]any{"a": 1},
	})
	for _, want := range []string{"## Latency", "| uuid | " + uuidMain + " |", `ns \| nanoseconds`, "`{\"a\":1}`"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in markdown:\n%s", want, md)
		}
	}
	if strings.Index(md, "| name |") > strings.Index(md, "| meta |") {
		t.Fatalf("expected identity fields first:\n%s", md)
	}
}

func TestOpaqueIDsSurviveTabRoundTrip(t *testing.T) {
	api := newFakeAPI()
	api.records[types.DimensionBranch] = []types.Record{
		types.Branch{UUID: "a1", Slug: "main", Name: "main"},
		types.Branch{UUID: "a2", Slug: "dev", Name: "dev"},
	}
	m, store := newTestModel(t, api, "")

	press(t, m, spaceKey)
	if got := m.query.CheckedFor(types.DimensionBranch); len(got) != 1 || got[0] != "a1" {
		t.Fatalf("expected a1 in query, got %v", got)
	}
	if !strings.Contains(store.saved["demo"], "branches=a1") {
		t.Fatalf("expected saved query to carry a1, got %q", store.saved["demo"])
	}
	if !strings.Contains(viewText(m), "Branches (1)") {
		t.Fatalf("expected tab count for a1:\n%s", viewText(m))
	}

	press(t, m, tea.KeyPressMsg{Code: tea.KeyTab}, tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if m.tab.Kind() != types.DimensionBranch {
		t.Fatalf("expected branch tab, got %s", m.tab.Kind())
	}
	if got := m.tab.Checked(); len(got) != 1 || got[0] != "a1" {
		t.Fatalf("expected a1 checked after round trip, got %v", got)
	}
	rows := m.tab.Rows()
	if len(rows) != 2 || !rows[0].Checked || rows[1].Checked {
		t.Fatalf("unexpected rows after round trip: %#v", rows)
	}
}

func TestUppercaseUUIDStaysCheckedAfterTabRoundTrip(t *testing.T) {
	api := newFakeAPI()
	upper := strings.ToUpper(uuidMain)
	api.records[types.DimensionBranch] = []types.Record{
		types.Branch{UUID: upper, Slug: "main", Name: "main"},
	}
	m, _ := newTestModel(t, api, "")

	press(t, m, spaceKey)
	press(t, m, tea.KeyPressMsg{Code: tea.KeyTab}, tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})

	rows := m.tab.Rows()
	if len(rows) != 1 || !rows[0].Checked {
		t.Fatalf("expected uppercase uuid row checked after round trip, got %#v", rows)
	}
	if got := m.query.CheckedFor(types.DimensionBranch); len(got) != 1 || got[0] != uuidMain {
		t.Fatalf("expected canonical uuid in query, got %v", got)
	}
	if !strings.Contains(viewText(m), "[x] main") {
		t.Fatalf("expected main rendered checked:\n%s", viewText(m))
	}
}

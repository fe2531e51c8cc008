package deletion

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"perfdeck/internal/logging"
	"perfdeck/internal/types"
)

type fakeDeleter struct {
	calls   atomic.Int32
	err     error
	block   chan struct{}
	started chan struct{}
	mu      sync.Mutex
	urls    []string
	tokens  []string
}

func (f *fakeDeleter) Delete(_ context.Context, url, token string) error {
	f.calls.Add(1)
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.err
}

type fakeNavigator struct {
	path    string
	visited []string
}

func (f *fakeNavigator) Pathname() string { return f.path }

func (f *fakeNavigator) Navigate(path string) {
	f.visited = append(f.visited, path)
	f.path = path
}

type harness struct {
	controller *Controller
	deleter    *fakeDeleter
	navigator  *fakeNavigator
	resource   types.Resource
	resolved   bool
	token      string
	logs       *bytes.Buffer
}

func newHarness() *harness {
	h := &harness{
		deleter:   &fakeDeleter{},
		navigator: &fakeNavigator{path: "/console/projects/demo/branches/main"},
		resource:  types.Resource{"uuid": "a1", "slug": "main", "name": "main"},
		resolved:  true,
		token:     "valid-token",
		logs:      &bytes.Buffer{},
	}
	h.controller = NewController(Options{
		Deleter:   h.deleter,
		Navigator: h.navigator,
		Resource: func() (types.Resource, bool) {
			return h.resource, h.resolved
		},
		Token:    func() string { return h.token },
		ValidJWT: func(token string) bool { return token == "valid-token" },
		URL: func(resource types.Resource) string {
			return "https://api.example.test/v0/projects/demo/branches/" + resource.Slug()
		},
		Path: func(current string, resource types.Resource) string {
			return strings.TrimSuffix(current, "/"+resource.Slug())
		},
		Logger: logging.New(h.logs, logging.Debug),
	})
	return h
}

func TestRequestConfirmThenCancel(t *testing.T) {
	h := newHarness()
	c := h.controller

	c.RequestConfirm()
	if c.State() != StateConfirming {
		t.Fatalf("expected confirming, got %s", c.State())
	}
	c.RequestConfirm()
	if c.State() != StateConfirming {
		t.Fatalf("expected request confirm to be idempotent, got %s", c.State())
	}
	c.Cancel()
	if c.State() != StateIdle {
		t.Fatalf("expected idle after cancel, got %s", c.State())
	}
	if c.ConfirmDelete(context.Background()) {
		t.Fatalf("expected confirm delete from idle to be a no-op")
	}
	if got := h.deleter.calls.Load(); got != 0 {
		t.Fatalf("expected no delete calls, got %d", got)
	}
	if c.State() != StateIdle {
		t.Fatalf("expected to stay idle, got %s", c.State())
	}
}

func TestConfirmDeleteSuccessNavigates(t *testing.T) {
	h := newHarness()
	h.controller.RequestConfirm()

	if !h.controller.ConfirmDelete(context.Background()) {
		t.Fatalf("expected delete to be sent")
	}
	if got := h.deleter.calls.Load(); got != 1 {
		t.Fatalf("expected one delete call, got %d", got)
	}
	if h.deleter.urls[0] != "https://api.example.test/v0/projects/demo/branches/main" {
		t.Fatalf("unexpected url: %q", h.deleter.urls[0])
	}
	if h.deleter.tokens[0] != "valid-token" {
		t.Fatalf("unexpected token: %q", h.deleter.tokens[0])
	}
	if len(h.navigator.visited) != 1 || h.navigator.visited[0] != "/console/projects/demo/branches" {
		t.Fatalf("unexpected navigation: %#v", h.navigator.visited)
	}
	if h.controller.State() != StateIdle || h.controller.InFlight() {
		t.Fatalf("expected idle and not in flight, got %s inFlight=%v", h.controller.State(), h.controller.InFlight())
	}
}

func TestConfirmDeleteFailureStaysConfirming(t *testing.T) {
	h := newHarness()
	h.deleter.err = errors.New("server said no")
	h.controller.RequestConfirm()

	h.controller.ConfirmDelete(context.Background())

	if h.controller.State() != StateConfirming {
		t.Fatalf("expected confirming after failure, got %s", h.controller.State())
	}
	if h.controller.InFlight() {
		t.Fatalf("expected in-flight flag cleared after failure")
	}
	if len(h.navigator.visited) != 0 {
		t.Fatalf("expected no navigation on failure, got %#v", h.navigator.visited)
	}
	if !strings.Contains(h.logs.String(), "server said no") {
		t.Fatalf("expected failure to be logged, got %q", h.logs.String())
	}

	h.deleter.err = nil
	if !h.controller.ConfirmDelete(context.Background()) {
		t.Fatalf("expected manual retry to send again")
	}
	if got := h.deleter.calls.Load(); got != 2 {
		t.Fatalf("expected two calls after retry, got %d", got)
	}
	if h.controller.State() != StateIdle {
		t.Fatalf("expected idle after successful retry, got %s", h.controller.State())
	}
}

func TestConfirmDeletePreconditionGuard(t *testing.T) {
	cases := []struct {
		name  string
		setup func(h *harness)
	}{
		{name: "unresolved resource", setup: func(h *harness) { h.resolved = false }},
		{name: "empty resource", setup: func(h *harness) { h.resource = types.Resource{} }},
		{name: "invalid token", setup: func(h *harness) { h.token = "expired" }},
		{name: "missing token", setup: func(h *harness) { h.token = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			tc.setup(h)
			h.controller.RequestConfirm()

			if h.controller.ConfirmDelete(context.Background()) {
				t.Fatalf("expected no request to be sent")
			}
			if got := h.deleter.calls.Load(); got != 0 {
				t.Fatalf("expected zero delete calls, got %d", got)
			}
			if h.controller.State() != StateConfirming {
				t.Fatalf("expected to stay confirming, got %s", h.controller.State())
			}
			if h.controller.InFlight() {
				t.Fatalf("expected in-flight flag untouched")
			}
		})
	}
}

func TestAtMostOneDeleteInFlight(t *testing.T) {
	h := newHarness()
	h.deleter.block = make(chan struct{})
	h.deleter.started = make(chan struct{}, 1)
	h.controller.RequestConfirm()

	done := make(chan bool, 1)
	go func() {
		done <- h.controller.ConfirmDelete(context.Background())
	}()

	select {
	case <-h.deleter.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("first delete never started")
	}
	if !h.controller.InFlight() || h.controller.State() != StateDeleting {
		t.Fatalf("expected deleting while request is outstanding")
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.controller.ConfirmDelete(context.Background()) {
				t.Errorf("expected concurrent confirm to be a no-op")
			}
		}()
	}
	wg.Wait()
	h.controller.Cancel()
	if h.controller.State() != StateDeleting {
		t.Fatalf("expected cancel to be ignored while deleting")
	}

	close(h.deleter.block)
	if !<-done {
		t.Fatalf("expected first confirm to report a sent request")
	}
	if got := h.deleter.calls.Load(); got != 1 {
		t.Fatalf("expected exactly one delete call, got %d", got)
	}
}

func TestCallbacksMayReadControllerState(t *testing.T) {
	h := newHarness()
	var seen []State
	h.controller.resource = func() (types.Resource, bool) {
		seen = append(seen, h.controller.State())
		return h.resource, h.resolved
	}
	h.controller.token = func() string {
		if h.controller.InFlight() {
			t.Errorf("expected nothing in flight while reading the token")
		}
		return h.token
	}
	h.controller.RequestConfirm()

	done := make(chan bool, 1)
	go func() {
		done <- h.controller.ConfirmDelete(context.Background())
	}()
	select {
	case sent := <-done:
		if !sent {
			t.Fatalf("expected delete to be sent")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("confirm delete deadlocked on a callback reading state")
	}
	if len(seen) != 1 || seen[0] != StateConfirming {
		t.Fatalf("expected resource callback to observe confirming, got %v", seen)
	}
	if got := h.deleter.calls.Load(); got != 1 {
		t.Fatalf("expected one delete call, got %d", got)
	}
}

func TestCancelDuringCallbacksSkipsRequest(t *testing.T) {
	h := newHarness()
	h.controller.token = func() string {
		h.controller.Cancel()
		return h.token
	}
	h.controller.RequestConfirm()

	if h.controller.ConfirmDelete(context.Background()) {
		t.Fatalf("expected cancelled confirmation to send nothing")
	}
	if got := h.deleter.calls.Load(); got != 0 {
		t.Fatalf("expected zero delete calls, got %d", got)
	}
	if h.controller.State() != StateIdle || h.controller.InFlight() {
		t.Fatalf("expected idle, got %s inFlight=%v", h.controller.State(), h.controller.InFlight())
	}
}

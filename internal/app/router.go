package app

import "sync"

// router holds the current console path. The delete controller navigates
// from a command goroutine, so access is locked; the model picks the new
// path up when the command's message arrives.
type router struct {
	mu      sync.Mutex
	path    string
	history []string
}

func newRouter(path string) *router {
	return &router{path: path}
}

func (r *router) Pathname() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

func (r *router) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if path == "" || path == r.path {
		return
	}
	r.history = append(r.history, r.path)
	r.path = path
}

// Back returns to the previous path, if any.
func (r *router) Back() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return false
	}
	r.path = r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	return true
}

// Replace swaps the current path without adding a history entry.
func (r *router) Replace(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = path
}

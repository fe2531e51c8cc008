// Package deletion guards a single destructive request behind a two-step
// confirmation.
package deletion

import (
	"context"
	"strings"
	"sync"

	"perfdeck/internal/logging"
	"perfdeck/internal/types"
)

type State int

const (
	StateIdle State = iota
	StateConfirming
	StateDeleting
)

func (s State) String() string {
	switch s {
	case StateConfirming:
		return "confirming"
	case StateDeleting:
		return "deleting"
	default:
		return "idle"
	}
}

type Deleter interface {
	Delete(ctx context.Context, url, token string) error
}

type Navigator interface {
	Pathname() string
	Navigate(path string)
}

// ResourceFunc returns the resource being viewed, or false while it has not
// been resolved.
type ResourceFunc func() (types.Resource, bool)

type TokenFunc func() string

type TokenValidator func(token string) bool

// PathFunc builds the follow-up path from the current path and the deleted
// resource.
type PathFunc func(currentPath string, resource types.Resource) string

type URLFunc func(resource types.Resource) string

type Options struct {
	Deleter   Deleter
	Navigator Navigator
	Resource  ResourceFunc
	Token     TokenFunc
	ValidJWT  TokenValidator
	URL       URLFunc
	Path      PathFunc
	Logger    logging.Logger
}

type Controller struct {
	mu       sync.Mutex
	state    State
	inFlight bool

	deleter   Deleter
	navigator Navigator
	resource  ResourceFunc
	token     TokenFunc
	validJWT  TokenValidator
	url       URLFunc
	path      PathFunc
	logger    logging.Logger
}

func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	validJWT := opts.ValidJWT
	if validJWT == nil {
		validJWT = func(token string) bool { return strings.TrimSpace(token) != "" }
	}
	return &Controller{
		deleter:   opts.Deleter,
		navigator: opts.Navigator,
		resource:  opts.Resource,
		token:     opts.Token,
		validJWT:  validJWT,
		url:       opts.URL,
		path:      opts.Path,
		logger:    logger,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InFlight reports whether a delete request is outstanding. The trigger
// affordance is disabled while it is.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *Controller) RequestConfirm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateIdle {
		c.state = StateConfirming
	}
}

func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateConfirming {
		c.state = StateIdle
	}
}

// ConfirmDelete issues the delete request when the controller is confirming,
// nothing is in flight, the resource is resolved and the token is valid.
// Otherwise it does nothing. It reports whether a request was sent. A failed
// request is logged and leaves the controller confirming so the user can try
// again; a successful one navigates away and returns to idle.
func (c *Controller) ConfirmDelete(ctx context.Context) bool {
	if !c.ready() {
		return false
	}
	// The callbacks may read back into the controller, so they run unlocked.
	resource, ok := c.resolvedResource()
	if !ok {
		return false
	}
	token := ""
	if c.token != nil {
		token = c.token()
	}
	if !c.validJWT(token) {
		return false
	}
	url := ""
	if c.url != nil {
		url = c.url(resource)
	}
	if strings.TrimSpace(url) == "" {
		return false
	}

	c.mu.Lock()
	if c.state != StateConfirming || c.inFlight {
		c.mu.Unlock()
		return false
	}
	c.inFlight = true
	c.state = StateDeleting
	c.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	err := c.deleter.Delete(ctx, url, token)

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		c.state = StateConfirming
		c.mu.Unlock()
		c.logger.Error("delete failed", logging.F("url", url), logging.F("err", err))
		return true
	}
	c.state = StateIdle
	c.mu.Unlock()

	c.logger.Info("deleted", logging.F("url", url), logging.F("uuid", resource.UUID()))
	if c.navigator != nil && c.path != nil {
		c.navigator.Navigate(c.path(c.navigator.Pathname(), resource))
	}
	return true
}

func (c *Controller) ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateConfirming && !c.inFlight && c.deleter != nil
}

func (c *Controller) resolvedResource() (types.Resource, bool) {
	if c.resource == nil {
		return nil, false
	}
	resource, ok := c.resource()
	if !ok || len(resource) == 0 {
		return nil, false
	}
	return resource, true
}

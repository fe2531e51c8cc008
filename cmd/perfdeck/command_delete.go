package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/huh"

	"perfdeck/internal/deletion"
	"perfdeck/internal/logging"
	"perfdeck/internal/types"
	"perfdeck/internal/urlstate"
)

var (
	errDeleteNotInteractive = errors.New("refusing to delete without --yes when stdin is not a terminal")
	errDeleteNeedsToken     = errors.New("a valid api token is required to delete")
	errDeleteNotSent        = errors.New("delete request was not sent")
)

type confirmFunc func(title, description string) (bool, error)

type DeleteCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	newBackend backendFactory
	confirm    confirmFunc
	isTerminal func() bool
}

func NewDeleteCommand(stdout, stderr io.Writer, newBackend backendFactory, confirm confirmFunc, isTerminal func() bool) *DeleteCommand {
	return &DeleteCommand{
		stdout:     stdout,
		stderr:     stderr,
		newBackend: newBackend,
		confirm:    confirm,
		isTerminal: isTerminal,
	}
}

func (c *DeleteCommand) Run(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	flags := registerBackendFlags(fs)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: perfdeck delete [flags] <kind> <slug>")
	}
	kind, err := types.ParseDimensionKind(fs.Arg(0))
	if err != nil {
		return err
	}
	slug := strings.TrimSpace(fs.Arg(1))
	if slug == "" {
		return errors.New("slug is required")
	}

	backend, err := c.newBackend(flags.options(c.stderr))
	if err != nil {
		return err
	}
	project, err := flags.resolveProject(backend)
	if err != nil {
		return err
	}
	ctx := context.Background()
	resource, err := backend.GetDimension(ctx, project, kind, slug)
	if err != nil {
		return err
	}

	deleter := &recordingDeleter{next: backend}
	nav := &pathNavigator{path: urlstate.ManagePath(project, kind, slug, "")}
	ctrl := deletion.NewController(deletion.Options{
		Deleter:   deleter,
		Navigator: nav,
		Resource: func() (types.Resource, bool) {
			return resource, true
		},
		Token:    backend.Token,
		ValidJWT: backend.ValidJWT,
		URL: func(r types.Resource) string {
			if s := r.Slug(); s != "" {
				return backend.DimensionURL(project, kind, s)
			}
			return backend.DimensionURL(project, kind, slug)
		},
		Path: func(current string, _ types.Resource) string {
			return urlstate.AfterDeletePath(current)
		},
		Logger: backend.Logger().With(logging.F("kind", string(kind))),
	})
	ctrl.RequestConfirm()

	if !*yes {
		if c.isTerminal == nil || !c.isTerminal() {
			return errDeleteNotInteractive
		}
		name := resource.Name()
		if name == "" {
			name = slug
		}
		ok, err := c.confirm("Delete "+string(kind)+" "+name+"?", "Are you sure? This is permanent.")
		if err != nil {
			return err
		}
		if !ok {
			ctrl.Cancel()
			fmt.Fprintln(c.stdout, "cancelled")
			return nil
		}
	}

	if !ctrl.ConfirmDelete(ctx) {
		if !backend.ValidJWT(backend.Token()) {
			return errDeleteNeedsToken
		}
		return errDeleteNotSent
	}
	if err := deleter.Err(); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "deleted %s %s\n", kind, slug)
	fmt.Fprintln(c.stdout, backend.Settings().ConsoleURL()+nav.Pathname())
	return nil
}

func confirmWithForm(title, description string) (bool, error) {
	confirmed := false
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Affirmative("I am 💯 sure").
			Negative("Cancel").
			Value(&confirmed),
	)).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return confirmed, err
}

// recordingDeleter keeps the error of the last request, which the controller
// only logs.
type recordingDeleter struct {
	next deletion.Deleter
	mu   sync.Mutex
	err  error
}

func (d *recordingDeleter) Delete(ctx context.Context, url, token string) error {
	err := d.next.Delete(ctx, url, token)
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
	return err
}

func (d *recordingDeleter) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

type pathNavigator struct {
	path string
}

func (n *pathNavigator) Pathname() string {
	return n.path
}

func (n *pathNavigator) Navigate(path string) {
	n.path = path
}

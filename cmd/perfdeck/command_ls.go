package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"

	"golang.org/x/sync/errgroup"

	"perfdeck/internal/logging"
	"perfdeck/internal/types"
)

type LSCommand struct {
	stdout     io.Writer
	stderr     io.Writer
	newBackend backendFactory
}

func NewLSCommand(stdout, stderr io.Writer, newBackend backendFactory) *LSCommand {
	return &LSCommand{
		stdout:     stdout,
		stderr:     stderr,
		newBackend: newBackend,
	}
}

func (c *LSCommand) Run(args []string) error {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	flags := registerBackendFlags(fs)
	kindName := fs.String("kind", string(types.DimensionBranch), "dimension kind: branch|testbed|benchmark|measure")
	all := fs.Bool("all", false, "list every dimension kind")
	search := fs.String("search", "", "only list dimensions matching this term")
	page := fs.Int("page", 1, "page to list")
	perPage := fs.Int("per-page", 0, "rows per page (default [console] per_page)")
	asJSON := fs.Bool("json", false, "print records as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kinds := types.DimensionKinds()
	if !*all {
		kind, err := types.ParseDimensionKind(*kindName)
		if err != nil {
			return err
		}
		kinds = []types.DimensionKind{kind}
	}

	backend, err := c.newBackend(flags.options(c.stderr))
	if err != nil {
		return err
	}
	project, err := flags.resolveProject(backend)
	if err != nil {
		return err
	}
	params := types.ListParams{Page: *page, PerPage: *perPage, Search: *search}
	if params.PerPage <= 0 {
		params.PerPage = backend.Settings().PerPage()
	}
	params = params.Normalized()

	records, err := listKinds(context.Background(), backend, project, kinds, params)
	if err != nil {
		return err
	}
	backend.Logger().Debug("listed dimensions", logging.F("project", project), logging.F("count", len(records)))

	if *asJSON {
		encoder := json.NewEncoder(c.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}
	printDimensions(c.stdout, records)
	return nil
}

// listKinds fetches one page per kind concurrently and returns the records in
// tab order.
func listKinds(ctx context.Context, backend commandBackend, project string, kinds []types.DimensionKind, params types.ListParams) ([]types.Record, error) {
	pages := make([][]types.Record, len(kinds))
	group, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		group.Go(func() error {
			records, err := backend.ListDimensions(ctx, project, kind, params)
			if err != nil {
				return err
			}
			pages[i] = records
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	var out []types.Record
	for _, records := range pages {
		out = append(out, records...)
	}
	return out, nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"perfdeck/internal/types"
	"perfdeck/internal/urlstate"
)

type URLCommand struct {
	stdout         io.Writer
	stderr         io.Writer
	loadConfig     configLoader
	openRepository repositoryOpener
}

func NewURLCommand(stdout, stderr io.Writer, loadConfig configLoader, openRepository repositoryOpener) *URLCommand {
	return &URLCommand{
		stdout:         stdout,
		stderr:         stderr,
		loadConfig:     loadConfig,
		openRepository: openRepository,
	}
}

func (c *URLCommand) Run(args []string) error {
	fs := flag.NewFlagSet("url", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	configPath := fs.String("config", "", "config file path")
	projectFlag := fs.String("project", "", "project slug")
	saved := fs.Bool("saved", false, "start from the plot query saved by the console")
	tab := fs.String("tab", "", "active dimension tab")
	manage := fs.String("manage", "", "print the manage page of KIND/SLUG instead of the plot")
	relative := fs.Bool("relative", false, "print the path without the console host")
	var checks stringList
	fs.Var(&checks, "check", "KIND=UUID[,UUID...] to check (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := c.loadConfig(*configPath)
	if err != nil {
		return err
	}
	project := strings.TrimSpace(*projectFlag)
	if project == "" {
		project = cfg.Project()
	}
	if project == "" {
		return errProjectRequired
	}

	query := urlstate.NewPlotQuery()
	if *saved && c.openRepository != nil {
		repo, err := c.openRepository(cfg)
		if err != nil {
			return err
		}
		defer repo.Close()
		view, ok, err := repo.Plots().Get(context.Background(), project)
		if err != nil {
			return err
		}
		if ok {
			query, err = urlstate.ParsePlotQuery(view.Query)
			if err != nil {
				return err
			}
		}
	}
	if strings.TrimSpace(*tab) != "" {
		kind, err := types.ParseDimensionKind(*tab)
		if err != nil {
			return err
		}
		query = query.WithTab(kind)
	}
	for _, raw := range checks {
		kind, uuids, err := parseCheckFlag(raw)
		if err != nil {
			return err
		}
		query = query.WithChecked(kind, append(query.CheckedFor(kind), uuids...))
	}

	path := urlstate.PlotPath(project, query)
	if strings.TrimSpace(*manage) != "" {
		kind, slug, err := parseManageFlag(*manage)
		if err != nil {
			return err
		}
		path = urlstate.ManagePath(project, kind, slug, path)
	}
	if !*relative {
		path = cfg.ConsoleURL() + path
	}
	fmt.Fprintln(c.stdout, path)
	return nil
}

func parseCheckFlag(raw string) (types.DimensionKind, []string, error) {
	name, list, ok := strings.Cut(raw, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid --check %q: want KIND=UUID[,UUID...]", raw)
	}
	kind, err := types.ParseDimensionKind(name)
	if err != nil {
		return "", nil, err
	}
	uuids := urlstate.SplitUUIDs(list)
	if len(uuids) == 0 {
		return "", nil, fmt.Errorf("invalid --check %q: no uuids", raw)
	}
	return kind, uuids, nil
}

func parseManageFlag(raw string) (types.DimensionKind, string, error) {
	name, slug, ok := strings.Cut(strings.Trim(strings.TrimSpace(raw), "/"), "/")
	if !ok || strings.TrimSpace(slug) == "" {
		return "", "", errors.New("invalid --manage: want KIND/SLUG")
	}
	kind, err := types.ParseDimensionKind(name)
	if err != nil {
		return "", "", err
	}
	return kind, strings.TrimSpace(slug), nil
}

package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"

	"perfdeck/internal/app"
	"perfdeck/internal/config"
	"perfdeck/internal/logging"
	"perfdeck/internal/store"
)

type repositoryOpener func(cfg config.Config) (store.Repository, error)

type UICommand struct {
	stderr         io.Writer
	newBackend     backendFactory
	openRepository repositoryOpener
	openUILog      func() (io.WriteCloser, error)
}

func NewUICommand(stderr io.Writer, newBackend backendFactory, openRepository repositoryOpener, openUILog func() (io.WriteCloser, error)) *UICommand {
	return &UICommand{
		stderr:         stderr,
		newBackend:     newBackend,
		openRepository: openRepository,
		openUILog:      openUILog,
	}
}

func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	flags := registerBackendFlags(fs)
	light := fs.Bool("light", false, "render for a light terminal background")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var logOutput io.Writer = io.Discard
	if c.openUILog != nil {
		if file, err := c.openUILog(); err == nil {
			defer file.Close()
			logOutput = file
		}
	}

	backend, err := c.newBackend(flags.options(logOutput))
	if err != nil {
		return err
	}
	project, err := flags.resolveProject(backend)
	if err != nil {
		return err
	}
	cfg := backend.Settings()
	logger := backend.Logger()
	notices := tokenNotices(backend)

	var plots app.PlotViewStore
	initialQuery := ""
	if c.openRepository != nil {
		repo, err := c.openRepository(cfg)
		if err != nil {
			logger.Warn("plot views unavailable", logging.F("err", err))
			notices = append(notices, "saved plots unavailable: "+err.Error())
		} else {
			defer repo.Close()
			plots = repo.Plots()
			view, ok, err := repo.Plots().Get(context.Background(), project)
			switch {
			case err != nil:
				logger.Warn("load plot view failed", logging.F("project", project), logging.F("err", err))
			case ok:
				initialQuery = view.Query
			}
		}
	}

	logger.Info("starting console",
		logging.F("project", project),
		logging.F("offline", backend.Offline()),
		logging.F("token_source", string(backend.TokenSource())),
	)
	return backend.RunUI(app.Options{
		Plots:           plots,
		Logger:          logger,
		Project:         project,
		ConsoleURL:      cfg.ConsoleURL(),
		PerPage:         cfg.PerPage(),
		InitialQuery:    initialQuery,
		Token:           backend.Token,
		ValidJWT:        backend.ValidJWT,
		LightBackground: *light,
		Notices:         notices,
	})
}

// tokenNotices warns up front when deleting cannot work.
func tokenNotices(backend commandBackend) []string {
	if backend.Offline() {
		return []string{"offline: changes go to the fixture file"}
	}
	token := backend.Token()
	switch {
	case token == "":
		return []string{"no api token: deleting is disabled"}
	case !backend.ValidJWT(token):
		return []string{"api token is not a valid jwt: deleting is disabled"}
	}
	return nil
}

func openRepository(cfg config.Config) (store.Repository, error) {
	dbPath, err := config.StateDBPath()
	if err != nil {
		return nil, err
	}
	statePath, err := config.StatePath()
	if err != nil {
		return nil, err
	}
	paths := store.RepositoryPaths{PlotsPath: statePath, DBPath: dbPath}
	repo, err := store.OpenRepository(paths, cfg.StoreBackend())
	if err != nil {
		return nil, err
	}
	if err := store.SeedRepositoryFromFiles(context.Background(), repo, paths); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

// openUILog opens the file the console logs to. The terminal belongs to the
// UI while it runs, so the standard logger is redirected there too.
func openUILog() (io.WriteCloser, error) {
	logPath, err := config.UILogPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetOutput(file)
	return file, nil
}

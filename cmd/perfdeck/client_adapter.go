package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"strings"
	"time"

	"perfdeck/internal/app"
	"perfdeck/internal/auth"
	"perfdeck/internal/client"
	"perfdeck/internal/config"
	"perfdeck/internal/fixture"
	"perfdeck/internal/logging"
	"perfdeck/internal/types"
)

const (
	fixtureDebounce = 150 * time.Millisecond
	// offlineToken stands in for an api token when dimensions come from a
	// fixture file, which accepts any non-empty token.
	offlineToken = "offline"
)

var errProjectRequired = errors.New("project is required: pass --project or set [console] project")

type backendFactory func(opts backendOptions) (commandBackend, error)

type configLoader func(path string) (config.Config, error)

type backendOptions struct {
	ConfigPath string
	Token      string
	Fixture    string
	LogOutput  io.Writer
}

type commandBackend interface {
	ListDimensions(ctx context.Context, project string, kind types.DimensionKind, params types.ListParams) ([]types.Record, error)
	GetDimension(ctx context.Context, project string, kind types.DimensionKind, slug string) (types.Resource, error)
	DimensionURL(project string, kind types.DimensionKind, slug string) string
	Delete(ctx context.Context, rawURL, token string) error

	Settings() config.Config
	Logger() logging.Logger
	DefaultProject() string
	Token() string
	TokenSource() auth.Source
	ValidJWT(token string) bool
	Offline() bool
	RunUI(opts app.Options) error
}

// backendFlags are the flags every command talking to a dimension source
// accepts.
type backendFlags struct {
	configPath *string
	project    *string
	token      *string
	fixture    *string
}

func registerBackendFlags(fs *flag.FlagSet) backendFlags {
	return backendFlags{
		configPath: fs.String("config", "", "config file path"),
		project:    fs.String("project", "", "project slug"),
		token:      fs.String("token", "", "api token"),
		fixture:    fs.String("fixture", "", "serve dimensions from a YAML fixture file"),
	}
}

func (f backendFlags) options(logOutput io.Writer) backendOptions {
	return backendOptions{
		ConfigPath: *f.configPath,
		Token:      *f.token,
		Fixture:    *f.fixture,
		LogOutput:  logOutput,
	}
}

// resolveProject prefers the flag, then the config, then the fixture file.
func (f backendFlags) resolveProject(backend commandBackend) (string, error) {
	if project := strings.TrimSpace(*f.project); project != "" {
		return project, nil
	}
	if project := backend.DefaultProject(); project != "" {
		return project, nil
	}
	return "", errProjectRequired
}

type backendAdapter struct {
	app.DimensionAPI
	cfg     config.Config
	logger  logging.Logger
	token   string
	source  auth.Source
	fixture *fixture.Source
}

func loadConfig(path string) (config.Config, error) {
	if strings.TrimSpace(path) == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func newCommandBackend(opts backendOptions) (commandBackend, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	logger := logging.Nop()
	if opts.LogOutput != nil {
		logger = logging.FromEnv(opts.LogOutput, logging.Options{
			Level:  logging.ParseLevel(cfg.LogLevel()),
			Format: logging.ParseFormat(cfg.LogFormat()),
		})
	}
	tokenPath, err := config.TokenPath()
	if err != nil {
		return nil, err
	}
	token, source, err := auth.Resolve(opts.Token, cfg.APIToken(), tokenPath)
	if err != nil && !errors.Is(err, auth.ErrNoToken) {
		return nil, err
	}

	fixturePath := strings.TrimSpace(opts.Fixture)
	if fixturePath == "" {
		fixturePath, err = cfg.FixturePath()
		if err != nil {
			return nil, err
		}
	}
	if fixturePath != "" {
		src, err := fixture.Open(fixturePath)
		if err != nil {
			return nil, err
		}
		if token == "" {
			token = offlineToken
		}
		logger.Info("using fixture", logging.F("path", fixturePath))
		return &backendAdapter{DimensionAPI: src, cfg: cfg, logger: logger, token: token, source: source, fixture: src}, nil
	}

	api := client.FromConfig(cfg, token, logger)
	logger.Debug("using api", logging.F("host", api.BaseURL()), logging.F("token_source", string(source)))
	return &backendAdapter{DimensionAPI: api, cfg: cfg, logger: logger, token: token, source: source}, nil
}

func (b *backendAdapter) Settings() config.Config {
	return b.cfg
}

func (b *backendAdapter) Logger() logging.Logger {
	return b.logger
}

func (b *backendAdapter) DefaultProject() string {
	if project := b.cfg.Project(); project != "" {
		return project
	}
	if b.fixture != nil {
		return b.fixture.Project()
	}
	return ""
}

func (b *backendAdapter) Token() string {
	return b.token
}

func (b *backendAdapter) TokenSource() auth.Source {
	return b.source
}

func (b *backendAdapter) ValidJWT(token string) bool {
	if b.fixture != nil {
		return strings.TrimSpace(token) != ""
	}
	return auth.ValidJWT(token)
}

func (b *backendAdapter) Offline() bool {
	return b.fixture != nil
}

// RunUI runs the console until the user quits. In fixture mode edits to the
// fixture file are pushed into the running program.
func (b *backendAdapter) RunUI(opts app.Options) error {
	opts.API = b.DimensionAPI
	if opts.Logger == nil {
		opts.Logger = b.logger
	}
	program := app.NewProgram(opts)
	if b.fixture != nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		err := b.fixture.Watch(ctx, fixtureDebounce, func(err error) {
			program.Send(app.ReloadedMsg{Err: err})
		})
		if err != nil {
			b.logger.Warn("fixture watch unavailable", logging.F("path", b.fixture.Path()), logging.F("err", err))
		}
	}
	_, err := program.Run()
	return err
}

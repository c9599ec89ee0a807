package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-entityform/internal/config"
	"github.com/goliatone/go-entityform/internal/logging"
	"github.com/goliatone/go-entityform/pkg/formsync"
	"github.com/goliatone/go-entityform/pkg/openapi"
	"github.com/goliatone/go-entityform/pkg/orchestrator"
	"github.com/goliatone/go-entityform/pkg/store"
	"github.com/goliatone/go-entityform/pkg/store/httpapi"
	"github.com/goliatone/go-entityform/pkg/store/memory"
	"github.com/goliatone/go-entityform/pkg/store/sqlstore"
)

// app carries the state shared by every command.
type app struct {
	configPath string
	overrides  config.Config

	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer

	// api is built lazily and closed after the command.
	api     store.API
	closeFn func() error
}

func newApp() *app {
	return &app{
		logger: zap.NewNop(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "entityform",
		Short: "Synchronize entity forms with a CRUD backend",
		Long: `entityform binds declarative entity forms to a remote CRUD resource.

Forms come from a directory of YAML/JSON form files or from an OpenAPI
document. Entities are read from and written to the configured store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default "+config.DefaultPath+")")
	flags.StringVar(&a.overrides.Schema, "schema", "", "form directory, form file or OpenAPI document (path or URL)")
	flags.StringVar(&a.overrides.API.URL, "api-url", "", "base URL of the REST backend")
	flags.StringVar(&a.overrides.Store.Backend, "store", "", "store backend: http, sqlite or memory")
	flags.StringVar(&a.overrides.Store.DSN, "dsn", "", "SQLite database path")
	flags.StringVar(&a.overrides.Log.Level, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.overrides.Timezone, "timezone", "", "IANA timezone for date-time fields")
	flags.StringVar(&a.overrides.Output, "format", "", "summary format: json, form or pretty")

	root.AddCommand(
		newFieldsCmd(a),
		newRenderCmd(a),
		newEditCmd(a),
		newRegisterCmd(a),
		newLintCmd(a),
	)
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg, a.overrides)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) teardown() {
	if a.closeFn != nil {
		if err := a.closeFn(); err != nil {
			a.logger.Warn("close store", zap.Error(err))
		}
		a.closeFn = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func applyOverrides(cfg *config.Config, o config.Config) {
	set := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}
	set(&cfg.Schema, o.Schema)
	set(&cfg.API.URL, o.API.URL)
	set(&cfg.Store.Backend, o.Store.Backend)
	set(&cfg.Store.DSN, o.Store.DSN)
	set(&cfg.Log.Level, o.Log.Level)
	set(&cfg.Timezone, o.Timezone)
	set(&cfg.Output, o.Output)
}

// httpClient builds the REST client for the configured backend URL.
func (a *app) httpClient() (*httpapi.Client, error) {
	return httpapi.New(a.cfg.API.URL,
		httpapi.WithBearerToken(a.cfg.API.Token),
		httpapi.WithTimeout(a.cfg.API.Timeout),
		httpapi.WithLogger(a.logger.Named("httpapi")),
	)
}

// backend returns the store.API selected by the configuration.
func (a *app) backend(ctx context.Context) (store.API, error) {
	if a.api != nil {
		return a.api, nil
	}
	switch a.cfg.Store.Backend {
	case config.BackendSQLite:
		db, err := sqlstore.Open(ctx, a.cfg.Store.DSN, sqlstore.WithLogger(a.logger.Named("sqlstore")))
		if err != nil {
			return nil, err
		}
		a.api, a.closeFn = db, db.Close
	case config.BackendMemory:
		a.api = memory.New()
	default:
		client, err := a.httpClient()
		if err != nil {
			return nil, err
		}
		a.api = client
	}
	a.logger.Debug("store ready", zap.String("backend", a.cfg.Store.Backend))
	return a.api, nil
}

func (a *app) catalog(ctx context.Context) (orchestrator.Catalog, error) {
	timeout := a.cfg.API.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return orchestrator.LoadCatalog(ctx, a.cfg.Schema, openapi.WithHTTPClient(&http.Client{Timeout: timeout}))
}

// orchestrator wires the catalog, the store and the synchronizer options.
func (a *app) orchestrator(ctx context.Context, nav formsync.Navigator) (*orchestrator.Orchestrator, error) {
	catalog, err := a.catalog(ctx)
	if err != nil {
		return nil, err
	}
	api, err := a.backend(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	st := store.New(api, store.WithNotifier(newNotifier(a.stderr)), store.WithLogger(a.logger.Named("store")))
	return orchestrator.New(
		orchestrator.WithCatalog(catalog),
		orchestrator.WithStore(st),
		orchestrator.WithLogger(a.logger),
		orchestrator.WithSyncOptions(
			formsync.WithLocation(loc),
			formsync.WithNavigator(nav),
		),
	)
}

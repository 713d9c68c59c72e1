// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	beatv1 "github.com/osa030/beatbox/internal/api/beatv1"
	apiconnect "github.com/osa030/beatbox/internal/api/connect"
	"github.com/osa030/beatbox/internal/app/catalog"
	"github.com/osa030/beatbox/internal/app/filter"
	"github.com/osa030/beatbox/internal/app/session"
	"github.com/osa030/beatbox/internal/infra/audio"
	catalogloader "github.com/osa030/beatbox/internal/infra/catalog"
	"github.com/osa030/beatbox/internal/infra/config"
	"github.com/osa030/beatbox/internal/infra/logger"
)

var (
	app        = kingpin.New("beatbox-server", "beatbox preview player server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
	logFormat  = app.Flag("log-format", "Log format: console or json (default: by output)").Enum("console", "json")

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available catalog filters and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
		Format: *logFormat,
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	// Run server (defer ensures cleanup runs on every return path)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %+v", err)
		os.Exit(1)
	}
}

// run executes the main server logic.
func run(cfg *config.Config) error {
	ctx := context.Background()

	chain, err := filter.Build(cfg.FilterSettings(), cfg.IsFilterEnabled)
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}
	for _, f := range chain.Filters() {
		zlog.Info().Msgf("catalog filter enabled: name=%s", f.Name())
	}

	store := catalog.NewStore(chain, catalog.Config{
		PageSize:    cfg.Catalog.PageSize,
		MaxPageSize: cfg.Catalog.MaxPageSize,
	})
	beats, err := catalogloader.Load(ctx, cfg.Catalog.File, cfg.Catalog.ScanDir, cfg.Catalog.ScanWorkers)
	if err != nil {
		return errors.Wrap(err, "failed to load catalog")
	}
	if err := store.Load(beats); err != nil {
		return errors.Wrap(err, "failed to index catalog")
	}

	out, err := audio.New(cfg.Playback.Output, cfg.Playback.Settings)
	if err != nil {
		return errors.Wrap(err, "failed to create audio output")
	}

	sessionMgr := session.NewManager(session.Config{
		PreviewLimit: cfg.PreviewLimit(),
		SendTimeout:  cfg.NotificationTimeout(),
	}, store, out)
	defer sessionMgr.Close()

	if err := sessionMgr.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start session")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(newMux(cfg, sessionMgr, store), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", cfg.Server.Addr)
	}

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()
	zlog.Info().Msgf("server listening: addr=%s beats=%d output=%s preview_limit=%v",
		ln.Addr(), store.Len(), cfg.Playback.Output, cfg.PreviewLimit())

	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		zlog.Info().Msg("Received shutdown signal...")
	case <-sessionMgr.Done():
		zlog.Info().Msg("Session ended, shutting down...")
	case err := <-serverErrCh:
		return errors.Wrap(err, "server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Open notification streams only return once the session is closed.
	sessionMgr.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// newMux mounts the player, catalog and admin services.
func newMux(cfg *config.Config, sessionMgr *session.Manager, store *catalog.Store) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(beatv1.NewPlayerServiceHandler(apiconnect.NewPlayerService(sessionMgr)))
	mux.Handle(beatv1.NewCatalogServiceHandler(apiconnect.NewCatalogService(store)))
	mux.Handle(beatv1.NewAdminServiceHandler(
		apiconnect.NewAdminService(store),
		connect.WithInterceptors(apiconnect.NewAdminAuthInterceptor(cfg.Admin.Token)),
	))
	return mux
}

// printFilters prints available filters.
func printFilters() {
	registry := filter.GetRegistered()

	fmt.Println("Catalog filters (evaluation order):")
	for _, name := range filter.Order {
		factory, ok := registry[name]
		if !ok {
			continue
		}
		f := factory()
		fmt.Printf("  %-18s %-8s %s [codes: %s]\n",
			f.Name(), scopeLabel(f), f.Description(), strings.Join(f.ReturnCodes(), ", "))
	}
}

// scopeLabel describes which searches a filter applies to.
func scopeLabel(f filter.Filter) string {
	switch {
	case f.AppliesTo(filter.ScopePublic) && f.AppliesTo(filter.ScopeAdmin):
		return "all"
	case f.AppliesTo(filter.ScopePublic):
		return "public"
	case f.AppliesTo(filter.ScopeAdmin):
		return "admin"
	default:
		return "-"
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}

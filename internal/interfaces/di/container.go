package di

import (
	"context"
	"errors"
	"fmt"
	"io"

	apphttp "kilometers.ai/loader/internal/application/http"
	"kilometers.ai/loader/internal/application/services"
	"kilometers.ai/loader/internal/core/ports"
	"kilometers.ai/loader/internal/infrastructure/config"
	"kilometers.ai/loader/internal/infrastructure/github"
	"kilometers.ai/loader/internal/infrastructure/host"
	"kilometers.ai/loader/internal/infrastructure/jsruntime"
	"kilometers.ai/loader/internal/infrastructure/logging"
	"kilometers.ai/loader/internal/infrastructure/process"
	"kilometers.ai/loader/internal/infrastructure/storage"
	"kilometers.ai/loader/internal/infrastructure/tui"
)

// Options tunes how the container is assembled
type Options struct {
	Config  config.Config
	Version string

	// LogOutput overrides where logs go. By default logs go to stderr in
	// headless mode and to the log pane of the terminal host otherwise.
	LogOutput io.Writer
}

// Container holds all application dependencies
type Container struct {
	Config config.Config
	Logger *logging.Logger

	// Hosts; Terminal is nil in headless mode
	Host     ports.Host
	Terminal *tui.Host
	Reexecer *process.Reexecer

	// Infrastructure
	KV      *storage.KVStore
	Store   *storage.EnablementStore
	Client  *apphttp.RepositoryClient
	Source  *github.ContentsSource
	Fetcher *github.RawFetcher
	Runtime *jsruntime.Runtime

	// Application services
	Readiness *services.ReadinessShim
	Composer  *services.SettingsComposer
	Engine    *services.ExecutionEngine
	Loader    *services.LoaderService
}

// NewContainer creates and configures the dependency injection container
func NewContainer(opts Options) (*Container, error) {
	c := &Container{Config: opts.Config}

	if err := c.initializeComponents(opts); err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return c, nil
}

// initializeComponents builds every component bottom-up
func (c *Container) initializeComponents(opts Options) error {
	cfg := c.Config

	// 1. Host and logging. The terminal host owns the screen, so logs are
	// routed into its log pane unless the caller says otherwise.
	logOutput := opts.LogOutput
	if !cfg.Headless {
		c.Terminal = tui.New(cfg.SettingsTitle)
		if logOutput == nil {
			logOutput = c.Terminal.LogWriter()
		}
	}
	c.Logger = logging.New(logging.Options{
		Name:   "km-loader",
		Level:  cfg.LogLevel,
		JSON:   cfg.LogJSON,
		Output: logOutput,
	})

	reexecer, err := process.NewReexecer()
	if err != nil {
		c.Logger.Warn("reload unavailable", "error", err)
	}
	c.Reexecer = reexecer

	if c.Terminal != nil {
		c.Host = c.Terminal
	} else {
		c.Host = host.NewHeadless(c.reloadNow)
	}

	// 2. Persistence
	c.KV = storage.NewKVStore(cfg.StoreDir)
	c.Store = storage.NewEnablementStore(c.KV, cfg.StoreKey, c.Logger.Named("store"))

	// 3. Remote repository
	userAgent := "km-loader/" + versionOrDev(opts.Version)
	auth := apphttp.NewAuthHeaderService(cfg.GitHubToken, userAgent)
	c.Client = apphttp.NewRepositoryClient(cfg.Repo.APIRoot, userAgent, cfg.HTTPTimeout, auth)

	repo := github.Repository{
		Owner:   cfg.Repo.Owner,
		Name:    cfg.Repo.Name,
		Branch:  cfg.Repo.Branch,
		Path:    cfg.Repo.Path,
		RawRoot: cfg.Repo.RawRoot,
	}
	c.Source, err = github.NewContentsSource(c.Client, repo, cfg.ScriptPatterns, c.Logger.Named("discovery"))
	if err != nil {
		return fmt.Errorf("failed to create manifest source: %w", err)
	}
	c.Fetcher = github.NewRawFetcher(c.Client)

	// 4. Script runtime
	c.Runtime = jsruntime.New(jsruntime.Options{
		Timeout: cfg.ExecTimeout,
		Logger:  c.Logger.Named("module"),
	})

	// 5. Application services
	c.Readiness = services.NewReadinessShim(c.Host, cfg.HostInterval, c.Logger.Named("readiness"))
	c.Composer = services.NewSettingsComposer(c.Host, services.ComposerOptions{
		SectionID:      cfg.SectionID,
		Title:          cfg.SettingsTitle,
		AnchorInterval: cfg.AnchorInterval,
	}, c.Logger.Named("settings"))
	c.Engine = services.NewExecutionEngine(c.Fetcher, c.Runtime, c.Host, c.Logger.Named("engine"))
	c.Loader = services.NewLoaderService(
		c.Host,
		c.Readiness,
		c.Store,
		c.Source,
		c.Composer,
		c.Engine,
		c.Logger.Named("loader"),
	)

	c.Logger.Debug("container initialized", "headless", cfg.Headless, "data_dir", c.KV.Dir())
	return nil
}

// Run starts the loader against the configured host. With the terminal
// host it blocks until the user quits; a reload requested from the
// settings view re-executes the binary once the terminal is restored.
func (c *Container) Run(ctx context.Context) error {
	if process.Reloaded() {
		c.Logger.Info("reloaded", "env", process.ReloadEnv)
	}

	if c.Terminal == nil {
		return c.Loader.Start(ctx)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.Loader.Start(runCtx)
	}()

	reload, err := c.Terminal.Run(runCtx)
	cancel()
	if startErr := <-done; startErr != nil && !errors.Is(startErr, context.Canceled) {
		c.Logger.Error("loader failed", "error", startErr)
	}
	if err != nil {
		return err
	}
	if reload {
		return c.reloadNow()
	}
	return nil
}

// reloadNow restarts the process in place
func (c *Container) reloadNow() error {
	if c.Reexecer == nil {
		return errors.New("reload is not supported on this system")
	}
	c.Composer.Stop()
	_ = c.Runtime.Close()
	return c.Reexecer.Exec()
}

// Shutdown stops background work and releases the script runtime
func (c *Container) Shutdown(ctx context.Context) error {
	c.Logger.Debug("shutting down")
	if c.Composer != nil {
		c.Composer.Stop()
	}
	if c.Runtime != nil {
		if err := c.Runtime.Close(); err != nil {
			return fmt.Errorf("failed to close script runtime: %w", err)
		}
	}
	return nil
}

func versionOrDev(version string) string {
	if version == "" {
		return "dev"
	}
	return version
}

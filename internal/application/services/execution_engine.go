package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
)

// ExecutionEngine fetches and runs the enabled extensions. Every failure is
// confined to the extension that caused it.
type ExecutionEngine struct {
	fetcher ports.SourceFetcher
	runtime ports.ScriptRuntime
	host    ports.Host
	logger  ports.Logger
}

// NewExecutionEngine creates an engine that fetches through fetcher and runs on runtime
func NewExecutionEngine(fetcher ports.SourceFetcher, runtime ports.ScriptRuntime, host ports.Host, logger ports.Logger) *ExecutionEngine {
	return &ExecutionEngine{fetcher: fetcher, runtime: runtime, host: host, logger: logger}
}

// RunEnabled runs every descriptor the snapshot does not disable and
// returns once all of them have settled.
func (e *ExecutionEngine) RunEnabled(ctx context.Context, descriptors []extension.Descriptor, snapshot extension.EnablementMap) {
	enabled := snapshot.FilterEnabled(descriptors)
	if skipped := len(descriptors) - len(enabled); skipped > 0 {
		e.logger.Debug("skipping disabled extensions", "count", skipped)
	}

	var g errgroup.Group
	for _, d := range enabled {
		g.Go(func() error {
			e.runOne(ctx, d)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *ExecutionEngine) runOne(ctx context.Context, d extension.Descriptor) {
	defer func() {
		if p := recover(); p != nil {
			e.fail(d, &extension.ExecutionError{Identifier: d.Identifier(), Err: fmt.Errorf("panic: %v", p)})
		}
	}()

	src, err := e.fetcher.FetchSource(ctx, d)
	if err != nil {
		e.fail(d, err)
		return
	}

	mctx := newModuleContext(d, e.logger.Named(d.Identifier()), e.host)
	if err := e.runtime.Exec(ctx, mctx, src); err != nil {
		e.fail(d, err)
		return
	}

	e.logger.Info("loaded "+d.DisplayName(), "identifier", d.Identifier())
}

func (e *ExecutionEngine) fail(d extension.Descriptor, err error) {
	e.logger.Error("failed "+d.DisplayName(), "identifier", d.Identifier(), "error", err)
}

// moduleContext is the only surface an extension can reach
type moduleContext struct {
	descriptor extension.Descriptor
	logger     ports.Logger
	host       ports.Host
}

func newModuleContext(d extension.Descriptor, logger ports.Logger, host ports.Host) *moduleContext {
	return &moduleContext{descriptor: d, logger: logger, host: host}
}

func (m *moduleContext) Descriptor() extension.Descriptor { return m.descriptor }

func (m *moduleContext) Logger() ports.Logger { return m.logger }

func (m *moduleContext) Location() string {
	if nav, ok := m.host.Navigator(); ok {
		return nav.Location()
	}
	return ""
}

func (m *moduleContext) Navigate(path string) {
	if nav, ok := m.host.Navigator(); ok {
		nav.Navigate(path)
	}
}

var _ ports.ModuleContext = (*moduleContext)(nil)

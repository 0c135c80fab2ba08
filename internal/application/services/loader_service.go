package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
)

// ExtensionStatus pairs a discovered extension with its stored override
type ExtensionStatus struct {
	Descriptor extension.Descriptor
	State      extension.State
}

// Enabled resolves the override to the effective state
func (s ExtensionStatus) Enabled() bool {
	return s.State.Enabled()
}

// LoaderService wires readiness, storage, discovery, settings and execution
// into the startup pipeline.
type LoaderService struct {
	host      ports.Host
	readiness *ReadinessShim
	store     ports.EnablementStore
	source    ports.ManifestSource
	composer  *SettingsComposer
	engine    *ExecutionEngine
	logger    ports.Logger

	mu      sync.Mutex
	working *extension.WorkingCopy
}

// NewLoaderService wires the startup pipeline collaborators
func NewLoaderService(
	host ports.Host,
	readiness *ReadinessShim,
	store ports.EnablementStore,
	source ports.ManifestSource,
	composer *SettingsComposer,
	engine *ExecutionEngine,
	logger ports.Logger,
) *LoaderService {
	return &LoaderService{
		host:      host,
		readiness: readiness,
		store:     store,
		source:    source,
		composer:  composer,
		engine:    engine,
		logger:    logger,
	}
}

// Start runs the loader once. Only a discovery failure or ctx cancellation
// while waiting for the host ends it with an error.
func (s *LoaderService) Start(ctx context.Context) error {
	if err := s.readiness.AwaitHostReady(ctx); err != nil {
		return err
	}

	overrides := s.store.Load(ctx)

	descriptors, err := s.source.Discover(ctx)
	if err != nil {
		s.logger.Error("loader aborted", "error", err)
		return err
	}
	s.logger.Info("discovered extensions", "count", len(descriptors))

	working := extension.NewWorkingCopy(overrides)
	s.mu.Lock()
	s.working = working
	s.mu.Unlock()

	if err := s.composer.BuildAndShow(ctx, descriptors, working, func(m extension.EnablementMap) error {
		return s.Commit(ctx, m)
	}); err != nil {
		s.logger.Warn("settings unavailable", "error", err)
	}

	s.engine.RunEnabled(ctx, descriptors, overrides.Clone())
	return nil
}

// WorkingCopy returns the session's in-memory overrides, nil before Start
func (s *LoaderService) WorkingCopy() *extension.WorkingCopy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working
}

// Commit persists m and reloads the host so the new set takes effect
func (s *LoaderService) Commit(ctx context.Context, m extension.EnablementMap) error {
	if err := s.store.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to commit enablement state: %w", err)
	}
	s.logger.Info("enablement state committed, reloading", "overrides", len(m))
	if err := s.host.Reload(); err != nil {
		return fmt.Errorf("failed to reload host: %w", err)
	}
	return nil
}

// Status discovers the extensions and reports their stored overrides
func (s *LoaderService) Status(ctx context.Context) ([]ExtensionStatus, error) {
	descriptors, err := s.source.Discover(ctx)
	if err != nil {
		return nil, err
	}
	overrides := s.store.Load(ctx)

	out := make([]ExtensionStatus, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, ExtensionStatus{Descriptor: d, State: overrides.Lookup(d.Identifier())})
	}
	return out, nil
}

// SetEnabled stores an explicit override for each identifier. Identifiers
// that discovery does not know are rejected and nothing is saved.
func (s *LoaderService) SetEnabled(ctx context.Context, ids []string, enabled bool) error {
	if err := s.checkKnown(ctx, ids); err != nil {
		return err
	}
	overrides := s.store.Load(ctx)
	for _, id := range ids {
		overrides.Set(id, enabled)
	}
	if err := s.store.Save(ctx, overrides); err != nil {
		return fmt.Errorf("failed to save enablement state: %w", err)
	}
	return nil
}

// Reset drops the overrides for ids, or all of them when ids is empty
func (s *LoaderService) Reset(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		if err := s.store.Clear(ctx); err != nil {
			return fmt.Errorf("failed to reset enablement state: %w", err)
		}
		return nil
	}

	overrides := s.store.Load(ctx)
	for _, id := range ids {
		overrides.Unset(id)
	}
	if err := s.store.Save(ctx, overrides); err != nil {
		return fmt.Errorf("failed to save enablement state: %w", err)
	}
	return nil
}

func (s *LoaderService) checkKnown(ctx context.Context, ids []string) error {
	descriptors, err := s.source.Discover(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(descriptors))
	for _, id := range extension.Identifiers(descriptors) {
		known[id] = true
	}

	var unknown []string
	for _, id := range ids {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown extensions: %s", strings.Join(unknown, ", "))
	}
	return nil
}

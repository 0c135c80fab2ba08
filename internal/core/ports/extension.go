package ports

import (
	"context"

	"kilometers.ai/loader/internal/core/domain/extension"
)

// EnablementStore owns the durable copy of the user's enable/disable choices
type EnablementStore interface {
	// Load returns the persisted overrides. Absent or unreadable data yields
	// an empty map, never an error.
	Load(ctx context.Context) extension.EnablementMap

	// Save replaces the persisted overrides with m
	Save(ctx context.Context, m extension.EnablementMap) error

	// Clear forgets every persisted override
	Clear(ctx context.Context) error
}

// ManifestSource lists the extensions published in the remote repository
type ManifestSource interface {
	// Discover returns one descriptor per loadable script, in listing order.
	// Failures are reported as *extension.DiscoveryError.
	Discover(ctx context.Context) ([]extension.Descriptor, error)
}

// SourceFetcher downloads the source text of an extension
type SourceFetcher interface {
	FetchSource(ctx context.Context, d extension.Descriptor) (string, error)
}

// ModuleContext is everything an executing extension may touch. It is
// injected into the runtime instead of exposing the loader's own globals.
type ModuleContext interface {
	// Descriptor identifies the running extension
	Descriptor() extension.Descriptor

	// Logger is the extension's own named logger
	Logger() Logger

	// Location returns the host's current navigation path
	Location() string

	// Navigate asks the host to move to path
	Navigate(path string)
}

// ScriptRuntime evaluates extension source in a scope shared by every
// extension of the process.
type ScriptRuntime interface {
	// Exec runs src as a standalone unit. Exceptions surface as errors.
	Exec(ctx context.Context, mctx ModuleContext, src string) error

	// Close stops the runtime
	Close() error
}

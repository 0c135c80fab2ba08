package extension

import "fmt"

// DiscoveryError reports a failure to fetch or parse the remote manifest.
// It is the only error that aborts the loader.
type DiscoveryError struct {
	Endpoint string
	Err      error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery of %s failed: %v", e.Endpoint, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// FetchError reports a failure to download one extension's source
type FetchError struct {
	Identifier string
	Source     string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Identifier, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExecutionError reports an exception raised while running an extension
type ExecutionError struct {
	Identifier string
	Err        error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execute %s: %v", e.Identifier, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// PersistenceReadError reports stored enablement data that could not be
// decoded. Callers recover by treating every extension as enabled.
type PersistenceReadError struct {
	Key string
	Err error
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("read enablement state %q: %v", e.Key, e.Err)
}

func (e *PersistenceReadError) Unwrap() error { return e.Err }

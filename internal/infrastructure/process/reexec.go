package process

import (
	"fmt"
	"os"
)

// ReloadEnv is set in the environment of a re-executed process
const ReloadEnv = "KM_LOADER_RELOADED"

// execFunc replaces or restarts the current process image
type execFunc func(executable string, argv []string, env []string) error

// Reexecer restarts the running binary with its original arguments
type Reexecer struct {
	executable string
	argv       []string
	env        []string
	exec       execFunc
}

// NewReexecer captures the current executable, arguments and environment
func NewReexecer() (*Reexecer, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	return &Reexecer{
		executable: exe,
		argv:       append([]string(nil), os.Args...),
		env:        os.Environ(),
		exec:       platformExec,
	}, nil
}

// Exec restarts the process now. On success it does not return.
func (r *Reexecer) Exec() error {
	env := r.buildEnvironment()
	if err := r.exec(r.executable, r.argv, env); err != nil {
		return fmt.Errorf("failed to re-execute %s: %w", r.executable, err)
	}
	return nil
}

// buildEnvironment copies the captured environment and flags the reload
func (r *Reexecer) buildEnvironment() []string {
	env := make([]string, 0, len(r.env)+1)
	prefix := ReloadEnv + "="
	for _, kv := range r.env {
		if len(kv) >= len(prefix) && kv[:len(prefix)] == prefix {
			continue
		}
		env = append(env, kv)
	}
	return append(env, prefix+"1")
}

// Reloaded reports whether this process was started by Exec
func Reloaded() bool {
	return os.Getenv(ReloadEnv) == "1"
}

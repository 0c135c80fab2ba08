package process

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReexecer_CapturesInvocation(t *testing.T) {
	r, err := NewReexecer()
	require.NoError(t, err)
	assert.NotEmpty(t, r.executable)
	assert.NotEmpty(t, r.argv)
	assert.NotNil(t, r.exec)
}

func TestReexecer_Exec(t *testing.T) {
	var gotExe string
	var gotArgv, gotEnv []string
	r := &Reexecer{
		executable: "/usr/local/bin/km-loader",
		argv:       []string{"km-loader", "run", "--headless"},
		env:        []string{"HOME=/home/u", ReloadEnv + "=0"},
		exec: func(exe string, argv, env []string) error {
			gotExe, gotArgv, gotEnv = exe, argv, env
			return nil
		},
	}

	require.NoError(t, r.Exec())
	assert.Equal(t, "/usr/local/bin/km-loader", gotExe)
	assert.Equal(t, []string{"km-loader", "run", "--headless"}, gotArgv)
	assert.Equal(t, []string{"HOME=/home/u", ReloadEnv + "=1"}, gotEnv)
}

func TestReexecer_ExecError(t *testing.T) {
	r := &Reexecer{
		executable: "/missing",
		argv:       []string{"/missing"},
		exec: func(string, []string, []string) error {
			return errors.New("no such file")
		},
	}
	assert.ErrorContains(t, r.Exec(), "failed to re-execute /missing: no such file")
}

func TestReloaded(t *testing.T) {
	t.Setenv(ReloadEnv, "1")
	assert.True(t, Reloaded())
	t.Setenv(ReloadEnv, "")
	assert.False(t, Reloaded())
}

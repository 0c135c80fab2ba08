//go:build !unix

package process

import (
	"os"
	"os/exec"
)

// platformExec starts a replacement process and exits, since the platform
// cannot replace the running image.
func platformExec(executable string, argv []string, env []string) error {
	cmd := exec.Command(executable, argv[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	os.Exit(0)
	return nil
}

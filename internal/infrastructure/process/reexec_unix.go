//go:build unix

package process

import "syscall"

func platformExec(executable string, argv []string, env []string) error {
	return syscall.Exec(executable, argv, env)
}

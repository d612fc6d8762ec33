//go:build !windows

package in

import (
	"os"

	"golang.org/x/sys/unix"
)

var (
	watchedSignals   = []os.Signal{unix.SIGTSTP, unix.SIGCONT, os.Interrupt, unix.SIGTERM}
	terminateSignals = []os.Signal{os.Interrupt, unix.SIGTERM}
)

func classify(sig os.Signal) action {
	switch sig {
	case unix.SIGTSTP:
		return actionSuspend
	case unix.SIGCONT:
		return actionResume
	case os.Interrupt, unix.SIGTERM:
		return actionTerminate
	}
	return actionNone
}

// stopProcess performs the default SIGTSTP behaviour the handler replaced.
func stopProcess() error {
	return unix.Kill(unix.Getpid(), unix.SIGSTOP)
}

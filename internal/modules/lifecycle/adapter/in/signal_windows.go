//go:build windows

package in

import "os"

var (
	watchedSignals   = []os.Signal{os.Interrupt}
	terminateSignals = watchedSignals
)

func classify(sig os.Signal) action {
	if sig == os.Interrupt {
		return actionTerminate
	}
	return actionNone
}

func stopProcess() error { return nil }

//go:build !linux

package main

import (
	"os"

	"pmsensor"
)

func openerFor(backend string) pmsensor.Opener {
	if backend == BACKENDTERMIOS {
		os.Stderr.WriteString("termios backend is linux only, using serial\n")
	}
	return pmsensor.SerialOpener{}
}

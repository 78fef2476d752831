//go:build linux

package main

import "pmsensor"

func openerFor(backend string) pmsensor.Opener {
	if backend == BACKENDTERMIOS {
		return pmsensor.TermiosOpener{}
	}
	return pmsensor.SerialOpener{}
}

//go:build linux

package pmsensor

import (
	"strings"

	"github.com/hjkoskel/listserialports"
)

// SDS011 can not be used by multiple programs at same time
func checkNotInUse(name string) error {
	if strings.HasPrefix(name, "/dev/pts") { //Avoid issues with testing with socat
		return nil
	}
	portUsedByPids, _, errPortDetect := listserialports.FileIsInUseByPids(name)
	if errPortDetect != nil {
		return PortUnavailable.Wrap(errPortDetect, "serial port %v", name)
	}
	if 0 < len(portUsedByPids) {
		return PortUnavailable.New("serial port %v is in use (by PID %#v)", name, portUsedByPids)
	}
	return nil
}

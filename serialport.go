package pmsensor

import (
	"errors"

	"github.com/joomcode/errorx"
	"go.bug.st/serial"
)

// SerialOpener opens ports with go.bug.st/serial. Default backend
type SerialOpener struct{}

func (SerialOpener) Open(name string, cfg Config) (Port, error) {
	if errInUse := checkNotInUse(name); errInUse != nil {
		return nil, errInUse
	}

	port, errOpen := serial.Open(name, cfg.serialMode())
	if errOpen != nil {
		return nil, PortUnavailable.Wrap(errOpen, "serial device %v open error", name)
	}
	if errTimeout := port.SetReadTimeout(cfg.ReadTimeout); errTimeout != nil {
		port.Close()
		return nil, PortUnavailable.Wrap(errTimeout, "serial device %v read timeout", name)
	}
	return port, nil
}

func (p Config) serialMode() *serial.Mode {
	mode := &serial.Mode{
		BaudRate: p.BaudRate,
		DataBits: p.DataBits,
		StopBits: serial.OneStopBit,
	}
	if p.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}
	switch p.Parity {
	case OddParity:
		mode.Parity = serial.OddParity
	case EvenParity:
		mode.Parity = serial.EvenParity
	default:
		mode.Parity = serial.NoParity
	}
	return mode
}

// readFailure wraps read error as LinkInvalidated
func readFailure(err error, port string) error {
	if errorx.IsOfType(err, LinkInvalidated) {
		return err
	}
	var portErr *serial.PortError
	if errors.As(err, &portErr) && portErr.Code() == serial.PortClosed {
		return LinkInvalidated.Wrap(err, "serial device %v handle closed", port)
	}
	return LinkInvalidated.Wrap(err, "serial device %v read failed", port)
}

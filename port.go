/*
Port is the serial transport boundary.

Different implementations are made for go.bug.st/serial and raw linux termios
*/
package pmsensor

import (
	"io"
	"time"
)

// Port is open byte stream to sensor. Read returning (0, nil) or (0, io.EOF) means read timeout without data
type Port interface {
	io.Reader
	io.Closer
}

// Opener claims named serial port. Errors are expected to be PortUnavailable
type Opener interface {
	Open(name string, cfg Config) (Port, error)
}

type OpenerFunc func(name string, cfg Config) (Port, error)

func (f OpenerFunc) Open(name string, cfg Config) (Port, error) {
	return f(name, cfg)
}

type Parity int

const (
	NoParity Parity = iota
	OddParity
	EvenParity
)

// Config is fixed by sensor hardware interface. Not a tunable
type Config struct {
	BaudRate    int
	DataBits    int
	Parity      Parity
	StopBits    int
	ReadTimeout time.Duration
}

// DefaultConfig is what SDS011 speaks: 9600 8N1
func DefaultConfig() Config {
	return Config{
		BaudRate:    9600,
		DataBits:    8,
		Parity:      NoParity,
		StopBits:    1,
		ReadTimeout: 500 * time.Millisecond,
	}
}

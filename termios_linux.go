//go:build linux

package pmsensor

import (
	"errors"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

var errHangup = errors.New("tty hung up")

type termiosPort struct {
	f       *os.File
	timeout time.Duration
}

/*
Read returns (0, nil) when VTIME expired with nothing.
Hung up tty (usb serial unplugged) also reads 0 bytes but immediately. That is an error
*/
func (p *termiosPort) Read(b []byte) (int, error) {
	tStart := time.Now()
	n, err := p.f.Read(b)
	if n == 0 && (err == nil || errors.Is(err, io.EOF)) {
		if time.Since(tStart) < p.timeout/2 {
			return 0, errHangup
		}
		return 0, nil
	}
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

func (p *termiosPort) Close() error {
	return p.f.Close()
}

/*
TermiosOpener sets up port with raw termios ioctl.
For hosts where go.bug.st/serial is not wanted. Supports only 9600 8N1
*/
type TermiosOpener struct{}

func (TermiosOpener) Open(name string, cfg Config) (Port, error) {
	if cfg.BaudRate != 9600 || cfg.DataBits != 8 || cfg.Parity != NoParity || cfg.StopBits != 1 {
		return nil, PortUnavailable.New("termios backend supports only 9600 8N1, got %#v", cfg)
	}
	if errInUse := checkNotInUse(name); errInUse != nil {
		return nil, errInUse
	}

	f, errOpen := os.OpenFile(name, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0666)
	if errOpen != nil {
		return nil, PortUnavailable.Wrap(errOpen, "serial device %v open error", name)
	}

	fd := int(f.Fd())
	t := unix.Termios{
		Iflag:  unix.IGNPAR,
		Cflag:  unix.CREAD | unix.CLOCAL | unix.B9600 | unix.CS8, //No parity, one stop bit
		Ispeed: unix.B9600,
		Ospeed: unix.B9600,
	}
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = deciseconds(cfg.ReadTimeout)

	if errIoctl := unix.IoctlSetTermios(fd, unix.TCSETS, &t); errIoctl != nil {
		f.Close()
		return nil, PortUnavailable.Wrap(errIoctl, "serial device %v termios", name)
	}
	if errNonBlock := unix.SetNonblock(fd, false); errNonBlock != nil {
		f.Close()
		return nil, PortUnavailable.Wrap(errNonBlock, "serial device %v setting nonblock", name)
	}
	return &termiosPort{f: f, timeout: time.Duration(t.Cc[unix.VTIME]) * 100 * time.Millisecond}, nil
}

func deciseconds(d time.Duration) uint8 {
	ds := d / (100 * time.Millisecond)
	if ds < 1 {
		return 1
	}
	if 255 < ds {
		return 255
	}
	return uint8(ds)
}

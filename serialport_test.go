package pmsensor

import (
	"errors"
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"
	"go.bug.st/serial"
)

func TestConfigSerialMode(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		want   *serial.Mode
	}{
		{"sensor default", func(c *Config) {},
			&serial.Mode{BaudRate: 9600, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}},
		{"odd parity", func(c *Config) { c.Parity = OddParity },
			&serial.Mode{BaudRate: 9600, DataBits: 8, Parity: serial.OddParity, StopBits: serial.OneStopBit}},
		{"even parity", func(c *Config) { c.Parity = EvenParity },
			&serial.Mode{BaudRate: 9600, DataBits: 8, Parity: serial.EvenParity, StopBits: serial.OneStopBit}},
		{"two stop bits", func(c *Config) { c.StopBits = 2 },
			&serial.Mode{BaudRate: 9600, DataBits: 8, Parity: serial.NoParity, StopBits: serial.TwoStopBits}},
		{"other speed", func(c *Config) { c.BaudRate = 115200; c.DataBits = 7 },
			&serial.Mode{BaudRate: 115200, DataBits: 7, Parity: serial.NoParity, StopBits: serial.OneStopBit}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Equal(t, tc.want, cfg.serialMode())
		})
	}
}

func TestReadFailure(t *testing.T) {
	plain := errors.New("input/output error")
	got := readFailure(plain, "/dev/ttyUSB0")
	assert.True(t, errorx.IsOfType(got, LinkInvalidated), "got %v", got)
	assert.Contains(t, got.Error(), "/dev/ttyUSB0")
	assert.Contains(t, got.Error(), plain.Error())

	already := LinkInvalidated.New("serial device /dev/ttyUSB0 handle closed")
	assert.True(t, readFailure(already, "/dev/ttyUSB0") == error(already), "wrapped twice")

	decorated := errorx.Decorate(already, "reading")
	assert.True(t, readFailure(decorated, "/dev/ttyUSB0") == decorated)
}

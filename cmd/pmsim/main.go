/*
pmsim simulates SDS011 in active reporting mode. Writes data frames to serial port.

For bench testing without sensor create virtual pair

	socat -d -d pty,raw,echo=0 pty,raw,echo=0

and run pmsim on one end, readpm on other
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.bug.st/serial"
)

type simOptions struct {
	port     string
	id       string
	interval time.Duration
	conn     ConnectivityModel
}

func parseId(s string) (uint16, error) {
	sensorId, errIdparse := strconv.ParseUint(s, 16, 16)
	if errIdparse != nil {
		return 0, fmt.Errorf("invalid device id %v err=%w", s, errIdparse)
	}
	if sensorId == 0xFFFF {
		return 0, fmt.Errorf("device id FFFF is broadcast")
	}
	return uint16(sensorId), nil
}

func newRootCmd() *cobra.Command {
	opts := simOptions{}
	cmd := &cobra.Command{
		Use:           "pmsim",
		Short:         "Simulated SDS011 sensor",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulate(cmd.Context(), opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.port, "port", "s", "", "serial device file")
	flags.StringVar(&opts.id, "id", "ABCD", "SDS011 ID in hex 16bit no FFFF")
	flags.DurationVar(&opts.interval, "interval", time.Second, "reporting interval")
	flags.BoolVar(&opts.conn.InvalidCRC, "invalid-crc", false, "send frames with wrong checksum")
	flags.BoolVar(&opts.conn.IdleCharacters, "idle-chars", false, "random line noise between frames")
	flags.BoolVar(&opts.conn.IncompletePackages, "incomplete", false, "cut bytes from end of frames")
	cobra.CheckErr(cmd.MarkFlagRequired("port"))
	return cmd
}

func simulate(ctx context.Context, opts simOptions) error {
	if opts.interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	id, errId := parseId(opts.id)
	if errId != nil {
		return errId
	}

	port, errOpen := serial.Open(opts.port, &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if errOpen != nil {
		return fmt.Errorf("opening %v failed %w", opts.port, errOpen)
	}
	defer port.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim := NewSimSensor(id, time.Now().UnixNano())
	sim.Connectivity = opts.conn
	fmt.Printf("Simulating sensor %04X on %v every %v\n", id, opts.port, opts.interval)

	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case tNow := <-ticker.C:
			meas, bytArr := sim.Measure(tNow)
			n, errWrite := port.Write(bytArr)
			if errWrite != nil {
				return fmt.Errorf("writing %v failed %w", opts.port, errWrite)
			}
			if n != len(bytArr) {
				color.Red("Incomplete write %v/%v", n, len(bytArr))
			}
			color.Cyan("%v to serial: % X", meas, bytArr)
		}
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

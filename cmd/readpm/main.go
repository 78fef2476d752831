/*
readpm reads SDS011 compatible particulate matter sensor and logs PM2.5 and PM10.

Keeps retrying until port opens. Press q to quit
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "readpm",
		Short: "Read PM2.5 and PM10 from SDS011 sensor",
		Long: `Read PM2.5 and PM10 measurements from Nova SDS011 compatible sensor.

Sensor must be in active reporting mode (factory default). Measurements are
printed to console and appended to log file. Optional MQTT publishing.

Example usage:
  readpm --port /dev/ttyUSB0
  READPM_PORT=/dev/ttyUSB1 readpm --logfile /var/log/pm.log
  readpm ports`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "config file (default ./readpm.yaml if exists)")
	flags.StringP("port", "s", DEFAULTPORT, "serial device file")
	flags.String("backend", BACKENDSERIAL, "serial port backend: serial or termios")
	flags.Duration("retry-min", DEFAULTRETRYMIN, "minimum delay between open attempts")
	flags.Duration("retry-max", DEFAULTRETRYMAX, "maximum delay between open attempts")
	flags.String("logfile", DEFAULTLOGFILE, "measurement log file, empty disables")
	flags.String("log-level", "info", "diagnostic log level: debug, info, warn, error")
	flags.String("mqtt-broker", "", "MQTT broker url like tcp://localhost:1883, empty disables")
	flags.String("mqtt-topic", DEFAULTMQTTTOPIC, "MQTT topic for measurements")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	cmd.AddCommand(newPortsCmd())
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

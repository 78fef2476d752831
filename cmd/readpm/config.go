package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	DEFAULTPORT      = "/dev/ttyUSB0"
	DEFAULTLOGFILE   = "PM.log"
	DEFAULTMQTTTOPIC = "pmsensor/measurement"
	DEFAULTRETRYMIN  = 500 * time.Millisecond
	DEFAULTRETRYMAX  = 900 * time.Millisecond

	BACKENDSERIAL  = "serial"
	BACKENDTERMIOS = "termios"
)

// config is orchestration only. Serial line settings are fixed by sensor
type config struct {
	Port       string
	Backend    string
	RetryMin   time.Duration
	RetryMax   time.Duration
	LogFile    string
	LogLevel   zerolog.Level
	MQTTBroker string
	MQTTTopic  string
}

// loadConfig layers flags over READPM_* environment over config file
func loadConfig(v *viper.Viper) (config, error) {
	v.SetEnvPrefix("READPM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("reading config %v failed %w", path, err)
		}
	} else {
		v.SetConfigName("readpm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return config{}, fmt.Errorf("reading config failed %w", err)
			}
		}
	}

	lvl, errLevel := zerolog.ParseLevel(v.GetString("log-level"))
	if errLevel != nil {
		return config{}, fmt.Errorf("invalid log level %q", v.GetString("log-level"))
	}

	result := config{
		Port:       v.GetString("port"),
		Backend:    strings.ToLower(strings.TrimSpace(v.GetString("backend"))),
		RetryMin:   v.GetDuration("retry-min"),
		RetryMax:   v.GetDuration("retry-max"),
		LogFile:    v.GetString("logfile"),
		LogLevel:   lvl,
		MQTTBroker: v.GetString("mqtt-broker"),
		MQTTTopic:  v.GetString("mqtt-topic"),
	}
	return result, result.validate()
}

func (p config) validate() error {
	if p.Port == "" {
		return fmt.Errorf("serial port is required")
	}
	if p.Backend != BACKENDSERIAL && p.Backend != BACKENDTERMIOS {
		return fmt.Errorf("unknown backend %q, expected %v or %v", p.Backend, BACKENDSERIAL, BACKENDTERMIOS)
	}
	if p.RetryMin <= 0 || p.RetryMax < p.RetryMin {
		return fmt.Errorf("invalid retry delay range %v - %v", p.RetryMin, p.RetryMax)
	}
	if p.MQTTBroker != "" && p.MQTTTopic == "" {
		return fmt.Errorf("mqtt topic is required with broker")
	}
	return nil
}

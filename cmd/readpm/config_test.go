package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", DEFAULTPORT)
	v.SetDefault("backend", BACKENDSERIAL)
	v.SetDefault("retry-min", DEFAULTRETRYMIN)
	v.SetDefault("retry-max", DEFAULTRETRYMAX)
	v.SetDefault("logfile", DEFAULTLOGFILE)
	v.SetDefault("log-level", "info")
	v.SetDefault("mqtt-topic", DEFAULTMQTTTOPIC)
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(defaultViper())
	require.NoError(t, err)
	assert.Equal(t, config{
		Port:      DEFAULTPORT,
		Backend:   BACKENDSERIAL,
		RetryMin:  DEFAULTRETRYMIN,
		RetryMax:  DEFAULTRETRYMAX,
		LogFile:   DEFAULTLOGFILE,
		LogLevel:  zerolog.InfoLevel,
		MQTTTopic: DEFAULTMQTTTOPIC,
	}, cfg)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("READPM_PORT", "/dev/ttyS3")
	t.Setenv("READPM_RETRY_MAX", "2s")
	t.Setenv("READPM_LOG_LEVEL", "debug")

	cfg, err := loadConfig(defaultViper())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyS3", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.RetryMax)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readpm.yaml")
	content := "port: /dev/ttyAMA0\nbackend: Termios\nmqtt-broker: tcp://localhost:1883\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := defaultViper()
	v.Set("config", path)
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyAMA0", cfg.Port)
	assert.Equal(t, BACKENDTERMIOS, cfg.Backend)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
}

func TestLoadConfigMissingFile(t *testing.T) {
	v := defaultViper()
	v.Set("config", filepath.Join(t.TempDir(), "nothere.yaml"))
	_, err := loadConfig(v)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := config{
		Port:     DEFAULTPORT,
		Backend:  BACKENDSERIAL,
		RetryMin: time.Second,
		RetryMax: time.Second,
	}
	assert.NoError(t, valid.validate())

	testCases := map[string]func(*config){
		"no port":        func(c *config) { c.Port = "" },
		"bad backend":    func(c *config) { c.Backend = "usb" },
		"zero retry":     func(c *config) { c.RetryMin = 0 },
		"inverted range": func(c *config) { c.RetryMax = time.Millisecond },
		"broker no topic": func(c *config) {
			c.MQTTBroker = "tcp://localhost:1883"
			c.MQTTTopic = ""
		},
	}
	for name, mutate := range testCases {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.Error(t, c.validate())
		})
	}
}

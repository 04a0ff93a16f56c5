package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		config, err := LoadConfig(WithDefaults())
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:8080", config.BindAddress)
		assert.Equal(t, "/dev/ttyUSB0", config.SerialPort)
		assert.Equal(t, 9600, config.BaudRate)
		assert.Equal(t, "info", config.LogLevel)
		assert.Equal(t, "internet", config.APN)
		assert.Equal(t, Duration(10*time.Second), config.RegistrationInterval)
		assert.Equal(t, 30, config.RatePerMin)
		assert.Equal(t, 3, config.MaxRetries)
		assert.Equal(t, "sms/send", config.MQTTTopic)
	})

	t.Run("TOML file", func(t *testing.T) {
		path := writeFile(t, "gsmgw.toml", `
serial_port = "tcp://10.0.0.5:2000"
sim_pin = "1234"
registration_interval = "1m"
auth_first = 1
auth_last = 10
sms_dry_run = true
`)
		config, err := LoadConfig(WithDefaults(), WithFile(path))
		require.NoError(t, err)

		assert.Equal(t, "tcp://10.0.0.5:2000", config.SerialPort)
		assert.Equal(t, "1234", config.SimPIN)
		assert.Equal(t, Duration(time.Minute), config.RegistrationInterval)
		assert.Equal(t, 1, config.AuthFirst)
		assert.Equal(t, 10, config.AuthLast)
		assert.True(t, config.SMSDryRun)
		assert.Equal(t, "info", config.LogLevel, "unset keys keep their defaults")
	})

	t.Run("YAML file", func(t *testing.T) {
		path := writeFile(t, "gsmgw.yaml", `
bind_address: ":9090"
rate_per_min: 5
registration_interval: 30s
mqtt_broker: tcp://localhost:1883
`)
		config, err := LoadConfig(WithDefaults(), WithFile(path))
		require.NoError(t, err)

		assert.Equal(t, ":9090", config.BindAddress)
		assert.Equal(t, 5, config.RatePerMin)
		assert.Equal(t, Duration(30*time.Second), config.RegistrationInterval)
		assert.Equal(t, "tcp://localhost:1883", config.MQTTBroker)
	})

	t.Run("Unsupported file format", func(t *testing.T) {
		path := writeFile(t, "gsmgw.ini", "serial_port=/dev/ttyS0")
		_, err := LoadConfig(WithDefaults(), WithFile(path))
		assert.Error(t, err)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadConfig(WithDefaults(), WithFile(filepath.Join(t.TempDir(), "none.toml")))
		assert.Error(t, err)
	})

	t.Run("Environment", func(t *testing.T) {
		t.Setenv("SERIAL_PORT", "/dev/ttyS3")
		t.Setenv("BAUD_RATE", "115200")
		t.Setenv("AUTH_LAST", "5")
		t.Setenv("HTTP_TOKEN", "secret")
		t.Setenv("REGISTRATION_INTERVAL", "5s")
		t.Setenv("SMS_DRY_RUN", "true")

		config, err := LoadConfig(WithDefaults(), WithEnv())
		require.NoError(t, err)

		assert.Equal(t, "/dev/ttyS3", config.SerialPort)
		assert.Equal(t, 115200, config.BaudRate)
		assert.Equal(t, 5, config.AuthLast)
		assert.Equal(t, "secret", config.HTTPToken)
		assert.Equal(t, Duration(5*time.Second), config.RegistrationInterval)
		assert.True(t, config.SMSDryRun)
	})

	t.Run("Flags override the environment", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "warn")

		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.String("log-level", "info", "")
		fs.Duration("registration-interval", time.Second, "")
		fs.Int("max-retries", 3, "")
		fs.Bool("sms-dry-run", false, "")
		require.NoError(t, fs.Parse([]string{"-log-level=debug", "-registration-interval=2s", "-max-retries=0", "-sms-dry-run"}))

		config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(fs))
		require.NoError(t, err)

		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, Duration(2*time.Second), config.RegistrationInterval)
		assert.Zero(t, config.MaxRetries)
		assert.True(t, config.SMSDryRun)
	})

	t.Run("Invalid authorized range", func(t *testing.T) {
		t.Setenv("AUTH_FIRST", "5")
		t.Setenv("AUTH_LAST", "2")

		_, err := LoadConfig(WithDefaults(), WithEnv())
		assert.Error(t, err)
	})

	t.Run("Invalid registration interval", func(t *testing.T) {
		t.Setenv("REGISTRATION_INTERVAL", "soon")

		_, err := LoadConfig(WithDefaults(), WithEnv())
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger.Check(zapcore.DebugLevel, "debug"))

	logger, err = newLogger("warn")
	require.NoError(t, err)
	assert.Nil(t, logger.Check(zapcore.InfoLevel, "info"))

	_, err = newLogger("loud")
	assert.Error(t, err)
}

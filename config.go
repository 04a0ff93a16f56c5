package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration read from text such as "30s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080").
	// Empty disables the HTTP API.
	BindAddress string `toml:"bind_address" yaml:"bind_address"`
	// SerialPort is the modem's serial device (e.g. "/dev/ttyUSB0") or a
	// network link such as "tcp://10.0.0.5:2000"
	SerialPort string `toml:"serial_port" yaml:"serial_port"`
	// BaudRate is the baud rate for serial communication with the modem
	BaudRate int `toml:"baud_rate" yaml:"baud_rate"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// SimPIN is the SIM card PIN code
	SimPIN string `toml:"sim_pin" yaml:"sim_pin"`
	// APN is the access point for HTTP sessions run by the modem
	APN string `toml:"apn" yaml:"apn"`

	// RegistrationInterval is the period of network registration checks
	RegistrationInterval Duration `toml:"registration_interval" yaml:"registration_interval"`
	// AuthFirst and AuthLast bound the SIM phonebook positions of
	// authorized numbers. Both zero authorizes everyone.
	AuthFirst int `toml:"auth_first" yaml:"auth_first"`
	AuthLast  int `toml:"auth_last" yaml:"auth_last"`

	// HTTPToken, when set, is required as "Authorization: Bearer <token>"
	HTTPToken string `toml:"http_token" yaml:"http_token"`
	// RatePerMin caps the SMS sent per minute. Zero disables the limit.
	RatePerMin int `toml:"rate_per_min" yaml:"rate_per_min"`
	// MaxRetries is how many times a failed SMS is resubmitted
	MaxRetries int `toml:"max_retries" yaml:"max_retries"`
	// SMSDryRun aborts every SMS at the input prompt
	SMSDryRun bool `toml:"sms_dry_run" yaml:"sms_dry_run"`

	// MQTTBroker enables the MQTT ingress (e.g. "tcp://localhost:1883")
	MQTTBroker   string `toml:"mqtt_broker" yaml:"mqtt_broker"`
	MQTTClientID string `toml:"mqtt_client_id" yaml:"mqtt_client_id"`
	MQTTTopic    string `toml:"mqtt_topic" yaml:"mqtt_topic"`
	MQTTUsername string `toml:"mqtt_username" yaml:"mqtt_username"`
	MQTTPassword string `toml:"mqtt_password" yaml:"mqtt_password"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	if config.AuthFirst < 0 || config.AuthLast < config.AuthFirst {
		return nil, fmt.Errorf("invalid authorized phonebook range %d..%d", config.AuthFirst, config.AuthLast)
	}
	if config.RegistrationInterval <= 0 {
		return nil, fmt.Errorf("registration interval must be positive")
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 9600
		c.LogLevel = "info"
		c.APN = "internet"
		c.RegistrationInterval = Duration(10 * time.Second)
		c.RatePerMin = 30
		c.MaxRetries = 3
		c.MQTTClientID = "gsmgw"
		c.MQTTTopic = "sms/send"
		return nil
	}
}

// WithFile loads a TOML or YAML file, chosen by extension. An empty path
// is ignored.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".toml":
			err = toml.Unmarshal(data, c)
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, c)
		default:
			return fmt.Errorf("unsupported config format %q", ext)
		}
		if err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		texts := map[string]*string{
			"BIND_ADDRESS":   &c.BindAddress,
			"SERIAL_PORT":    &c.SerialPort,
			"LOG_LEVEL":      &c.LogLevel,
			"SIM_PIN":        &c.SimPIN,
			"APN":            &c.APN,
			"HTTP_TOKEN":     &c.HTTPToken,
			"MQTT_BROKER":    &c.MQTTBroker,
			"MQTT_CLIENT_ID": &c.MQTTClientID,
			"MQTT_TOPIC":     &c.MQTTTopic,
			"MQTT_USERNAME":  &c.MQTTUsername,
			"MQTT_PASSWORD":  &c.MQTTPassword,
		}
		for key, dst := range texts {
			if v := os.Getenv(key); v != "" {
				*dst = v
			}
		}

		ints := map[string]*int{
			"BAUD_RATE":    &c.BaudRate,
			"AUTH_FIRST":   &c.AuthFirst,
			"AUTH_LAST":    &c.AuthLast,
			"RATE_PER_MIN": &c.RatePerMin,
			"MAX_RETRIES":  &c.MaxRetries,
		}
		for key, dst := range ints {
			if v := os.Getenv(key); v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					*dst = n
				}
			}
		}

		if v := os.Getenv("REGISTRATION_INTERVAL"); v != "" {
			if err := c.RegistrationInterval.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("REGISTRATION_INTERVAL: %w", err)
			}
		}
		if v := os.Getenv("SMS_DRY_RUN"); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.SMSDryRun = b
			}
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		var err error
		fSet.Visit(func(f *flag.Flag) {
			value := f.Value.String()
			switch f.Name {
			case "bind-address":
				c.BindAddress = value
			case "serial-port":
				c.SerialPort = value
			case "baud-rate":
				if b, err := strconv.Atoi(value); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = value
			case "sim-pin":
				c.SimPIN = value
			case "apn":
				c.APN = value
			case "registration-interval":
				if perr := c.RegistrationInterval.UnmarshalText([]byte(value)); perr != nil {
					err = fmt.Errorf("registration-interval: %w", perr)
				}
			case "auth-first":
				c.AuthFirst, _ = strconv.Atoi(value)
			case "auth-last":
				c.AuthLast, _ = strconv.Atoi(value)
			case "http-token":
				c.HTTPToken = value
			case "rate-per-min":
				c.RatePerMin, _ = strconv.Atoi(value)
			case "max-retries":
				c.MaxRetries, _ = strconv.Atoi(value)
			case "sms-dry-run":
				c.SMSDryRun, _ = strconv.ParseBool(value)
			case "mqtt-broker":
				c.MQTTBroker = value
			case "mqtt-topic":
				c.MQTTTopic = value
			}
		})
		return err
	}
}

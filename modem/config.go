package modem

import (
	"time"

	"go.uber.org/zap"
)

// Config holds the settings of a Modem. Build one with NewConfigBuilder.
type Config struct {
	dialer      Dialer
	simPIN      string
	logger      *zap.Logger
	clock       Clock
	bufferSize  int
	retryDelay  time.Duration
	initTimeout time.Duration
	apn         string
	smsDryRun   bool
}

func (c *Config) validate() error {
	if c.dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.clock == nil {
		c.clock = systemClock{}
	}
	if c.bufferSize == 0 {
		c.bufferSize = DefaultBufferSize
	}
	if c.retryDelay == 0 {
		c.retryDelay = DefaultRetryDelay
	}
	if c.initTimeout == 0 {
		c.initTimeout = 30 * time.Second
	}
	if c.apn == "" {
		c.apn = "internet"
	}
}

// ConfigBuilder assembles a Config.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithDialer sets how the modem connection is opened. Required.
func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.dialer = d
	return b
}

// WithSimPIN sets the PIN entered when the SIM reports it is locked.
func (b *ConfigBuilder) WithSimPIN(pin string) *ConfigBuilder {
	b.config.simPIN = pin
	return b
}

func (b *ConfigBuilder) WithLogger(logger *zap.Logger) *ConfigBuilder {
	b.config.logger = logger
	return b
}

// WithClock replaces the system clock, mainly for tests.
func (b *ConfigBuilder) WithClock(clock Clock) *ConfigBuilder {
	b.config.clock = clock
	return b
}

// WithBufferSize sets the receive buffer capacity. Longer responses are
// truncated.
func (b *ConfigBuilder) WithBufferSize(size int) *ConfigBuilder {
	b.config.bufferSize = size
	return b
}

// WithRetryDelay sets the pause between attempts of an unanswered command.
func (b *ConfigBuilder) WithRetryDelay(d time.Duration) *ConfigBuilder {
	b.config.retryDelay = d
	return b
}

// WithInitTimeout bounds the initialization performed by New.
func (b *ConfigBuilder) WithInitTimeout(d time.Duration) *ConfigBuilder {
	b.config.initTimeout = d
	return b
}

// WithAPN sets the access point used by SetupGPRS.
func (b *ConfigBuilder) WithAPN(apn string) *ConfigBuilder {
	b.config.apn = apn
	return b
}

// WithSMSDryRun makes SendSMS abort every message at the input prompt
// instead of submitting it, so nothing is sent or billed.
func (b *ConfigBuilder) WithSMSDryRun(dryRun bool) *ConfigBuilder {
	b.config.smsDryRun = dryRun
	return b
}

func (b *ConfigBuilder) Build() (Config, error) {
	if err := b.config.validate(); err != nil {
		return Config{}, err
	}
	config := b.config
	config.setDefaults()
	return config, nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"i4.energy/across/gsmgw/modem"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML or YAML configuration file")
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port or tcp://host:port link to the modem")
	flag.Int("baud-rate", 9600, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("sim-pin", "", "SIM card PIN code (if required)")
	flag.String("apn", "internet", "Access point name for HTTP over the modem")
	flag.Duration("registration-interval", 10*time.Second, "Period of network registration checks")
	flag.Int("auth-first", 0, "First phonebook position of authorized numbers")
	flag.Int("auth-last", 0, "Last phonebook position of authorized numbers")
	flag.String("http-token", "", "Bearer token required by the HTTP API")
	flag.Int("rate-per-min", 30, "Maximum SMS sent per minute")
	flag.Int("max-retries", 3, "Resubmissions of a failed SMS")
	flag.Bool("sms-dry-run", false, "Abort every SMS at the input prompt")
	flag.String("mqtt-broker", "", "MQTT broker URL, empty disables MQTT")
	flag.String("mqtt-topic", "sms/send", "MQTT topic carrying SMS requests")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithFile(*configPath), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(config.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(config, logger); err != nil {
		logger.Error("Gateway stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(config *Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dialer, err := modem.ParseDialer(config.SerialPort, config.BaudRate)
	if err != nil {
		return err
	}

	modemConfig, err := modem.NewConfigBuilder().
		WithDialer(dialer).
		WithSimPIN(config.SimPIN).
		WithAPN(config.APN).
		WithSMSDryRun(config.SMSDryRun).
		WithInitTimeout(30 * time.Second).
		WithLogger(logger.Named("modem")).
		Build()
	if err != nil {
		return fmt.Errorf("modem config: %w", err)
	}

	m, err := modem.New(ctx, modemConfig)
	if err != nil {
		return fmt.Errorf("create modem: %w", err)
	}
	defer func() {
		logger.Info("Closing modem connection")
		if err := m.Close(); err != nil {
			logger.Error("Failed to close modem", zap.Error(err))
		}
	}()

	logger.Info("Starting SMS Gateway",
		zap.String("link", config.SerialPort),
		zap.Bool("http", config.BindAddress != ""),
		zap.Bool("mqtt", config.MQTTBroker != ""))

	auth := modem.AuthRange{First: config.AuthFirst, Last: config.AuthLast}
	outbox := NewOutbox(m, OutboxConfig{
		RatePerMin: config.RatePerMin,
		MaxRetries: config.MaxRetries,
	}, logger.Named("outbox"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		outbox.Run(ctx)
	}()

	go watchRegistration(ctx, m, time.Duration(config.RegistrationInterval), logger.Named("registration"))

	if _, err := startMQTT(ctx, MQTTConfig{
		Broker:   config.MQTTBroker,
		ClientID: config.MQTTClientID,
		Topic:    config.MQTTTopic,
		Username: config.MQTTUsername,
		Password: config.MQTTPassword,
	}, outbox, logger.Named("mqtt")); err != nil {
		logger.Error("MQTT disabled", zap.Error(err))
	}

	var httpServer *http.Server
	if config.BindAddress != "" {
		httpServer = &http.Server{
			Addr:              config.BindAddress,
			Handler:           NewServer(logger.With(zap.String("component", "server")), m, outbox, config.HTTPToken, auth),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logger.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server failed", zap.Error(err))
				cancel()
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		logger.Info("Closing HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
	}

	<-done
	return nil
}

// watchRegistration logs registration changes until ctx is done.
func watchRegistration(ctx context.Context, m *modem.Modem, interval time.Duration, logger *zap.Logger) {
	last := modem.RegistrationNoResponse
	err := m.WatchRegistration(ctx, interval, func(reg modem.Registration) {
		if reg == modem.RegistrationLineBusy || reg == last {
			return
		}
		logger.Info("Registration changed", zap.Stringer("from", last), zap.Stringer("to", reg))
		last = reg
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("Registration watch stopped", zap.Error(err))
	}
}

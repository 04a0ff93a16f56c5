package main

import (
	"context"
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTConfig configures the MQTT ingress. An empty Broker disables it.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
}

// smsHandler queues every valid JSON {to,message} payload.
func smsHandler(outbox *Outbox, logger *zap.Logger) mqtt.MessageHandler {
	return func(_ mqtt.Client, m mqtt.Message) {
		var req SMSRequest
		if err := json.Unmarshal(m.Payload(), &req); err != nil {
			logger.Warn("MQTT bad payload", zap.String("topic", m.Topic()), zap.Error(err))
			return
		}

		id, err := outbox.Enqueue(req)
		if err != nil {
			logger.Warn("MQTT request rejected", zap.String("topic", m.Topic()), zap.Error(err))
			return
		}
		logger.Info("SMS queued", zap.String("id", id), zap.String("to", req.To), zap.String("topic", m.Topic()))
	}
}

// startMQTT connects to the broker and subscribes to the SMS topic,
// resubscribing on every reconnect. The client disconnects when ctx is
// done. It returns nil when MQTT is disabled.
func startMQTT(ctx context.Context, config MQTTConfig, outbox *Outbox, logger *zap.Logger) (mqtt.Client, error) {
	if config.Broker == "" {
		return nil, nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	if config.Username != "" {
		opts.SetUsername(config.Username)
		opts.SetPassword(config.Password)
	}
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Info("MQTT connected", zap.String("topic", config.Topic))
		if token := c.Subscribe(config.Topic, 0, smsHandler(outbox, logger)); token.Wait() && token.Error() != nil {
			logger.Error("MQTT subscribe failed", zap.Error(token.Error()))
		}
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", config.Broker, token.Error())
	}

	go func() {
		<-ctx.Done()
		client.Disconnect(500)
	}()
	return client, nil
}

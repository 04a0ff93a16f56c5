package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"i4.energy/across/gsmgw/modem"
)

// ErrOutboxFull is returned by Enqueue when the queue cannot take more
// messages.
var ErrOutboxFull = errors.New("outbox full")

// SMSRequest is a message submitted over HTTP or MQTT.
type SMSRequest struct {
	// ID is optional. Enqueue assigns one when empty.
	ID      string `json:"id,omitempty"`
	To      string `json:"to"`
	Message string `json:"message"`
}

func (r SMSRequest) validate() error {
	if r.To == "" || r.Message == "" {
		return errors.New("both 'to' and 'message' fields are required")
	}
	return nil
}

// Rate is a sliding one-minute window limiter.
type Rate struct {
	mu  sync.Mutex
	cap int
	win []time.Time
	now func() time.Time
}

// NewRate allows nPerMin events per minute. A non-positive nPerMin
// disables the limit.
func NewRate(nPerMin int) *Rate { return &Rate{cap: nPerMin, now: time.Now} }

// Allow records an event and reports whether it fits in the window.
func (r *Rate) Allow() bool {
	if r.cap <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cut := now.Add(-1 * time.Minute)
	kept := r.win[:0]
	for _, t := range r.win {
		if t.After(cut) {
			kept = append(kept, t)
		}
	}
	r.win = kept
	if len(r.win) >= r.cap {
		return false
	}
	r.win = append(r.win, now)
	return true
}

// OutboxConfig tunes an Outbox. Zero durations select the defaults.
type OutboxConfig struct {
	QueueSize  int
	RatePerMin int
	// MaxRetries is how many times a failed message is resubmitted.
	MaxRetries int
	// RateDelay is the wait before asking the limiter again.
	RateDelay time.Duration
	// BusyDelay is the wait after the modem line was busy. Busy attempts
	// are not counted against MaxRetries.
	BusyDelay time.Duration
	// Backoff returns the wait before a retry.
	Backoff func() time.Duration
}

func jitterBackoff() time.Duration {
	return time.Duration(800+rand.IntN(600)) * time.Millisecond
}

type job struct {
	req      SMSRequest
	attempts int
}

// Outbox queues SMS requests and submits them one at a time.
type Outbox struct {
	gateway Gateway
	logger  *zap.Logger
	queue   chan job
	limit   *Rate
	config  OutboxConfig
}

func NewOutbox(gateway Gateway, config OutboxConfig, logger *zap.Logger) *Outbox {
	if config.QueueSize <= 0 {
		config.QueueSize = 1024
	}
	if config.RateDelay == 0 {
		config.RateDelay = 2 * time.Second
	}
	if config.BusyDelay == 0 {
		config.BusyDelay = 200 * time.Millisecond
	}
	if config.Backoff == nil {
		config.Backoff = jitterBackoff
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Outbox{
		gateway: gateway,
		logger:  logger,
		queue:   make(chan job, config.QueueSize),
		limit:   NewRate(config.RatePerMin),
		config:  config,
	}
}

// Enqueue validates req and queues it. It returns the request ID.
func (o *Outbox) Enqueue(req SMSRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	select {
	case o.queue <- job{req: req}:
		o.logger.Debug("SMS queued", zap.String("id", req.ID), zap.String("to", req.To))
		return req.ID, nil
	default:
		return "", ErrOutboxFull
	}
}

// Run submits queued messages until ctx is done.
func (o *Outbox) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-o.queue:
			o.process(ctx, j)
		}
	}
}

func (o *Outbox) process(ctx context.Context, j job) {
	logger := o.logger.With(zap.String("id", j.req.ID), zap.String("to", j.req.To))

	// A busy line sent nothing, so the slot taken from the limiter is kept.
	allowed := false
	for {
		for !allowed {
			allowed = o.limit.Allow()
			if !allowed && !sleep(ctx, o.config.RateDelay) {
				return
			}
		}

		err := o.gateway.SendSMS(ctx, j.req.To, j.req.Message)
		switch {
		case err == nil:
			logger.Info("SMS sent", zap.Int("retries", j.attempts))
			return
		case ctx.Err() != nil:
			return
		case errors.Is(err, modem.ErrLineBusy):
			if !sleep(ctx, o.config.BusyDelay) {
				return
			}
			continue
		case j.attempts >= o.config.MaxRetries:
			logger.Error("SMS permanently failed", zap.Error(err), zap.Int("retries", j.attempts))
			return
		}

		allowed = false
		back := o.config.Backoff()
		logger.Warn("SMS send failed, retrying", zap.Error(err), zap.Duration("backoff", back))
		j.attempts++
		if !sleep(ctx, back) {
			return
		}
	}
}

// sleep waits for d and reports false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
)

type message struct {
	payload []byte
}

func (m message) Duplicate() bool   { return false }
func (m message) Qos() byte         { return 0 }
func (m message) Retained() bool    { return false }
func (m message) Topic() string     { return "sms/send" }
func (m message) MessageID() uint16 { return 1 }
func (m message) Payload() []byte   { return m.payload }
func (m message) Ack()              {}

func TestSMSHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := NewOutbox(NewMockGateway(ctrl), OutboxConfig{}, zaptest.NewLogger(t))
	handle := smsHandler(outbox, zaptest.NewLogger(t))

	handle(nil, message{payload: []byte(`{"to":"+12025550123","message":"hi"}`)})
	handle(nil, message{payload: []byte(`{"to":"+12025550123","message":"hi","id":"order-1"}`)})
	handle(nil, message{payload: []byte(`not json`)})
	handle(nil, message{payload: []byte(`{"to":"+12025550123"}`)})

	assert.Len(t, outbox.queue, 2)
	<-outbox.queue
	j := <-outbox.queue
	assert.Equal(t, "order-1", j.req.ID)
}

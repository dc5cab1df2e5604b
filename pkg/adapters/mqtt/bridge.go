// Package mqtt answers membership queries published on an MQTT topic.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/thicket/internal/logging"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/ports"
	"github.com/aretw0/thicket/pkg/runner"
	"github.com/aretw0/thicket/pkg/session"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Default topics.
const (
	DefaultInTopic  = "thicket/simulate"
	DefaultOutTopic = "thicket/verdict"
)

// Request is the payload of a query message. A bare JSON string or raw
// text is accepted too and read as Input.
type Request struct {
	Input     string `json:"input"`
	SessionID string `json:"session_id,omitempty"`
}

// Reply is published for every query message.
type Reply struct {
	Input     string `json:"input"`
	Accepted  bool   `json:"accepted"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Bridge subscribes to the query topic and publishes one Reply per message.
type Bridge struct {
	client   mqtt.Client
	engine   ports.Simulator
	sessions *session.Manager
	inTopic  string
	outTopic string
	qos      byte
	logger   *slog.Logger

	publish func(topic string, payload []byte)
}

// Option configures the Bridge.
type Option func(*Bridge)

// WithTopics overrides the query and reply topics.
func WithTopics(in, out string) Option {
	return func(b *Bridge) {
		b.inTopic, b.outTopic = in, out
	}
}

// WithQoS sets the quality of service for both subscription and replies.
func WithQoS(qos byte) Option {
	return func(b *Bridge) {
		b.qos = qos
	}
}

// WithSessions lets requests carrying a session_id be recorded.
func WithSessions(mgr *session.Manager) Option {
	return func(b *Bridge) {
		b.sessions = mgr
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewClient builds a paho client for broker (e.g. "tcp://localhost:1883")
// that reconnects on its own.
func NewClient(broker, clientID string, logger *slog.Logger) mqtt.Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetKeepAlive(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "err", err)
	})
	return mqtt.NewClient(opts)
}

// NewBridge wires engine to client.
func NewBridge(client mqtt.Client, engine ports.Simulator, opts ...Option) *Bridge {
	b := &Bridge{
		client:   client,
		engine:   engine,
		inTopic:  DefaultInTopic,
		outTopic: DefaultOutTopic,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.publish = func(topic string, payload []byte) {
		token := b.client.Publish(topic, b.qos, false, payload)
		// Waiting inside the message callback would stall ordered delivery.
		go func() {
			if token.Wait() && token.Error() != nil {
				b.logger.Error("MQTT publish failed", "topic", topic, "err", token.Error())
			}
		}()
	}
	return b
}

// Run connects, subscribes and serves until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	if !b.client.IsConnected() {
		if token := b.client.Connect(); token.Wait() && token.Error() != nil {
			return fmt.Errorf("failed to connect to broker: %w", token.Error())
		}
	}
	defer b.client.Disconnect(250)

	handler := func(client mqtt.Client, msg mqtt.Message) {
		b.handle(ctx, msg.Payload())
	}
	if token := b.client.Subscribe(b.inTopic, b.qos, handler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.inTopic, token.Error())
	}
	b.logger.Info("MQTT bridge subscribed", "in", b.inTopic, "out", b.outTopic)

	<-ctx.Done()

	if token := b.client.Unsubscribe(b.inTopic); token.Wait() && token.Error() != nil {
		b.logger.Warn("MQTT unsubscribe failed", "err", token.Error())
	}
	return nil
}

func (b *Bridge) handle(ctx context.Context, payload []byte) {
	reply := b.Evaluate(ctx, payload)
	data, err := json.Marshal(reply)
	if err != nil {
		b.logger.Error("MQTT reply encode failed", "err", err)
		return
	}
	b.publish(b.outTopic, data)
}

// Evaluate answers one query payload.
func (b *Bridge) Evaluate(ctx context.Context, payload []byte) Reply {
	req := decodeRequest(payload)

	input, err := runner.SanitizeInput(req.Input)
	if err != nil {
		b.logger.Warn("MQTT: Input rejected", "err", err, "size", len(req.Input))
		return Reply{SessionID: req.SessionID, Error: err.Error()}
	}

	reply := Reply{
		Input:     input,
		Accepted:  b.engine.Accepts(ctx, input),
		SessionID: req.SessionID,
	}

	if req.SessionID != "" {
		if b.sessions == nil {
			reply.Error = "sessions are disabled"
			return reply
		}
		_, err := b.sessions.Record(ctx, req.SessionID, b.engine.Definition().Name, domain.Query{
			Input:    input,
			Accepted: reply.Accepted,
		})
		if err != nil {
			b.logger.Error("MQTT: Session record failed", "err", err, "session_id", req.SessionID)
			reply.Error = fmt.Sprintf("failed to record query: %v", err)
		}
	}
	return reply
}

func decodeRequest(payload []byte) Request {
	text := strings.TrimSpace(string(payload))
	if strings.HasPrefix(text, "{") {
		var req Request
		if err := json.Unmarshal([]byte(text), &req); err == nil {
			return req
		}
	}
	return Request{Input: runner.DecodeInput(text)}
}

package publisher

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/Checker-Finance/onramp/onramp-gateway/internal/metrics"
	"github.com/Checker-Finance/onramp/pkg/logger"
	"github.com/Checker-Finance/onramp/pkg/model"
)

const (
	EventQuoteAggregated = "quote.aggregated"
	EventRedirectIssued  = "redirect.issued"
)

// msgPublisher is the subset of nats.JetStreamContext used here.
type msgPublisher interface {
	PublishMsg(m *nats.Msg, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher wraps a NATS connection and provides helpers for publishing canonical events.
type Publisher struct {
	nc      *nats.Conn
	js      msgPublisher
	prefix  string
	service string
}

// New creates a new Publisher with JetStream enabled.
func New(nc *nats.Conn, prefix, service string) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		prefix:  strings.TrimSuffix(prefix, "."),
		service: service,
	}, nil
}

// Subject returns the versioned subject for an event type, e.g. evt.onramp.quote.aggregated.v1.
func (p *Publisher) Subject(eventType string) string {
	return p.prefix + "." + eventType + ".v1"
}

// PublishEnvelope serializes and publishes a canonical event envelope to NATS.
func (p *Publisher) PublishEnvelope(ctx context.Context, subject string, env *model.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		logger.S().Errorw("publisher.marshal_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.IncError("publisher", "marshal_failed")
		return err
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"event_type":     []string{env.EventType},
			"correlation_id": []string{env.CorrelationID.String()},
			"service":        []string{p.service},
			"content_type":   []string{"application/json"},
		},
	}

	start := time.Now()
	_, err = p.js.PublishMsg(msg, nats.Context(ctx))
	metrics.ObserveDuration(metrics.NATSMessageLatency, start, subject)

	if err != nil {
		logger.S().Errorw("publisher.publish_failed",
			"subject", subject,
			"event_type", env.EventType,
			"error", err,
		)
		metrics.IncNATSMessage(subject, "error")
		return err
	}

	logger.S().Debugw("publisher.publish_success",
		"subject", subject,
		"event_type", env.EventType,
	)
	metrics.IncNATSMessage(subject, "ok")
	return nil
}

func (p *Publisher) publishEvent(ctx context.Context, eventType string, correlationID uuid.UUID, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		metrics.IncError("publisher", "marshal_failed")
		return err
	}
	subject := p.Subject(eventType)
	env := &model.Envelope{
		ID:            uuid.New(),
		CorrelationID: correlationID,
		Topic:         subject,
		EventType:     eventType,
		Version:       "1.0.0",
		Timestamp:     time.Now().UTC(),
		Payload:       data,
	}
	return p.PublishEnvelope(ctx, subject, env)
}

// PublishQuoteAggregated emits quote.aggregated events.
func (p *Publisher) PublishQuoteAggregated(ctx context.Context, correlationID uuid.UUID, evt model.QuoteAggregatedEvent) error {
	return p.publishEvent(ctx, EventQuoteAggregated, correlationID, evt)
}

// PublishRedirectIssued emits redirect.issued events.
func (p *Publisher) PublishRedirectIssued(ctx context.Context, correlationID uuid.UUID, evt model.RedirectIssuedEvent) error {
	return p.publishEvent(ctx, EventRedirectIssued, correlationID, evt)
}

// Connected reports whether the underlying NATS connection is up.
func (p *Publisher) Connected() bool {
	return p.nc != nil && p.nc.IsConnected()
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}

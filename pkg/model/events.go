package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the canonical event envelope published to NATS.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	Topic         string          `json:"topic"`
	EventType     string          `json:"event_type"`
	Version       string          `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}

// QuoteAggregatedEvent summarizes one quote fan-out. It carries no caller identity.
type QuoteAggregatedEvent struct {
	CountryCode    string         `json:"country_code"`
	Network        string         `json:"network"`
	CryptoCurrency string         `json:"crypto_currency"`
	FiatCurrency   string         `json:"fiat_currency"`
	AmountType     AmountType     `json:"amount_type"`
	Quoted         []ProviderID   `json:"quoted"`
	Failed         map[string]int `json:"failed"` // kind -> count
	DurationMS     int64          `json:"duration_ms"`
}

// RedirectIssuedEvent records that a signed redirect was handed out.
type RedirectIssuedEvent struct {
	Provider       ProviderID `json:"provider"`
	Network        string     `json:"network"`
	CryptoCurrency string     `json:"crypto_currency"`
	FiatCurrency   string     `json:"fiat_currency"`
	AmountType     AmountType `json:"amount_type"`
	Amount         string     `json:"amount"`
	PaymentMethod  string     `json:"payment_method,omitempty"`
}

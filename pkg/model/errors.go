package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a provider did not yield a quote.
type ErrorKind string

const (
	ErrIneligible       ErrorKind = "Ineligible"
	ErrTimeout          ErrorKind = "Timeout"
	ErrProviderRejected ErrorKind = "ProviderRejected"
	ErrNetwork          ErrorKind = "Network"
	ErrUnknown          ErrorKind = "Unknown"
)

// QuoteError is the per-provider failure entry of an AggregateResult.
// It implements error so adapters can return it directly.
type QuoteError struct {
	Provider ProviderID `json:"provider"`
	Kind     ErrorKind  `json:"kind"`
	Message  string     `json:"message"`
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

// NewQuoteError builds a QuoteError.
func NewQuoteError(provider ProviderID, kind ErrorKind, format string, args ...any) *QuoteError {
	return &QuoteError{Provider: provider, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// RequestErrorKind classifies failures on the redirect/sign path, which have no partial semantics.
type RequestErrorKind string

const (
	BadRequest     RequestErrorKind = "BadRequest"
	SigningFailure RequestErrorKind = "SigningFailure"
)

// RequestError is returned to the caller as a single, explicit failure.
type RequestError struct {
	Kind    RequestErrorKind `json:"kind"`
	Field   string           `json:"field,omitempty"`
	Message string           `json:"message"`
	Err     error            `json:"-"`
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

// NewBadRequest reports a caller/business-rule violation on field.
func NewBadRequest(field, format string, args ...any) *RequestError {
	return &RequestError{Kind: BadRequest, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NewSigningFailure wraps an internal signing error.
func NewSigningFailure(msg string, err error) *RequestError {
	return &RequestError{Kind: SigningFailure, Message: msg, Err: err}
}

// IsBadRequest reports whether err is (or wraps) a BadRequest RequestError.
func IsBadRequest(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == BadRequest
}

// IsSigningFailure reports whether err is (or wraps) a SigningFailure RequestError.
func IsSigningFailure(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == SigningFailure
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// ResolutionError means a symbol could not be qualified to a tradable contract.
type ResolutionError struct {
	Symbol string
	Reason string
}

func (e *ResolutionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("resolve %s: no matching contract", e.Symbol)
	}
	return fmt.Sprintf("resolve %s: %s", e.Symbol, e.Reason)
}

// GatewayError wraps connection and protocol failures talking to the gateway.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// WriteError means the store rejected a batch of points.
type WriteError struct {
	Symbol string
	Count  int
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %d points for %s: %v", e.Count, e.Symbol, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// QueryError wraps any failure of the read path.
type QueryError struct {
	Symbol string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Symbol, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// MalformedRowError is returned for a pivoted row that lacks one of the OHLCV fields.
type MalformedRowError struct {
	Symbol  string
	Time    time.Time
	Missing []string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row for %s at %s: missing %s",
		e.Symbol, e.Time.Format(time.RFC3339), strings.Join(e.Missing, ","))
}

// Package registry is the HTTP client for the remote registration
// service: a write path that persists a signed fingerprint and a read
// path that answers fingerprint lookups. The service is an opaque black
// box; this package only implements its documented wire contract.
package registry

import (
	"context"

	"github.com/pkg/errors"
)

// Submission is the write-path request bundle. Field names match the
// service's JSON contract.
type Submission struct {
	FileHash       string `json:"fileHash"`
	Signature      string `json:"signature"`
	User           string `json:"user"`
	TurnstileToken string `json:"turnstileToken"`
}

// Record is the persisted result of a successful submission.
type Record struct {
	TxHash      string `json:"txHash"`
	BlockNumber int64  `json:"blockNumber"`
}

// LookupResult answers a fingerprint query. Owner and Timestamp are
// only meaningful when Found is true; Timestamp is seconds since epoch.
type LookupResult struct {
	Found     bool   `json:"found"`
	Owner     string `json:"owner,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Service is the capability interface the workflow depends on.
type Service interface {
	Submit(ctx context.Context, sub Submission) (*Record, error)
	Lookup(ctx context.Context, fingerprint string) (*LookupResult, error)
}

// NetworkError indicates the service could not be reached at the
// transport level. The wrapped error carries the transport detail.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "registry: network failure: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServiceError indicates the service was reachable but reported a
// failure. Message is the service's own error string.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return errors.Errorf("registry: service error (status %d)", e.Status).Error()
	}
	return "registry: service error: " + e.Message
}

// Package audit records account lifecycle events. Publishing is best-effort:
// a broker outage must never fail a registration, so errors are logged and
// dropped rather than propagated.
package audit

import (
	"context"
	"time"
)

// Kind names a lifecycle event.
type Kind string

const (
	EventRegistered     Kind = "account.registered"
	EventReclaimed      Kind = "account.reclaimed"
	EventCompensated    Kind = "account.compensated"
	EventDeleted        Kind = "account.deleted"
	EventResetRequested Kind = "account.reset_requested"
)

// Event is one lifecycle fact. Email is the partition key so events for one
// address stay ordered.
type Event struct {
	Kind       Kind      `json:"kind"`
	Email      string    `json:"email"`
	IdentityID string    `json:"identity_id,omitempty"`
	Role       string    `json:"role,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Detail     string    `json:"detail,omitempty"`
}

// Publisher is the port for emitting lifecycle events.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// NopPublisher drops all events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) {}

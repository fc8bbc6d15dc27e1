// Package audit defines the append-only audit trail for credential lifecycle
// actions. Events are transport-agnostic so stores and sinks can fan out.
package audit

import (
	"context"
	"time"

	"credverify/pkg/domain"
)

// Event captures a single lifecycle action or a rejected attempt.
type Event struct {
	Timestamp    time.Time           `json:"timestamp"`
	Action       string              `json:"action"`
	CredentialID domain.CredentialID `json:"credential_id,omitempty"`
	Actor        domain.Address      `json:"actor,omitempty"`
	Holder       domain.Address      `json:"holder,omitempty"`
	Decision     string              `json:"decision,omitempty"`
	Reason       string              `json:"reason,omitempty"`
	RequestID    string              `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventCredentialIssued      AuditEvent = "credential_issued"
	EventCredentialTransferred AuditEvent = "credential_transferred"
	EventCredentialRevoked     AuditEvent = "credential_revoked"
	EventAccessDenied          AuditEvent = "credential_access_denied"
)

// Decision values recorded on events.
const (
	DecisionGranted = "granted"
	DecisionDenied  = "denied"
)

// Emitter is satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Store persists events. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
}

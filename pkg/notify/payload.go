// Package notify builds and delivers outbound notifications for watched
// mutations. Delivery runs over two independent best-effort channels: a
// redis-backed deferred task queue and a redis pub/sub event bus.
package notify

import (
	"context"

	"github.com/halcyon-labs/safeindex/pkg/models"
)

// EventType classifies an outbound notification payload.
type EventType string

const (
	EventNewConfirmation     EventType = "NEW_CONFIRMATION"
	EventPendingTransaction  EventType = "PENDING_MULTISIG_TRANSACTION"
	EventExecutedTransaction EventType = "EXECUTED_MULTISIG_TRANSACTION"
	EventDeletedTransaction  EventType = "DELETED_MULTISIG_TRANSACTION"
	EventIncomingToken       EventType = "INCOMING_TOKEN"
	EventOutgoingToken       EventType = "OUTGOING_TOKEN"
	EventIncomingEther       EventType = "INCOMING_ETHER"
)

// Payload is a single outbound notification candidate: a target address plus
// an opaque body. Payloads with an empty Address are never dispatched.
type Payload struct {
	Address string         `json:"address"`
	Type    EventType      `json:"type"`
	Data    map[string]any `json:"data,omitempty"`
}

// PayloadBuilder produces zero or more candidate payloads for a mutation.
type PayloadBuilder interface {
	BuildPayloads(ctx context.Context, entity models.Entity, deleted bool) ([]Payload, error)
}

// RelevanceClassifier decides whether a mutation is notification-worthy.
type RelevanceClassifier interface {
	IsRelevant(ctx context.Context, entity models.Entity, created bool) (bool, error)
}

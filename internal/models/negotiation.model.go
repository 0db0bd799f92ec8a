package models

import (
	"time"

	"github.com/google/uuid"
)

type NegotiationOutcome string

const (
	NegotiationPending  NegotiationOutcome = "pending"
	NegotiationAccepted NegotiationOutcome = "accepted"
	NegotiationRejected NegotiationOutcome = "rejected"
)

// Negotiation is the ephemeral propose/accept-or-reject exchange that moves a
// room between the checkout queue and a worker. It lives only in memory: a
// negotiation is created pending and discarded once resolved, nothing about
// it is persisted.
type Negotiation struct {
	ID               uuid.UUID          `json:"id"`
	RoomID           uuid.UUID          `json:"roomId"`
	ProposedWorkerID uuid.UUID          `json:"proposedWorkerId"`
	Outcome          NegotiationOutcome `json:"outcome"`
	IsReassignment   bool               `json:"isReassignment"`
	ProposedAt       time.Time          `json:"proposedAt"`
}

func (n *Negotiation) Pending() bool {
	return n.Outcome == NegotiationPending
}

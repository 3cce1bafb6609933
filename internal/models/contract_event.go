package models

import (
	"time"
)

// Contract event type constants
const (
	ContractEventFreeze       = "freeze"
	ContractEventCancellation = "cancellation"
)

// ContractEvent is one entry of a contract's append-only lifecycle history.
// Type selects which of the optional fields are populated.
type ContractEvent struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	ActorID    uint      `json:"actor_id"`
	Reason     *string   `json:"reason,omitempty"`

	// freeze only
	FreezeStart   *time.Time `json:"freeze_start,omitempty"`
	FreezeEnd     *time.Time `json:"freeze_end,omitempty"`
	ExtensionDays int        `json:"extension_days,omitempty"`
}

// NewFreezeEvent builds the history entry for a freeze window
func NewFreezeEvent(actorID uint, at, start, end time.Time, extensionDays int, reason *string) ContractEvent {
	return ContractEvent{
		Type:          ContractEventFreeze,
		OccurredAt:    at,
		ActorID:       actorID,
		Reason:        reason,
		FreezeStart:   &start,
		FreezeEnd:     &end,
		ExtensionDays: extensionDays,
	}
}

// NewCancellationEvent builds the history entry for a cancellation
func NewCancellationEvent(actorID uint, at time.Time, reason string) ContractEvent {
	return ContractEvent{
		Type:       ContractEventCancellation,
		OccurredAt: at,
		ActorID:    actorID,
		Reason:     &reason,
	}
}

// IsFreeze returns true for freeze entries
func (e ContractEvent) IsFreeze() bool {
	return e.Type == ContractEventFreeze
}

// IsCancellation returns true for cancellation entries
func (e ContractEvent) IsCancellation() bool {
	return e.Type == ContractEventCancellation
}

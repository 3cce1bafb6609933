package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/gymflow-api/internal/models"
)

// Contract lifecycle events
const (
	EventRenew  = "renew"
	EventFreeze = "freeze"
	EventCancel = "cancel"
	EventExpire = "expire"
)

// ErrTransitionNotAllowed is wrapped by every rejected transition
var ErrTransitionNotAllowed = errors.New("contract transition not allowed")

var contractEvents = fsm.Events{
	// active/expired → expired (the successor is created by the service)
	{Name: EventRenew, Src: []string{models.ContractStatusActive, models.ContractStatusExpired}, Dst: models.ContractStatusExpired},

	// active → active (end date pushed forward)
	{Name: EventFreeze, Src: []string{models.ContractStatusActive}, Dst: models.ContractStatusActive},

	// active/expired → cancelled
	{Name: EventCancel, Src: []string{models.ContractStatusActive, models.ContractStatusExpired}, Dst: models.ContractStatusCancelled},

	// active → expired (reconciliation, applied set-based by the repository)
	{Name: EventExpire, Src: []string{models.ContractStatusActive}, Dst: models.ContractStatusExpired},
}

// Sources returns the statuses the event may fire from
func Sources(event string) []string {
	for _, e := range contractEvents {
		if e.Name == event {
			return append([]string(nil), e.Src...)
		}
	}
	return nil
}

// ContractFSM wraps a contract with its state machine
type ContractFSM struct {
	contract *models.Contract
	fsm      *fsm.FSM
}

// NewContractFSM creates a new contract state machine
func NewContractFSM(contract *models.Contract) *ContractFSM {
	cfsm := &ContractFSM{
		contract: contract,
	}

	cfsm.fsm = fsm.NewFSM(contract.Status, contractEvents, fsm.Callbacks{})

	return cfsm
}

// Renew marks the contract as superseded by a renewal
func (c *ContractFSM) Renew(ctx context.Context) error {
	if !c.contract.MayRenew() {
		return c.reject(EventRenew)
	}
	return c.fire(ctx, EventRenew)
}

// Freeze validates that the contract can be frozen. The status does not change.
func (c *ContractFSM) Freeze(ctx context.Context) error {
	if !c.contract.MayFreeze() {
		return c.reject(EventFreeze)
	}
	return c.fire(ctx, EventFreeze)
}

// Cancel transitions contract to cancelled state
func (c *ContractFSM) Cancel(ctx context.Context) error {
	if !c.contract.MayCancel() {
		return c.reject(EventCancel)
	}
	return c.fire(ctx, EventCancel)
}

// fire runs the event and copies the resulting state back to the contract.
// Self-transitions (freeze, renewing an already expired contract) are not errors.
func (c *ContractFSM) fire(ctx context.Context, event string) error {
	if err := c.fsm.Event(ctx, event); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			return fmt.Errorf("%w: %s from %s: %v", ErrTransitionNotAllowed, event, c.contract.Status, err)
		}
	}

	c.contract.Status = c.fsm.Current()
	return nil
}

func (c *ContractFSM) reject(event string) error {
	return fmt.Errorf("%w: %s from %s", ErrTransitionNotAllowed, event, c.contract.Status)
}

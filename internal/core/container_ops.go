package core

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"inventorycore/pkg/domain"
)

// ErrItemOwned is returned when adding an item that already sits in a slot.
var ErrItemOwned = errors.New("inventory: item already stored in a container")

// TransferStage names the step at which a transfer stopped.
type TransferStage string

const (
	// StageRemove means nothing could be taken from the source.
	StageRemove TransferStage = "remove"
	// StageAdd means the target refused the item and it went back to the source.
	StageAdd TransferStage = "add"
	// StageRollback means the item could be returned to neither container.
	StageRollback TransferStage = "rollback"
)

// TransferError explains a failed transfer. On StageRollback, Item is the
// orphaned item now owned by no container.
type TransferError struct {
	Stage TransferStage
	Item  *Item
	Err   error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed at %s: %v", e.Stage, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Add stores item in the next free slot. It reports false when the container
// is disabled, has no capacity, the filter chain refuses the item, or every
// slot is taken.
func (c *Container) Add(item *Item) bool {
	return c.tryAdd(item, true) == nil
}

// TryAdd is Add with the refusal reason.
func (c *Container) TryAdd(item *Item) error {
	return c.tryAdd(item, true)
}

func (c *Container) tryAdd(item *Item, animate bool) error {
	if err := c.admit(item); err != nil {
		c.observeAdd(err)
		return err
	}
	anchor, ok := c.slots.TryPush(item)
	if !ok {
		c.observeAdd(domain.ErrCapacityExceeded)
		return domain.ErrCapacityExceeded
	}
	item.owner = c
	c.observeAdd(nil)
	c.emit(Event{Kind: ItemAdded, Container: c, Item: item, Slot: anchor.Index})
	if animate && c.collab.presenter != nil {
		c.collab.presenter.Execute(item, anchor)
	}
	return nil
}

func (c *Container) admit(item *Item) error {
	switch {
	case item == nil:
		return fmt.Errorf("%w: nil item", domain.ErrStructuralViolation)
	case c.disabled:
		return domain.ErrDisabled
	case item.owner != nil:
		return ErrItemOwned
	case !item.Identified():
		return fmt.Errorf("%w: item of type %s has no identity", domain.ErrStructuralViolation, item.TypeID())
	case c.Capacity() == 0:
		return domain.ErrCapacityExceeded
	case !c.filters.Allows(item):
		return domain.ErrFilterRejected
	}
	return nil
}

func (c *Container) observeAdd(err error) {
	m := c.metrics()
	switch {
	case err == nil:
		m.ObserveAdd(c.cfg.TypeID, OutcomeAccepted)
	case errors.Is(err, domain.ErrDisabled):
		m.ObserveAdd(c.cfg.TypeID, OutcomeDisabled)
	case errors.Is(err, domain.ErrCapacityExceeded):
		m.ObserveAdd(c.cfg.TypeID, OutcomeCapacity)
	case errors.Is(err, domain.ErrFilterRejected):
		m.ObserveAdd(c.cfg.TypeID, OutcomeFiltered)
	case errors.Is(err, ErrItemOwned):
		m.ObserveAdd(c.cfg.TypeID, OutcomeOwned)
	default:
		m.ObserveAdd(c.cfg.TypeID, OutcomeInvalid)
	}
}

func (c *Container) metrics() MetricsRecorder {
	if c.collab.metrics == nil {
		return NoopMetrics()
	}
	return c.collab.metrics
}

// Remove takes the most recently stored item.
func (c *Container) Remove() (*Item, bool) {
	item, err := c.TryRemove()
	return item, err == nil
}

// TryRemove is Remove with the refusal reason.
func (c *Container) TryRemove() (*Item, error) {
	if c.disabled {
		c.metrics().ObserveRemove(c.cfg.TypeID, OutcomeDisabled)
		return nil, domain.ErrDisabled
	}
	if c.slots == nil {
		c.metrics().ObserveRemove(c.cfg.TypeID, OutcomeEmpty)
		return nil, domain.ErrEmpty
	}
	slot := c.slots.Count() - 1
	item, ok := c.slots.TryPop()
	if !ok {
		c.metrics().ObserveRemove(c.cfg.TypeID, OutcomeEmpty)
		return nil, domain.ErrEmpty
	}
	item.owner = nil
	c.metrics().ObserveRemove(c.cfg.TypeID, OutcomeRemoved)
	c.emit(Event{Kind: ItemRemoved, Container: c, Item: item, Slot: slot})
	return item, nil
}

// Peek returns the most recently stored item without removing it.
func (c *Container) Peek() (*Item, bool) {
	if c.disabled || c.slots == nil {
		return nil, false
	}
	return c.slots.Peek()
}

// TransferTo moves the top item of c into target. On refusal the item goes
// back to c and false is returned.
func (c *Container) TransferTo(target *Container) bool {
	return c.Transfer(target) == nil
}

// Transfer is TransferTo with the failure detail. When the target refuses the
// item and c refuses it back as well, the item is orphaned: the error wraps
// domain.ErrRollbackFailure and carries the item so the caller can rehome it.
func (c *Container) Transfer(target *Container) error {
	if target == nil {
		return &TransferError{Stage: StageAdd, Err: fmt.Errorf("%w: nil target", domain.ErrStructuralViolation)}
	}
	item, err := c.TryRemove()
	if err != nil {
		c.metrics().ObserveTransfer(OutcomeRemoveFailed)
		return &TransferError{Stage: StageRemove, Err: err}
	}
	addErr := target.tryAdd(item, true)
	if addErr == nil {
		c.metrics().ObserveTransfer(OutcomeTransferred)
		return nil
	}
	if rbErr := c.tryAdd(item, false); rbErr != nil {
		c.metrics().ObserveTransfer(OutcomeRollbackFailed)
		c.log().WithFields(logrus.Fields{
			"op":           "transfer",
			"item_id":      item.ID(),
			"item_type":    item.TypeID(),
			"target_id":    target.ID(),
			"target_type":  target.TypeID(),
			"add_error":    addErr.Error(),
			"rollback_err": rbErr.Error(),
		}).Error("transfer rollback failed: item is no longer stored in any container")
		return &TransferError{
			Stage: StageRollback,
			Item:  item,
			Err:   fmt.Errorf("%w: %w (target refused: %v)", domain.ErrRollbackFailure, rbErr, addErr),
		}
	}
	c.metrics().ObserveTransfer(OutcomeRolledBack)
	return &TransferError{Stage: StageAdd, Err: addErr}
}

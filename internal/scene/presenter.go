package scene

import (
	"github.com/sirupsen/logrus"

	"inventorycore/internal/core"
)

var _ core.Presenter = (*AnimationLog)(nil)

// Animation is one recorded transfer animation.
type Animation struct {
	ItemID string
	Slot   int
}

// AnimationLog is a presenter that records animations instead of playing them.
type AnimationLog struct {
	logger  logrus.FieldLogger
	entries []Animation
}

// NewAnimationLog returns a presenter logging each animation at debug level.
// A nil logger only records.
func NewAnimationLog(logger logrus.FieldLogger) *AnimationLog {
	return &AnimationLog{logger: logger}
}

// Execute implements core.Presenter.
func (a *AnimationLog) Execute(item *core.Item, target core.Anchor) {
	a.entries = append(a.entries, Animation{ItemID: item.ID(), Slot: target.Index})
	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			"item_id":   item.ID(),
			"item_type": item.TypeID(),
			"slot":      target.Index,
			"offset":    target.Offset,
		}).Debug("transfer animation")
	}
}

// Entries returns the recorded animations in order.
func (a *AnimationLog) Entries() []Animation {
	return append([]Animation(nil), a.entries...)
}

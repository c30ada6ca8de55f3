package engine

import (
	"github.com/ftahirops/celltop/model"
	"github.com/sirupsen/logrus"
)

// Publisher forwards evaluated snapshots to an external sink.
type Publisher interface {
	Publish(snap *model.Snapshot, result *model.Result) error
}

// publishingTicker hands every tick to a publisher. Publish failures are
// logged and never affect the tick.
type publishingTicker struct {
	inner Ticker
	pub   Publisher
	log   logrus.FieldLogger
}

// NewPublishingTicker wraps a ticker so that each snapshot is published.
func NewPublishingTicker(inner Ticker, pub Publisher, log logrus.FieldLogger) Ticker {
	return &publishingTicker{inner: inner, pub: pub, log: log}
}

func (t *publishingTicker) Tick() (*model.Snapshot, *model.Result) {
	snap, result := t.inner.Tick()
	if snap == nil {
		return snap, result
	}
	if err := t.pub.Publish(snap, result); err != nil {
		t.log.WithError(err).Warn("publish snapshot")
	}
	return snap, result
}

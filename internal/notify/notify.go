// Package notify announces finished export runs to downstream systems.
package notify

import (
	"context"

	"egov-event-export/internal/models"

	"go.uber.org/zap"
)

// Notifier receives the summary of a finished run
type Notifier interface {
	Name() string
	Notify(ctx context.Context, summary *models.RunSummary) error
}

// Dispatcher fans a summary out to every notifier. Failures are logged only.
type Dispatcher struct {
	notifiers []Notifier
	logger    *zap.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(logger *zap.Logger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		logger:    logger,
	}
}

// Add registers another notifier
func (d *Dispatcher) Add(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

// Len returns the number of registered notifiers
func (d *Dispatcher) Len() int {
	return len(d.notifiers)
}

// Dispatch notifies every notifier and returns how many failed
func (d *Dispatcher) Dispatch(ctx context.Context, summary *models.RunSummary) int {
	failed := 0
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, summary); err != nil {
			failed++
			d.logger.Warn("Failed to notify",
				zap.String("notifier", n.Name()),
				zap.String("run_id", summary.RunID),
				zap.Error(err),
			)
			continue
		}
		d.logger.Debug("Notified",
			zap.String("notifier", n.Name()),
			zap.String("run_id", summary.RunID),
		)
	}
	return failed
}

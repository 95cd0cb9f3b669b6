package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/clinic-api/pkg/logger"
)

type reminderSender interface {
	DispatchDue(ctx context.Context, limit int) (int, error)
}

// ReminderDispatcher periodically delivers due appointment reminders
type ReminderDispatcher struct {
	reminders reminderSender
	batchSize int
	interval  time.Duration
	logger    *logger.Logger
}

func NewReminderDispatcher(reminders reminderSender, batchSize int, interval time.Duration, log *logger.Logger) *ReminderDispatcher {
	return &ReminderDispatcher{
		reminders: reminders,
		batchSize: batchSize,
		interval:  interval,
		logger:    log.With("reminder_dispatcher"),
	}
}

func (w *ReminderDispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce drains due reminders batch by batch until a batch comes back short
func (w *ReminderDispatcher) RunOnce(ctx context.Context) int {
	total := 0
	for ctx.Err() == nil {
		sent, err := w.reminders.DispatchDue(ctx, w.batchSize)
		if err != nil {
			w.logger.Error(err, "Failed to dispatch reminders")
			return total
		}
		total += sent
		if sent < w.batchSize {
			break
		}
	}
	if total > 0 {
		w.logger.Info("Reminders sent", "count", total)
	}
	return total
}

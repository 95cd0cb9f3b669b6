package messaging

import (
	"context"

	"github.com/jwalitptl/clinic-api/pkg/logger"
)

// Consume feeds every message on channel to handler until ctx is done.
// Handler errors are logged and do not stop the subscription.
func Consume(ctx context.Context, broker Broker, channel string, handler Handler, log *logger.Logger) error {
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := handler(ctx, msg); err != nil {
				log.Error(err, "Failed to handle message", "channel", channel)
			}
		}
	}()

	return nil
}

package effect

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Logger only records effects. It's the default when no queue is configured.
type Logger struct{}

var _ Dispatcher = Logger{}

func (Logger) Dispatch(_ context.Context, batch *Batch) error {
	for idx, e := range batch.Effects {
		log.WithFields(log.Fields{
			"id":        batch.ID,
			"action":    batch.Action,
			"index":     idx,
			"kind":      e.Kind,
			"recipient": e.Recipient,
			"amount":    e.Amount,
			"denom":     e.Denom,
		}).Info("effect")
	}
	return nil
}

// Multi fans a batch out to every dispatcher, stopping at the first failure.
type Multi []Dispatcher

func (m Multi) Dispatch(ctx context.Context, batch *Batch) error {
	for _, d := range m {
		if err := d.Dispatch(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

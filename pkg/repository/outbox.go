package repository

import (
	"context"

	"github.com/jwalitptl/clinic-api/internal/repository"
)

// OutboxStore is the part of the store the outbox workers need
type OutboxStore interface {
	Outbox() repository.OutboxRepository
	// WithOutboxTx runs fn with an outbox repository bound to one transaction
	WithOutboxTx(ctx context.Context, fn func(repo repository.OutboxRepository) error) error
}

type storeAdapter struct {
	store repository.Store
}

func FromStore(store repository.Store) OutboxStore {
	return storeAdapter{store: store}
}

func (a storeAdapter) Outbox() repository.OutboxRepository {
	return a.store.Outbox()
}

func (a storeAdapter) WithOutboxTx(ctx context.Context, fn func(repo repository.OutboxRepository) error) error {
	return a.store.WithTx(ctx, func(tx repository.Repositories) error {
		return fn(tx.Outbox())
	})
}

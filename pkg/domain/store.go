package domain

import "context"

// Store is the typed storage interface the engine consumes; the host
// implements it (GORM over Postgres for production, an in-memory map for
// tests). Atomic gives every commander a single all-or-nothing mutation
// boundary: validate first, mutate second, and on any error nothing the
// callback touched is persisted.
type Store interface {
	Atomic(ctx context.Context, fn func(Store) error) error

	ClassRepo() ClassRepository
	EntityRepo() EntityRepository
	CuratorGroupRepo() CuratorGroupRepository
	VoucherRepo() VoucherRepository
	EventRepo() EventRepository
}

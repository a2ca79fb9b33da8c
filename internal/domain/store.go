package domain

import "context"

// Store bundles the repositories behind a unit-of-work boundary. Calls made
// through the Store passed to WithTransaction share one database
// transaction; returning an error rolls everything back.
type Store interface {
	Account() AccountRepository
	Transaction() TransactionRepository
	User() UserRepository
	WithTransaction(ctx context.Context, fn func(Store) error) error
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the ledger entity holding a user's balance. The
// (AccountNumber, RoutingCode) pair resolves exactly one account and is
// what transfer counterparties address each other by.
type Account struct {
	ID            uuid.UUID       `json:"account_id"`
	UserID        uuid.UUID       `json:"user_id"`
	AccountNumber string          `json:"account_number"`
	RoutingCode   string          `json:"routing_code"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type AccountRepository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*Account, error)
	GetAccountByNumber(ctx context.Context, accountNumber, routingCode string) (*Account, error)
	// GetAccountForUpdate locks the account row until the enclosing
	// database transaction ends.
	GetAccountForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	// UpdateAccountBalance writes newBalance only if the stored balance
	// still equals expectedBalance.
	UpdateAccountBalance(ctx context.Context, id uuid.UUID, expectedBalance, newBalance decimal.Decimal) error
}

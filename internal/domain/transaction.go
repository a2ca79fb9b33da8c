package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is an append-only audit record of a completed transfer.
// SenderBalanceAfter snapshots the sender's balance immediately after the
// transfer committed.
type Transaction struct {
	ID                 uuid.UUID       `json:"id"`
	SenderAccountID    uuid.UUID       `json:"sender_account_id"`
	ReceiverAccountID  uuid.UUID       `json:"receiver_account_id"`
	Amount             decimal.Decimal `json:"amount"`
	SenderBalanceAfter decimal.Decimal `json:"sender_balance_after"`
	IdempotencyKey     *uuid.UUID      `json:"idempotency_key,omitempty"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
}

const (
	TransactionCompleted = "completed"
)

type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	GetTransactionByIdempotencyKey(ctx context.Context, key uuid.UUID) (*Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*Transaction, error)
}

package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"moneyflow/internal/domain"
	"moneyflow/internal/errors"
)

type transactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

const transactionColumns = `id, sender_account_id, receiver_account_id, amount, sender_balance_after, idempotency_key, status, created_at`

func (r *transactionRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions
		(id, sender_account_id, receiver_account_id, amount, sender_balance_after, idempotency_key, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()

	var idempotencyKey interface{}
	if tx.IdempotencyKey != nil {
		idempotencyKey = *tx.IdempotencyKey
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		tx.ID,
		tx.SenderAccountID,
		tx.ReceiverAccountID,
		tx.Amount.String(),
		tx.SenderBalanceAfter.String(),
		idempotencyKey,
		tx.Status,
		now,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "idx_transactions_idempotency_key" {
				r.logger.Warn("Duplicate idempotency key", "idempotency_key", tx.IdempotencyKey)
				return errors.NewAppError(errors.InternalError, "transaction already recorded for idempotency key")
			}
		}
		r.logger.Error("Failed to create transaction",
			"sender_account_id", tx.SenderAccountID,
			"receiver_account_id", tx.ReceiverAccountID,
			"amount", tx.Amount,
			"error", err)
		return errors.NewAppError(errors.InternalError, "failed to create transaction").WithDetails(err.Error())
	}

	tx.CreatedAt = now
	r.logger.Info("Transaction created successfully", "transaction_id", tx.ID)
	return nil
}

func (r *transactionRepository) GetTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.scanTransaction(r.db.QueryRowContext(ctx, query, id))
}

func (r *transactionRepository) GetTransactionByIdempotencyKey(ctx context.Context, key uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE idempotency_key = $1`
	return r.scanTransaction(r.db.QueryRowContext(ctx, query, key))
}

func (r *transactionRepository) ListTransactionsByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE sender_account_id = $1 OR receiver_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		r.logger.Error("Failed to list transactions", "account_id", accountID, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list transactions").WithDetails(err.Error())
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to list transactions").WithDetails(err.Error())
	}

	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *transactionRepository) scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var transaction domain.Transaction
	var amountStr, balanceAfterStr string
	var idempotencyKey sql.NullString

	err := row.Scan(
		&transaction.ID,
		&transaction.SenderAccountID,
		&transaction.ReceiverAccountID,
		&amountStr,
		&balanceAfterStr,
		&idempotencyKey,
		&transaction.Status,
		&transaction.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get transaction").WithDetails(err.Error())
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to parse amount").WithDetails(err.Error())
	}
	transaction.Amount = amount

	balanceAfter, err := decimal.NewFromString(balanceAfterStr)
	if err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to parse balance snapshot").WithDetails(err.Error())
	}
	transaction.SenderBalanceAfter = balanceAfter

	if idempotencyKey.Valid {
		key, err := uuid.Parse(idempotencyKey.String)
		if err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to parse idempotency key").WithDetails(err.Error())
		}
		transaction.IdempotencyKey = &key
	}

	return &transaction, nil
}

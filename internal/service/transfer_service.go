package service

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"moneyflow/internal/domain"
	"moneyflow/internal/errors"
)

// maxTransferAmount caps a single transfer at 10 billion.
var maxTransferAmount = decimal.NewFromInt(10_000_000_000)

// TransferService moves value between two accounts atomically, or fails
// cleanly with no partial effect.
type TransferService struct {
	store          domain.Store
	logger         *slog.Logger
	storageTimeout time.Duration
}

func NewTransferService(store domain.Store, logger *slog.Logger, storageTimeout time.Duration) *TransferService {
	return &TransferService{
		store:          store,
		logger:         logger,
		storageTimeout: storageTimeout,
	}
}

type TransferRequest struct {
	SenderUserID          uuid.UUID
	ReceiverAccountNumber string
	ReceiverRoutingCode   string
	Amount                decimal.Decimal
	IdempotencyKey        *uuid.UUID
}

// Transfer debits the sender and credits the receiver by exactly
// req.Amount, then appends an audit record. All validation and lookup
// failures return with zero side effects. The audit append is best-effort:
// its failure is logged but does not change a committed transfer's outcome.
func (s *TransferService) Transfer(ctx context.Context, req *TransferRequest) (*domain.Transaction, error) {
	s.logger.Info("Processing transfer",
		"sender_user_id", req.SenderUserID,
		"receiver_account_number", req.ReceiverAccountNumber,
		"amount", req.Amount)

	// Amount checks come before any storage call.
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	if s.storageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.storageTimeout)
		defer cancel()
	}

	if req.IdempotencyKey != nil {
		existing, err := s.store.Transaction().GetTransactionByIdempotencyKey(ctx, *req.IdempotencyKey)
		if err != nil {
			return nil, s.classify(ctx, err)
		}
		if existing != nil {
			s.logger.Info("Returning existing transaction for idempotency key",
				"idempotency_key", *req.IdempotencyKey,
				"transaction_id", existing.ID)
			return existing, nil
		}
	}

	sender, err := s.store.Account().GetAccountByUserID(ctx, req.SenderUserID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrSenderNotFound
		}
		return nil, s.classify(ctx, err)
	}

	receiver, err := s.store.Account().GetAccountByNumber(ctx, req.ReceiverAccountNumber, req.ReceiverRoutingCode)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrReceiverNotFound
		}
		return nil, s.classify(ctx, err)
	}

	if sender.ID == receiver.ID {
		return nil, errors.ErrSameAccountTransfer
	}

	transaction := &domain.Transaction{
		ID:                uuid.New(),
		SenderAccountID:   sender.ID,
		ReceiverAccountID: receiver.ID,
		Amount:            req.Amount,
		IdempotencyKey:    req.IdempotencyKey,
		Status:            domain.TransactionCompleted,
	}

	err = s.store.WithTransaction(ctx, func(store domain.Store) error {
		// Lock both rows in a fixed order so two opposing transfers
		// cannot deadlock, then re-read balances under the lock.
		firstID, secondID := lockOrder(sender.ID, receiver.ID)

		locked := make(map[uuid.UUID]*domain.Account, 2)
		for _, id := range []uuid.UUID{firstID, secondID} {
			account, err := store.Account().GetAccountForUpdate(ctx, id)
			if err != nil {
				return err
			}
			locked[id] = account
		}

		lockedSender := locked[sender.ID]
		lockedReceiver := locked[receiver.ID]

		if lockedSender.Balance.LessThan(req.Amount) {
			return errors.ErrInsufficientBalance
		}

		newSenderBalance := lockedSender.Balance.Sub(req.Amount)
		newReceiverBalance := lockedReceiver.Balance.Add(req.Amount)

		if err := store.Account().UpdateAccountBalance(ctx, sender.ID, lockedSender.Balance, newSenderBalance); err != nil {
			return err
		}
		if err := store.Account().UpdateAccountBalance(ctx, receiver.ID, lockedReceiver.Balance, newReceiverBalance); err != nil {
			return err
		}

		transaction.SenderBalanceAfter = newSenderBalance
		return nil
	})

	if err != nil {
		return nil, s.classify(ctx, err)
	}

	// Balances are committed at this point. The audit append must not undo
	// a completed transfer, so its failure only produces a warning.
	if err := s.store.Transaction().CreateTransaction(ctx, transaction); err != nil {
		s.logger.Warn("Transfer committed but audit record failed",
			"transaction_id", transaction.ID,
			"error", err)
	}

	s.logger.Info("Transfer completed successfully", "transaction_id", transaction.ID)
	return transaction, nil
}

// History lists the transactions the user's account took part in, newest
// first.
func (s *TransferService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	account, err := s.store.Account().GetAccountByUserID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.ErrSenderNotFound
		}
		return nil, s.classify(ctx, err)
	}

	transactions, err := s.store.Transaction().ListTransactionsByAccount(ctx, account.ID, limit)
	if err != nil {
		return nil, s.classify(ctx, err)
	}
	return transactions, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() || amount.IsZero() {
		return errors.ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return errors.NewAppError(errors.InvalidAmount, "amount has more than two decimal places")
	}
	if amount.GreaterThan(maxTransferAmount) {
		return errors.NewAppError(errors.InvalidAmount, "amount exceeds maximum transfer limit")
	}
	return nil
}

// lockOrder returns the two account ids in their fixed locking order.
func lockOrder(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}

func isNotFound(err error) bool {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == errors.AccountNotFound
	}
	return false
}

// classify maps storage failures onto the closed outcome set. Expected
// user-facing outcomes pass through untouched; a deadline or cancellation
// becomes StorageTimeout because the caller must not treat the transfer as
// definitively failed; anything else is internal.
func (s *TransferService) classify(ctx context.Context, err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Code != errors.InternalError {
		return appErr
	}

	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) || ctx.Err() != nil {
		s.logger.Error("Storage call timed out during transfer", "error", err)
		return errors.ErrStorageTimeout
	}

	if appErr != nil {
		return appErr
	}
	s.logger.Error("Transfer failed", "error", err)
	return errors.NewAppError(errors.InternalError, "transfer failed").WithDetails(err.Error())
}

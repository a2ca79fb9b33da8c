package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"moneyflow/internal/domain"
)

type AccountService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewAccountService(store domain.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

// GetByUserID returns the account owned by the given user.
func (s *AccountService) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	return s.store.Account().GetAccountByUserID(ctx, userID)
}

// Deposit credits the account owned by userID. It exists to seed demo
// balances; peer-to-peer movement goes through TransferService.
func (s *AccountService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Account, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	account, err := s.store.Account().GetAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var updated *domain.Account
	err = s.store.WithTransaction(ctx, func(store domain.Store) error {
		locked, err := store.Account().GetAccountForUpdate(ctx, account.ID)
		if err != nil {
			return err
		}

		newBalance := locked.Balance.Add(amount)
		if err := store.Account().UpdateAccountBalance(ctx, locked.ID, locked.Balance, newBalance); err != nil {
			return err
		}

		locked.Balance = newBalance
		updated = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deposit applied", "account_id", updated.ID, "amount", amount)
	return updated, nil
}

// newAccountNumber generates the identifier pair counterparties use to
// address this account.
func newAccountNumber() (accountNumber, routingCode string) {
	accountNumber = "AC" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	routingCode = "IFSC" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return accountNumber, routingCode
}

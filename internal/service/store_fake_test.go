package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"moneyflow/internal/domain"
	"moneyflow/internal/errors"
)

// memStore is an in-memory domain.Store for service tests. WithTransaction
// serializes on one mutex, which mirrors for testing purposes what the
// Postgres row locks guarantee: no two read-modify-write cycles on the same
// account can interleave.
type memStore struct {
	mu sync.Mutex

	accounts     map[uuid.UUID]*domain.Account
	transactions map[uuid.UUID]*domain.Transaction
	byIdemKey    map[uuid.UUID]uuid.UUID
	users        map[uuid.UUID]*domain.User

	// fault injection
	failAppend     bool
	lookupErr      error
	appendAttempts int
	lookupCalls    int

	inTx bool
}

func newMemStore() *memStore {
	return &memStore{
		accounts:     make(map[uuid.UUID]*domain.Account),
		transactions: make(map[uuid.UUID]*domain.Transaction),
		byIdemKey:    make(map[uuid.UUID]uuid.UUID),
		users:        make(map[uuid.UUID]*domain.User),
	}
}

func (s *memStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) Account() domain.AccountRepository         { return (*memAccounts)(s) }
func (s *memStore) Transaction() domain.TransactionRepository { return (*memTransactions)(s) }
func (s *memStore) User() domain.UserRepository               { return (*memUsers)(s) }

func (s *memStore) WithTransaction(ctx context.Context, fn func(domain.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Snapshot balances so a failed transaction has zero effect.
	snapshot := make(map[uuid.UUID]decimal.Decimal, len(s.accounts))
	for id, account := range s.accounts {
		snapshot[id] = account.Balance
	}

	txStore := &memStore{
		accounts:     s.accounts,
		transactions: s.transactions,
		byIdemKey:    s.byIdemKey,
		users:        s.users,
		failAppend:   s.failAppend,
		lookupErr:    s.lookupErr,
		inTx:         true,
	}

	if err := fn(txStore); err != nil {
		for id, balance := range snapshot {
			s.accounts[id].Balance = balance
		}
		return err
	}
	return nil
}

// seedAccount registers an account (and its owning user) in the store.
func (s *memStore) seedAccount(balance string) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := uuid.New()
	account := &domain.Account{
		ID:            uuid.New(),
		UserID:        userID,
		AccountNumber: "AC" + strings.ToUpper(uuid.NewString()[:8]),
		RoutingCode:   "IFSC" + strings.ToUpper(uuid.NewString()[:4]),
		Balance:       decimal.RequireFromString(balance),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	s.accounts[account.ID] = account
	return account
}

func (s *memStore) balanceOf(id uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id].Balance
}

type memAccounts memStore

func (r *memAccounts) CreateAccount(ctx context.Context, account *domain.Account) error {
	s := (*memStore)(r)
	defer s.lock()()
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (r *memAccounts) GetAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s := (*memStore)(r)
	defer s.lock()()
	return s.findAccount(func(a *domain.Account) bool { return a.ID == id })
}

func (r *memAccounts) GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	s := (*memStore)(r)
	defer s.lock()()
	s.lookupCalls++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.findAccount(func(a *domain.Account) bool { return a.UserID == userID })
}

func (r *memAccounts) GetAccountByNumber(ctx context.Context, accountNumber, routingCode string) (*domain.Account, error) {
	s := (*memStore)(r)
	defer s.lock()()
	s.lookupCalls++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.findAccount(func(a *domain.Account) bool {
		return a.AccountNumber == accountNumber && a.RoutingCode == routingCode
	})
}

func (r *memAccounts) GetAccountForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s := (*memStore)(r)
	defer s.lock()()
	return s.findAccount(func(a *domain.Account) bool { return a.ID == id })
}

func (r *memAccounts) UpdateAccountBalance(ctx context.Context, id uuid.UUID, expectedBalance, newBalance decimal.Decimal) error {
	s := (*memStore)(r)
	defer s.lock()()

	account, ok := s.accounts[id]
	if !ok {
		return errors.ErrAccountNotFound
	}
	if !account.Balance.Equal(expectedBalance) {
		return errors.NewAppError(errors.InternalError, "account balance changed concurrently")
	}
	account.Balance = newBalance
	account.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) findAccount(match func(*domain.Account) bool) (*domain.Account, error) {
	for _, account := range s.accounts {
		if match(account) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, errors.ErrAccountNotFound
}

type memTransactions memStore

func (r *memTransactions) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	s := (*memStore)(r)
	defer s.lock()()

	s.appendAttempts++
	if s.failAppend {
		return errors.NewAppError(errors.InternalError, "append failed")
	}

	copied := *tx
	copied.CreatedAt = time.Now()
	s.transactions[tx.ID] = &copied
	if tx.IdempotencyKey != nil {
		s.byIdemKey[*tx.IdempotencyKey] = tx.ID
	}
	tx.CreatedAt = copied.CreatedAt
	return nil
}

func (r *memTransactions) GetTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s := (*memStore)(r)
	defer s.lock()()
	if tx, ok := s.transactions[id]; ok {
		copied := *tx
		return &copied, nil
	}
	return nil, nil
}

func (r *memTransactions) GetTransactionByIdempotencyKey(ctx context.Context, key uuid.UUID) (*domain.Transaction, error) {
	s := (*memStore)(r)
	defer s.lock()()
	s.lookupCalls++
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if id, ok := s.byIdemKey[key]; ok {
		copied := *s.transactions[id]
		return &copied, nil
	}
	return nil, nil
}

func (r *memTransactions) ListTransactionsByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	s := (*memStore)(r)
	defer s.lock()()

	var result []*domain.Transaction
	for _, tx := range s.transactions {
		if tx.SenderAccountID == accountID || tx.ReceiverAccountID == accountID {
			copied := *tx
			result = append(result, &copied)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

type memUsers memStore

func (r *memUsers) CreateUser(ctx context.Context, user *domain.User) error {
	s := (*memStore)(r)
	defer s.lock()()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return errors.ErrDuplicateUser
		}
	}
	copied := *user
	copied.CreatedAt = time.Now()
	s.users[user.ID] = &copied
	user.CreatedAt = copied.CreatedAt
	return nil
}

func (r *memUsers) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s := (*memStore)(r)
	defer s.lock()()
	if user, ok := s.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, nil
}

func (r *memUsers) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s := (*memStore)(r)
	defer s.lock()()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

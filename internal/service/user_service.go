package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"moneyflow/internal/auth"
	"moneyflow/internal/domain"
	"moneyflow/internal/errors"
)

type UserService struct {
	store  domain.Store
	tokens *auth.TokenProvider
	logger *slog.Logger
}

func NewUserService(store domain.Store, tokens *auth.TokenProvider, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

type RegisterRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates a user with a hashed password and opens their account
// with a zero balance. Both rows are written in one database transaction.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*domain.User, *domain.Account, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, errors.NewAppError(errors.InvalidInput, "a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, nil, errors.NewAppError(errors.InvalidInput, "password must be at least 8 characters")
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return nil, nil, errors.NewAppError(errors.InvalidInput, "first and last name are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, errors.NewAppError(errors.InternalError, "failed to hash password").WithDetails(err.Error())
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(hashedPassword),
	}

	accountNumber, routingCode := newAccountNumber()
	account := &domain.Account{
		ID:            uuid.New(),
		UserID:        user.ID,
		AccountNumber: accountNumber,
		RoutingCode:   routingCode,
		Balance:       decimal.Zero,
	}

	err = s.store.WithTransaction(ctx, func(store domain.Store) error {
		if err := store.User().CreateUser(ctx, user); err != nil {
			return err
		}
		return store.Account().CreateAccount(ctx, account)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User registered", "user_id", user.ID, "account_id", account.ID)
	return user, account, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password produce the same outcome.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.store.User().GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, errors.NewAppError(errors.InternalError, "failed to generate token").WithDetails(err.Error())
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return token, user, nil
}

// GetUser returns the profile for an authenticated user id.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.store.User().GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.ErrUnauthorized
	}
	return user, nil
}

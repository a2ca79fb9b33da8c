package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyflow/internal/auth"
	"moneyflow/internal/errors"
)

func newUserFixture(t *testing.T) (*UserService, *memStore) {
	t.Helper()
	store := newMemStore()
	tokens := auth.NewTokenProvider("test-secret", time.Hour)
	return NewUserService(store, tokens, testLogger()), store
}

func registerReq(email string) *RegisterRequest {
	return &RegisterRequest{
		FirstName: "John",
		LastName:  "Doe",
		Email:     email,
		Password:  "correct-horse",
	}
}

func TestRegisterCreatesUserAndAccount(t *testing.T) {
	svc, store := newUserFixture(t)

	user, account, err := svc.Register(context.Background(), registerReq("john.doe@example.com"))
	require.NoError(t, err)

	assert.Equal(t, "john.doe@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash, "password must be stored hashed")

	assert.Equal(t, user.ID, account.UserID)
	assert.True(t, account.Balance.IsZero(), "new accounts start with a zero balance")
	assert.True(t, strings.HasPrefix(account.AccountNumber, "AC"))
	assert.True(t, strings.HasPrefix(account.RoutingCode, "IFSC"))

	stored, err := store.User().GetUserByEmail(context.Background(), "john.doe@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _ := newUserFixture(t)

	user, _, err := svc.Register(context.Background(), registerReq("  John.Doe@Example.COM "))
	require.NoError(t, err)
	assert.Equal(t, "john.doe@example.com", user.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserFixture(t)

	_, _, err := svc.Register(context.Background(), registerReq("dup@example.com"))
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), registerReq("dup@example.com"))
	assert.Equal(t, errors.ErrDuplicateUser, err)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _ := newUserFixture(t)

	cases := []struct {
		name string
		req  *RegisterRequest
	}{
		{"missing email", &RegisterRequest{FirstName: "A", LastName: "B", Password: "longenough"}},
		{"malformed email", &RegisterRequest{FirstName: "A", LastName: "B", Email: "nope", Password: "longenough"}},
		{"short password", &RegisterRequest{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "short"}},
		{"missing name", &RegisterRequest{Email: "a@b.com", Password: "longenough"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tc.req)
			require.Error(t, err)
			appErr, ok := err.(*errors.AppError)
			require.True(t, ok)
			assert.Equal(t, errors.InvalidInput, appErr.Code)
		})
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, _ := newUserFixture(t)

	user, _, err := svc.Register(context.Background(), registerReq("login@example.com"))
	require.NoError(t, err)

	token, loggedIn, err := svc.Login(context.Background(), "login@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	tokens := auth.NewTokenProvider("test-secret", time.Hour)
	subject, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newUserFixture(t)

	_, _, err := svc.Register(context.Background(), registerReq("victim@example.com"))
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "victim@example.com", "wrong-password")
	assert.Equal(t, errors.ErrInvalidCredentials, err)
}

func TestLoginUnknownEmailSameOutcome(t *testing.T) {
	svc, _ := newUserFixture(t)

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever1")
	assert.Equal(t, errors.ErrInvalidCredentials, err,
		"unknown email must be indistinguishable from a wrong password")
}

package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	SenderNotFound      ErrorCode = "sender_not_found"
	ReceiverNotFound    ErrorCode = "receiver_not_found"
	AccountNotFound     ErrorCode = "account_not_found"
	InsufficientBalance ErrorCode = "insufficient_balance"
	InvalidAmount       ErrorCode = "invalid_amount"
	SameAccountTransfer ErrorCode = "same_account_transfer"
	StorageTimeout      ErrorCode = "storage_timeout"
	DuplicateUser       ErrorCode = "duplicate_user"
	InvalidCredentials  ErrorCode = "invalid_credentials"
	Unauthorized        ErrorCode = "unauthorized"
	InvalidInput        ErrorCode = "invalid_input"
	InternalError       ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// HTTPStatus maps the error code to the status the API layer reports.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case SenderNotFound, ReceiverNotFound, AccountNotFound:
		return http.StatusNotFound
	case InsufficientBalance:
		return http.StatusUnprocessableEntity
	case InvalidAmount, SameAccountTransfer, InvalidInput:
		return http.StatusBadRequest
	case StorageTimeout:
		return http.StatusGatewayTimeout
	case DuplicateUser:
		return http.StatusConflict
	case InvalidCredentials, Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrSenderNotFound      = NewAppError(SenderNotFound, "sender account not found")
	ErrReceiverNotFound    = NewAppError(ReceiverNotFound, "receiver account not found")
	ErrAccountNotFound     = NewAppError(AccountNotFound, "account not found")
	ErrInsufficientBalance = NewAppError(InsufficientBalance, "insufficient balance")
	ErrInvalidAmount       = NewAppError(InvalidAmount, "amount must be positive")
	ErrSameAccountTransfer = NewAppError(SameAccountTransfer, "sender and receiver are the same account")
	ErrStorageTimeout      = NewAppError(StorageTimeout, "storage operation timed out, transfer outcome unknown")
	ErrDuplicateUser       = NewAppError(DuplicateUser, "user already registered")
	ErrInvalidCredentials  = NewAppError(InvalidCredentials, "invalid credentials")
	ErrUnauthorized        = NewAppError(Unauthorized, "authentication required")
)

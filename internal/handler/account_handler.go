package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"moneyflow/internal/errors"
	"moneyflow/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type AccountResponse struct {
	AccountID     string `json:"account_id"`
	AccountNumber string `json:"account_number"`
	RoutingCode   string `json:"routing_code"`
	Balance       string `json:"balance"`
}

func (h *AccountHandler) GetMyAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeError(w, errors.ErrUnauthorized)
		return
	}

	account, err := h.accountService.GetByUserID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{
		AccountID:     account.ID.String(),
		AccountNumber: account.AccountNumber,
		RoutingCode:   account.RoutingCode,
		Balance:       account.Balance.String(),
	})
}

type DepositRequest struct {
	Amount string `json:"amount"`
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeError(w, errors.ErrUnauthorized)
		return
	}

	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid amount format"))
		return
	}

	account, err := h.accountService.Deposit(r.Context(), userID, amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{
		AccountID:     account.ID.String(),
		AccountNumber: account.AccountNumber,
		RoutingCode:   account.RoutingCode,
		Balance:       account.Balance.String(),
	})
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"moneyflow/internal/domain"
	"moneyflow/internal/errors"
	"moneyflow/internal/service"
)

type TransferHandler struct {
	transferService *service.TransferService
}

func NewTransferHandler(transferService *service.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

type TransferRequest struct {
	ReceiverAccountNumber string `json:"receiver_account_number"`
	ReceiverRoutingCode   string `json:"receiver_routing_code"`
	Amount                string `json:"amount"`
	IdempotencyKey        string `json:"idempotency_key,omitempty"`
}

type TransferResponse struct {
	TransactionID      string  `json:"transaction_id"`
	Status             string  `json:"status"`
	Amount             string  `json:"amount"`
	SenderBalanceAfter string  `json:"sender_balance_after"`
	IdempotencyKey     *string `json:"idempotency_key,omitempty"`
}

func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeError(w, errors.ErrUnauthorized)
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid amount format").WithDetails(err.Error()))
		return
	}

	// The header form takes precedence over the body field.
	keyStr := r.Header.Get("Idempotency-Key")
	if keyStr == "" {
		keyStr = req.IdempotencyKey
	}
	var idempotencyKey *uuid.UUID
	if keyStr != "" {
		key, err := uuid.Parse(keyStr)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "invalid idempotency key format").WithDetails(err.Error()))
			return
		}
		idempotencyKey = &key
	}

	transaction, err := h.transferService.Transfer(r.Context(), &service.TransferRequest{
		SenderUserID:          userID,
		ReceiverAccountNumber: req.ReceiverAccountNumber,
		ReceiverRoutingCode:   req.ReceiverRoutingCode,
		Amount:                amount,
		IdempotencyKey:        idempotencyKey,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := TransferResponse{
		TransactionID:      transaction.ID.String(),
		Status:             transaction.Status,
		Amount:             transaction.Amount.String(),
		SenderBalanceAfter: transaction.SenderBalanceAfter.String(),
	}
	if transaction.IdempotencyKey != nil {
		keyStr := transaction.IdempotencyKey.String()
		response.IdempotencyKey = &keyStr
	}

	writeJSON(w, http.StatusCreated, response)
}

type HistoryEntry struct {
	TransactionID     string    `json:"transaction_id"`
	SenderAccountID   string    `json:"sender_account_id"`
	ReceiverAccountID string    `json:"receiver_account_id"`
	Amount            string    `json:"amount"`
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
}

func (h *TransferHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		writeError(w, errors.ErrUnauthorized)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "invalid limit"))
			return
		}
		limit = parsed
	}

	transactions, err := h.transferService.History(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entries := make([]HistoryEntry, 0, len(transactions))
	for _, tx := range transactions {
		entries = append(entries, toHistoryEntry(tx))
	}

	writeJSON(w, http.StatusOK, entries)
}

func toHistoryEntry(tx *domain.Transaction) HistoryEntry {
	return HistoryEntry{
		TransactionID:     tx.ID.String(),
		SenderAccountID:   tx.SenderAccountID.String(),
		ReceiverAccountID: tx.ReceiverAccountID.String(),
		Amount:            tx.Amount.String(),
		Status:            tx.Status,
		Timestamp:         tx.CreatedAt,
	}
}

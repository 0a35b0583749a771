package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayo6706/bank-transfer-saga/internal/account"
	"github.com/ayo6706/bank-transfer-saga/internal/bus"
	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/ayo6706/bank-transfer-saga/internal/query"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AccountHandler struct {
	commands *bus.CommandBus
	queries  *query.Service
}

func NewAccountHandler(commands *bus.CommandBus, queries *query.Service) *AccountHandler {
	return &AccountHandler{commands: commands, queries: queries}
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID      string `json:"account_id"`
		OverdraftLimit int64  `json:"overdraft_limit_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "invalid-body", "Invalid request body")
		return
	}
	if req.AccountID == "" {
		req.AccountID = uuid.NewString()
	}

	err := h.commands.Dispatch(r.Context(), domain.CreateAccount{
		AccountID:      req.AccountID,
		OverdraftLimit: req.OverdraftLimit,
	})
	if err != nil {
		if errors.Is(err, account.ErrAccountExists) {
			RespondError(w, r, http.StatusConflict, "account/already-exists", err.Error())
			return
		}
		RespondError(w, r, http.StatusBadRequest, "account/invalid-request", err.Error())
		return
	}

	RespondJSON(w, http.StatusCreated, map[string]string{"account_id": req.AccountID})
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := h.queries.Account(r.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			RespondError(w, r, http.StatusNotFound, "account/not-found", "Account not found")
			return
		}
		RespondError(w, r, http.StatusInternalServerError, "account/read-failed", err.Error())
		return
	}
	RespondJSON(w, http.StatusOK, view)
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, func(id string, amount int64) domain.Command {
		return domain.DepositMoney{AccountID: id, Amount: amount}
	})
}

// Withdraw dispatches a local withdrawal. A withdrawal beyond the overdraft
// limit is a silent no-op by contract, so the caller sees 200 with an
// unchanged balance rather than an error.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, func(id string, amount int64) domain.Command {
		return domain.WithdrawMoney{AccountID: id, Amount: amount}
	})
}

func (h *AccountHandler) move(w http.ResponseWriter, r *http.Request, build func(id string, amount int64) domain.Command) {
	id := chi.URLParam(r, "id")
	var req struct {
		Amount int64 `json:"amount_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "invalid-body", "Invalid request body")
		return
	}

	if err := h.commands.Dispatch(r.Context(), build(id, req.Amount)); err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			RespondError(w, r, http.StatusNotFound, "account/not-found", "Account not found")
			return
		}
		RespondError(w, r, http.StatusBadRequest, "account/invalid-request", err.Error())
		return
	}

	view, err := h.queries.Account(r.Context(), id)
	if err != nil {
		RespondError(w, r, http.StatusInternalServerError, "account/read-failed", err.Error())
		return
	}
	RespondJSON(w, http.StatusOK, view)
}

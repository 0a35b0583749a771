package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayo6706/bank-transfer-saga/internal/bus"
	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/ayo6706/bank-transfer-saga/internal/query"
	"github.com/ayo6706/bank-transfer-saga/internal/transfer"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type TransferHandler struct {
	commands *bus.CommandBus
	queries  *query.Service
}

func NewTransferHandler(commands *bus.CommandBus, queries *query.Service) *TransferHandler {
	return &TransferHandler{commands: commands, queries: queries}
}

// CreateTransfer accepts the transfer intent and returns 202: the outcome is
// decided asynchronously by the coordinator, and callers poll GetTransfer
// for the terminal status. A client-supplied transfer_id makes the request
// idempotent: replaying it hits the already-exists path.
func (h *TransferHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TransferID           string `json:"transfer_id"`
		SourceAccountID      string `json:"source_account_id"`
		DestinationAccountID string `json:"destination_account_id"`
		Amount               int64  `json:"amount_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "invalid-body", "Invalid request body")
		return
	}
	if req.TransferID == "" {
		req.TransferID = uuid.NewString()
	}

	err := h.commands.Dispatch(r.Context(), domain.CreateTransfer{
		TransferID:           req.TransferID,
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
	})
	if err != nil {
		if errors.Is(err, transfer.ErrTransferExists) {
			RespondError(w, r, http.StatusConflict, "transfer/already-exists", err.Error())
			return
		}
		RespondError(w, r, http.StatusBadRequest, "transfer/invalid-request", err.Error())
		return
	}

	RespondJSON(w, http.StatusAccepted, map[string]string{
		"transfer_id": req.TransferID,
		"status":      transfer.StatusStarted,
	})
}

func (h *TransferHandler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := h.queries.Transfer(r.Context(), id)
	if err != nil {
		if errors.Is(err, transfer.ErrTransferNotFound) {
			RespondError(w, r, http.StatusNotFound, "transfer/not-found", "Transfer not found")
			return
		}
		RespondError(w, r, http.StatusInternalServerError, "transfer/read-failed", err.Error())
		return
	}
	RespondJSON(w, http.StatusOK, view)
}
